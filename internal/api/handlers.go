package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yegors/flightrec/internal/config"
	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/igc"
	"github.com/yegors/flightrec/internal/storage/sqlite"
	"github.com/yegors/flightrec/pkg/logger"
)

const (
	defaultFlightLimit = 50
	maxFlightLimit     = 500
	defaultUploadName  = "upload.igc"
)

// FlightStore persists decoded flights
type FlightStore interface {
	StoreFlight(ctx context.Context, fileName string, flight *flightlog.Flight) (string, error)
	GetFlight(ctx context.Context, id string) (*sqlite.FlightRecord, error)
	GetRecentFlights(ctx context.Context, limit int) ([]*sqlite.FlightRecord, error)
	DeleteFlight(ctx context.Context, id string) error
}

// Handler contains the HTTP handlers for the API
type Handler struct {
	store  FlightStore
	cache  *flightCache
	reader *flightlog.Reader
	config *config.Config
	logger *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(store FlightStore, reader *flightlog.Reader, config *config.Config, logger *logger.Logger) *Handler {
	return &Handler{
		store:  store,
		cache:  newFlightCache(time.Duration(config.Server.CacheTTLSeconds) * time.Second),
		reader: reader,
		config: config,
		logger: logger.Named("api-handler"),
	}
}

// DecodeLine decodes one line sent as {"line": "..."}
func (h *Handler) DecodeLine(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.config.Reader.MaxLineSize)+1024)

	var req DecodeLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendTooLarge(w, tooLarge)
			return
		}
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	rec, err := igc.ParseLine(strings.TrimRight(req.Line, "\r\n"))
	if err != nil {
		sendErrorData(w, "Line could not be decoded", http.StatusUnprocessableEntity, newParseErrorResponse(0, err))
		return
	}

	sendSuccess(w, http.StatusOK, DecodedLine{Kind: rec.Kind(), Record: rec})
}

// DecodeFlight decodes an uploaded flight log without storing it
func (h *Handler) DecodeFlight(w http.ResponseWriter, r *http.Request) {
	_, flight, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	sendSuccess(w, http.StatusOK, newFlightSummary("", flight))
}

// UploadFlight decodes an uploaded flight log and stores it
func (h *Handler) UploadFlight(w http.ResponseWriter, r *http.Request) {
	name, flight, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	id, err := h.store.StoreFlight(r.Context(), name, flight)
	if err != nil {
		h.requestLogger(r).Error("Failed to store flight",
			logger.String("file_name", name),
			logger.Error(err),
		)
		sendError(w, "Failed to store flight", http.StatusInternalServerError)
		return
	}

	h.requestLogger(r).WithFile(name).Info("Stored flight",
		logger.String("id", id),
		logger.Int("lines", flight.Lines),
		logger.Int("errors", len(flight.Errors)),
	)
	sendSuccess(w, http.StatusCreated, newFlightSummary(id, flight))
}

// GetRecentFlights lists stored flights, newest first
func (h *Handler) GetRecentFlights(w http.ResponseWriter, r *http.Request) {
	limit := defaultFlightLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxFlightLimit {
			sendError(w, fmt.Sprintf("limit must be between 1 and %d", maxFlightLimit), http.StatusBadRequest)
			return
		}
		limit = n
	}

	flights, err := h.store.GetRecentFlights(r.Context(), limit)
	if err != nil {
		h.requestLogger(r).Error("Failed to list flights", logger.Error(err))
		sendError(w, "Failed to list flights", http.StatusInternalServerError)
		return
	}
	if flights == nil {
		flights = []*sqlite.FlightRecord{}
	}

	sendSuccess(w, http.StatusOK, flights)
}

// GetFlight returns one stored flight with its task and extension definitions
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if flight, ok := h.cache.Get(id); ok {
		sendSuccess(w, http.StatusOK, flight)
		return
	}

	flight, err := h.store.GetFlight(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		sendError(w, "Flight not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.requestLogger(r).Error("Failed to get flight", logger.String("id", id), logger.Error(err))
		sendError(w, "Failed to get flight", http.StatusInternalServerError)
		return
	}
	h.cache.Set(id, flight)

	sendSuccess(w, http.StatusOK, flight)
}

// DeleteFlight removes a stored flight
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.cache.Delete(id)
	err := h.store.DeleteFlight(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		sendError(w, "Flight not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.requestLogger(r).Error("Failed to delete flight", logger.String("id", id), logger.Error(err))
		sendError(w, "Failed to delete flight", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readUpload reads a flight log sent either as the "file" part of a
// multipart form or as the raw request body, and decodes it. On failure the
// error response has already been written.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, *flightlog.Flight, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadBytes)

	name, body, err := openUpload(r)
	if err != nil {
		h.sendReadError(w, r, err)
		return "", nil, false
	}
	defer body.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	flight, err := h.reader.ReadFlight(r.Context(), body)
	if err != nil {
		h.sendReadError(w, r, err)
		return "", nil, false
	}
	return name, flight, true
}

func openUpload(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("failed to read form file: %w", err)
		}
		return uploadName(header.Filename), file, nil
	}
	return uploadName(r.URL.Query().Get("name")), r.Body, nil
}

func uploadName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return defaultUploadName
	}
	return name
}

func (h *Handler) sendReadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	var lineErr *flightlog.LineError
	switch {
	case errors.As(err, &tooLarge):
		sendTooLarge(w, tooLarge)
	case errors.As(err, &lineErr):
		sendErrorData(w, "Flight log contains a malformed line", http.StatusUnprocessableEntity,
			newParseErrorResponse(lineErr.Number, lineErr.Err))
	default:
		h.requestLogger(r).Warn("Failed to read upload", logger.Error(err))
		sendError(w, "Failed to read flight log: "+err.Error(), http.StatusBadRequest)
	}
}

func sendTooLarge(w http.ResponseWriter, err *http.MaxBytesError) {
	sendError(w, fmt.Sprintf("Request body exceeds %s", humanize.IBytes(uint64(err.Limit))), http.StatusRequestEntityTooLarge)
}

func (h *Handler) requestLogger(r *http.Request) *logger.Logger {
	return h.logger.WithRequestID(middleware.GetReqID(r.Context()))
}
