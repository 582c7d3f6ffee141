package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/flightrec/internal/config"
	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(store FlightStore, reader *flightlog.Reader, config *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(store, reader, config, logger),
		middleware: NewMiddleware(logger),
		config:     config,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		// Stateless decoding
		router.Post("/decode/line", r.handler.DecodeLine)
		router.Post("/decode/flight", r.handler.DecodeFlight)

		// Stored flights
		router.Post("/flights", r.handler.UploadFlight)
		router.Get("/flights", r.handler.GetRecentFlights)
		router.Get("/flights/{id}", r.handler.GetFlight)
		router.Delete("/flights/{id}", r.handler.DeleteFlight)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
