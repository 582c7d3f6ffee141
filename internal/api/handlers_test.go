package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yegors/flightrec/internal/config"
	"github.com/yegors/flightrec/internal/flightlog"
	"github.com/yegors/flightrec/internal/storage/sqlite"
	"github.com/yegors/flightrec/pkg/logger"
)

const testFlight = "AXXXABC\r\n" +
	"HFDTEDATE:230718,01\r\n" +
	"C230718092044000000000201Out and return\r\n" +
	"C5200000N00000000ETakeoff\r\n" +
	"C5200000N00000000EStart\r\n" +
	"C5300000N00000000ETurn\r\n" +
	"C5200000N00000000EFinish\r\n" +
	"C5200000N00000000ELanding\r\n" +
	"B1101355206343N00006198WA0058700558\r\n" +
	"B11013X5206343N00006198WA0058700558\r\n"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	store, err := sqlite.NewFlightStorage(db, log)
	require.NoError(t, err)

	reader := flightlog.NewReader(cfg.Reader.Options(), log)
	return NewRouter(store, reader, cfg, log).Routes()
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return w, env
}

func TestHandler_GetHealth(t *testing.T) {
	h := newTestServer(t, nil)

	w, env := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"healthy"}`, string(env.Data))
}

func TestHandler_DecodeLine(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
		wantClass  string
		wantField  string
		wantDetail string
	}{
		{
			name:       "declaration",
			body:       `{"line":"C230718092044000000000204"}`,
			wantStatus: http.StatusOK,
			wantKind:   "task_declaration",
		},
		{
			name:       "turnpoint with terminator",
			body:       `{"line":"C5156040N00038120WLBZ\r\n"}`,
			wantStatus: http.StatusOK,
			wantKind:   "task_turnpoint",
		},
		{
			name:       "unknown tag",
			body:       `{"line":"ZFOO"}`,
			wantStatus: http.StatusOK,
			wantKind:   "unrecognised",
		},
		{
			name:       "malformed numeric",
			body:       `{"line":"C2307180920440000000A0204"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantClass:  "malformed numeric field",
			wantField:  "task id",
		},
		{
			name:       "too short",
			body:       `{"line":"C5156040N00038"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantClass:  "line too short",
			wantDetail: "need 18 bytes, got 14",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/decode/line", strings.NewReader(tt.body))
			w, env := do(t, h, req)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantKind != "" {
				require.True(t, env.Success)
				var decoded struct {
					Kind string `json:"kind"`
				}
				require.NoError(t, json.Unmarshal(env.Data, &decoded))
				assert.Equal(t, tt.wantKind, decoded.Kind)
				return
			}

			assert.False(t, env.Success)
			var perr ParseErrorResponse
			require.NoError(t, json.Unmarshal(env.Data, &perr))
			assert.Equal(t, tt.wantClass, perr.Class)
			assert.Equal(t, tt.wantField, perr.Field)
			assert.Equal(t, tt.wantDetail, perr.Detail)
			assert.NotEmpty(t, perr.Message)
		})
	}
}

func TestHandler_DecodeLine_InvalidJSON(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decode/line", strings.NewReader("C2307"))
	w, env := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestHandler_DecodeLine_TooLarge(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.Reader.MaxLineSize = 128 })

	body := `{"line":"L` + strings.Repeat("x", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/decode/line", strings.NewReader(body))
	w, env := do(t, h, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "1.1 KiB")
}

func TestHandler_DecodeFlight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decode/flight", strings.NewReader(testFlight))
	w, env := do(t, h, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		ID           string               `json:"id"`
		Lines        int                  `json:"lines"`
		FixCount     int                  `json:"fix_count"`
		Date         string               `json:"date"`
		TaskComplete bool                 `json:"task_complete"`
		DistanceKM   float64              `json:"task_distance_km"`
		DistanceNM   float64              `json:"task_distance_nm"`
		Legs         []json.RawMessage    `json:"legs"`
		Errors       []ParseErrorResponse `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Empty(t, summary.ID)
	assert.Equal(t, 10, summary.Lines)
	assert.Equal(t, 1, summary.FixCount)
	assert.Equal(t, "2018-07-23", summary.Date)
	assert.True(t, summary.TaskComplete)
	assert.InDelta(t, 222.39, summary.DistanceKM, 0.01)
	assert.InDelta(t, 120.08, summary.DistanceNM, 0.01)
	assert.Len(t, summary.Legs, 4)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 10, summary.Errors[0].Line)
	assert.Equal(t, "malformed primitive", summary.Errors[0].Class)
}

func TestHandler_DecodeFlight_StopOnError(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.Reader.StopOnError = true })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decode/flight", strings.NewReader(testFlight))
	w, env := do(t, h, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var perr ParseErrorResponse
	require.NoError(t, json.Unmarshal(env.Data, &perr))
	assert.Equal(t, 10, perr.Line)
}

func TestHandler_UploadFlight_TooLarge(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxUploadBytes = 64 })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights", strings.NewReader(testFlight))
	w, env := do(t, h, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, env.Error, "64 B")
}

func TestHandler_FlightLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	// raw body upload
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights?name=raw.igc", strings.NewReader(testFlight))
	w, env := do(t, h, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	// multipart upload
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "form.igc")
	require.NoError(t, err)
	_, err = io.WriteString(part, testFlight)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/flights", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, _ = do(t, h, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// list
	w, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var listed []sqlite.FlightRecord
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "form.igc", listed[0].FileName)
	assert.Equal(t, "raw.igc", listed[1].FileName)

	// get
	w, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/flights/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got sqlite.FlightRecord
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "raw.igc", got.FileName)
	assert.Equal(t, "XXX", got.Manufacturer)
	assert.Len(t, got.Turnpoints, 5)
	assert.Equal(t, 1, got.ErrorCount)

	// delete, then it is gone
	w, _ = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/v1/flights/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/flights/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/v1/flights/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetRecentFlights_Limit(t *testing.T) {
	h := newTestServer(t, nil)

	w, env := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	for _, limit := range []string{"0", "abc", "501"} {
		w, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/flights?limit="+limit, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestUploadName(t *testing.T) {
	assert.Equal(t, "upload.igc", uploadName(""))
	assert.Equal(t, "upload.igc", uploadName("  "))
	assert.Equal(t, "flight.igc", uploadName("../../etc/flight.igc"))
}
