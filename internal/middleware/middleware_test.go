package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RobertDurfee/Gerrymandering/internal/middleware"
	"github.com/RobertDurfee/Gerrymandering/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call wraps a simple 200-OK inner handler in the provided middleware and
// returns the recorded response.
func call(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw(inner).ServeHTTP(rec, req)
	return rec
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetRequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_ReusesClientID(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/states", nil)
	req.Header.Set(middleware.RequestIDHeader, id)

	rec := call(t, middleware.RequestID, req)

	assert.Equal(t, id, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_ReplacesGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/states", nil)
	req.Header.Set(middleware.RequestIDHeader, "'; DROP TABLE geo.wards; --")

	rec := call(t, middleware.RequestID, req)

	got := rec.Header().Get(middleware.RequestIDHeader)
	assert.NotContains(t, got, "DROP")
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/states", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	rec := call(t, middleware.CORS([]string{"http://localhost:5173"}), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/states", nil)
	req.Header.Set("Origin", "https://evil.example")

	rec := call(t, middleware.CORS([]string{"http://localhost:5173"}), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/states", nil)
	req.Header.Set("Origin", "https://maps.example")

	rec := call(t, middleware.CORS([]string{"*"}), req)

	assert.Equal(t, "https://maps.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/states", nil)
	req.Header.Set("Origin", "http://localhost:5173")

	rec := call(t, middleware.CORS([]string{"http://localhost:5173"}), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_ShedsOverBurst(t *testing.T) {
	mw := middleware.RateLimit(0.001, 2)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := mw(inner)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	mw := middleware.RateLimit(0, 0)
	for i := 0; i < 50; i++ {
		rec := call(t, mw, httptest.NewRequest(http.MethodGet, "/states", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
