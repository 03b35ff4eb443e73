package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(t *testing.T, perPeriod int) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	router.Use(RateLimit(RateLimitConfig{
		RequestsPerPeriod: perPeriod,
		Period:            time.Minute,
		Store:             NewMemoryStore(),
	}))
	router.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return router
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	router := rateLimitedRouter(t, 1)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	router.ServeHTTP(second, req)
	require.Equal(t, http.StatusTooManyRequests, second.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
}

func TestRateLimit_TracksClientsSeparately(t *testing.T) {
	router := rateLimitedRouter(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	router.ServeHTTP(httptest.NewRecorder(), req)

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:4321"
	router.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}
