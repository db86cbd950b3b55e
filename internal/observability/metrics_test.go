package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	body := scrape(t, NewMetrics())
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/locations")

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `tracker_http_requests_total{code="418",route="/api/locations"} 1`)
	assert.Contains(t, body, `tracker_http_request_duration_seconds_bucket{route="/api/locations"`)
}

func TestDomainCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveAuth("login", "invalid")
	metrics.ObserveAuth("login", "invalid")
	metrics.ObserveLocationUpdate("success")
	metrics.ObserveTokenCache(true)
	metrics.ObserveTokenCache(false)

	body := scrape(t, metrics)
	assert.Contains(t, body, `tracker_auth_attempts_total{action="login",outcome="invalid"} 2`)
	assert.Contains(t, body, `tracker_location_updates_total{outcome="success"} 1`)
	assert.Contains(t, body, `tracker_token_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, body, `tracker_token_cache_lookups_total{result="miss"} 1`)
}

func TestNilMetricsIsInert(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveAuth("register", "success")
	metrics.ObserveLocationUpdate("error")
	metrics.ObserveTokenCache(true)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, metrics.Middleware(next))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
