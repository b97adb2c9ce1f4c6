package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/packages", "200").Inc()
	m.PackagesTotal.Set(3)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["rack_http_requests_total"])
	assert.True(t, names["rack_packages_total"])
}

func TestMetricsHandlerServesExposition(t *testing.T) {
	m := NewMetrics(nil)
	m.PublishTotal.WithLabelValues("committed").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rack_publish_total")
}

func TestHTTPMiddlewareRecordsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	handler := m.HTTPMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/packages", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	families, err := registry.Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() != "rack_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" {
					assert.Equal(t, "201", label.GetValue())
					found = true
				}
			}
		}
	}
	assert.True(t, found, "request counter should carry the response status")
}
