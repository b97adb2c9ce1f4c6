package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry's Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Blob storage metrics
	StorageOperationsTotal *prometheus.CounterVec
	StorageErrorsTotal     *prometheus.CounterVec

	// Publication metrics
	PublishTotal *prometheus.CounterVec

	// Business metrics
	PackagesTotal   prometheus.Gauge
	VersionsTotal   prometheus.Gauge
	UsersTotal      prometheus.Gauge
	APITokensActive prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics. Passing a nil
// registry creates a private one, which keeps tests isolated.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rack_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StorageOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rack_storage_operations_total",
				Help: "Total number of blob storage operations",
			},
			[]string{"operation"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rack_storage_errors_total",
				Help: "Total number of failed blob storage operations",
			},
			[]string{"operation"},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rack_publish_total",
				Help: "Total number of publish attempts by outcome",
			},
			[]string{"outcome"},
		),
		PackagesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rack_packages_total",
			Help: "Number of registered packages",
		}),
		VersionsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rack_versions_total",
			Help: "Number of published package versions",
		}),
		UsersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rack_users_total",
			Help: "Number of registered users",
		}),
		APITokensActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rack_api_tokens_active",
			Help: "Number of active API tokens",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StorageOperationsTotal,
		m.StorageErrorsTotal,
		m.PublishTotal,
		m.PackagesTotal,
		m.VersionsTotal,
		m.UsersTotal,
		m.APITokensActive,
	)

	return m
}

// Handler returns an http.Handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware records request counts and durations. The path label uses the
// route template when available to keep cardinality bounded.
func (m *Metrics) HTTPMiddleware(pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	if pathLabel == nil {
		pathLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			path := pathLabel(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
