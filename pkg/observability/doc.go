// Package observability provides structured logging, Prometheus metrics,
// health checks, and graceful shutdown for the registry.
//
// # Structured Logging
//
// Create a logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("server started", "port", 8080)
//
// Context-aware logging:
//
//	logger.With("package", name).WithError(err).Error("publish failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(nil)
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/packages", "200").Inc()
//	metrics.PackagesTotal.Set(float64(count))
//
// # Health Checks
//
// Configure the health checker over the backing stores:
//
//	checker := observability.NewHealthChecker(db, blobGateway)
//	router.HandleFunc("/health", checker.Handler)
package observability
