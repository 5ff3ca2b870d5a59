package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	httpErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_error_count",
			Help: "Total number of failed HTTP requests by error code",
		},
		[]string{"method", "path", "code"},
	)

	auditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Total number of audit entries that could not be persisted",
		},
	)

	projectTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_transition_count",
			Help: "Total number of project lifecycle transitions",
		},
		[]string{"transition"},
	)
)

// RecordRequest observes one completed HTTP request.
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordError counts a request that failed with a domain error code.
func RecordError(method, path, code string) {
	httpErrorCount.WithLabelValues(method, path, code).Inc()
}

// RecordAuditWriteFailure counts a dropped audit entry.
func RecordAuditWriteFailure() {
	auditWriteFailures.Inc()
}

// RecordProjectTransition counts a lifecycle transition.
func RecordProjectTransition(transition string) {
	projectTransitions.WithLabelValues(transition).Inc()
}

// RequestLogger logs each request with latency and records metrics.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		RecordRequest(c.Method(), c.Path(), status, duration)
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return err
	}
}

// ServeMetrics exposes the default Prometheus registry on its own listener.
func ServeMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
