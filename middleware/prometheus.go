package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	responseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_size_bytes",
			Help:    "Size of HTTP responses in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path", "code"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_client_request_duration_seconds",
			Help:    "Duration of calls to the external REST API in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource", "operation"},
	)

	apiRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_client_requests_total",
			Help: "Total number of calls to the external REST API by outcome",
		},
		[]string{"resource", "operation", "outcome"},
	)
)

// shouldCollectMetrics excludes infrastructure endpoints so health and readiness checks do not
// dominate dashboard metrics.
func shouldCollectMetrics(path string) bool {
	for _, skipPath := range []string{"/health", "/ready", "/metrics", "/static/"} {
		if strings.HasPrefix(path, skipPath) {
			return false
		}
	}
	return true
}

// PrometheusMiddleware records inbound request metrics labelled by route pattern
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldCollectMetrics(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method

		requestsInFlight.WithLabelValues(method).Inc()
		defer requestsInFlight.WithLabelValues(method).Dec()

		c.Next()

		// Route pattern keeps record identifiers out of label values.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		requestDuration.WithLabelValues(method, path, statusCode).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, path, statusCode).Inc()
		responseSize.WithLabelValues(method, path, statusCode).Observe(float64(c.Writer.Size()))
	}
}

// ObserveAPIRequest records one Resource Client round trip.
// outcome is "ok" or the failure kind.
func ObserveAPIRequest(resource, operation, outcome string, duration time.Duration) {
	apiRequestDuration.WithLabelValues(resource, operation).Observe(duration.Seconds())
	apiRequestTotal.WithLabelValues(resource, operation, outcome).Inc()
}
