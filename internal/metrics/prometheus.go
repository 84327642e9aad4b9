package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures tracks circuit breaker failures
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	// BulkheadActiveRequests tracks active requests in bulkhead
	BulkheadActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bulkhead_active_requests",
			Help: "Number of active requests in bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// BulkheadRejectedRequests tracks rejected requests by bulkhead
	BulkheadRejectedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkhead_rejected_requests_total",
			Help: "Total number of rejected requests by bulkhead",
		},
		[]string{"service", "bulkhead_name"},
	)

	// CheckoutAttemptsTotal tracks payment attempts by terminal status
	CheckoutAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Total number of checkout attempts by terminal status",
		},
		[]string{"status"},
	)

	// GatewayWaitSeconds tracks how long attempts sat waiting for the widget
	GatewayWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_wait_duration_seconds",
			Help:    "Time between opening the payment widget and its terminal event",
			Buckets: []float64{1, 5, 15, 60, 120, 300},
		},
	)

	// PayableAmountRupees tracks submitted payable amounts
	PayableAmountRupees = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payable_amount_rupees",
			Help:    "Payable amounts of submitted checkout attempts in rupees",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
	)
)

// PrometheusMiddleware creates a Gin middleware for automatic metrics collection
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
