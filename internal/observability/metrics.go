// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Creation metrics
	CreationsTotal   *prometheus.CounterVec
	CreationDuration prometheus.Histogram
	StepDuration     *prometheus.HistogramVec
	StepErrors       *prometheus.CounterVec
	RetriesTotal     *prometheus.CounterVec
	RateLimited      prometheus.Counter

	// Chain metrics
	ChainCallLatency *prometheus.HistogramVec
	ChainCallErrors  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSClientsConnected prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCreation prometheus.Gauge
	UptimeSeconds          prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_launchpad"
	}

	return &Metrics{
		// Creation metrics
		CreationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "creations_total",
			Help:      "Total number of token creation attempts by outcome",
		}, []string{"outcome"}),
		CreationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "creation_duration_seconds",
			Help:      "End-to-end token creation duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		StepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "step_duration_seconds",
			Help:      "Per-step duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		StepErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "step_errors_total",
			Help:      "Total number of step failures by step",
		}, []string{"step"}),
		RetriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "retries_total",
			Help:      "Total number of step retries by step",
		}, []string{"step"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "rate_limited_total",
			Help:      "Total number of creations rejected by the rate limit",
		}),

		// Chain metrics
		ChainCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ChainCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of Solana RPC call errors",
		}, []string{"method"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// WebSocket metrics
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients_connected",
			Help:      "Current number of connected progress stream clients",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulCreation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_creation_timestamp",
			Help:      "Unix timestamp of last successful token creation",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCreation records the outcome and duration of a creation attempt.
func RecordCreation(outcome string, durationSeconds float64) {
	DefaultMetrics.CreationsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.CreationDuration.Observe(durationSeconds)
}

// RecordStep records a completed or failed creation step.
func RecordStep(step string, seconds float64, err error) {
	DefaultMetrics.StepDuration.WithLabelValues(step).Observe(seconds)
	if err != nil {
		DefaultMetrics.StepErrors.WithLabelValues(step).Inc()
	}
}

// RecordRetry increments the retry counter for a step.
func RecordRetry(step string) {
	DefaultMetrics.RetriesTotal.WithLabelValues(step).Inc()
}

// RecordRateLimited increments the rate-limit rejection counter.
func RecordRateLimited() {
	DefaultMetrics.RateLimited.Inc()
}

// RecordChainCall records Solana RPC call metrics.
func RecordChainCall(method string, seconds float64, err error) {
	DefaultMetrics.ChainCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.ChainCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
