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
	// Evaluation metrics
	ScenariosEvaluated *prometheus.CounterVec
	DecodeFailures     prometheus.Counter
	EvaluationLatency  prometheus.Histogram

	// Journal metrics
	EvaluationsJournaled prometheus.Counter
	JournalErrors        prometheus.Counter

	// Server metrics
	WSConnections     prometheus.Gauge
	WSMessagesHandled prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "arb_filter"
	}

	return &Metrics{
		ScenariosEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "scenarios_total",
			Help:      "Total number of scenarios evaluated, by verdict",
		}, []string{"verdict"}),
		DecodeFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "decode_failures_total",
			Help:      "Total number of malformed scenario records",
		}),
		EvaluationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "latency_seconds",
			Help:      "Time to decode, evaluate and encode one scenario",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 10, 8),
		}),
		EvaluationsJournaled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "evaluations_total",
			Help:      "Total number of evaluations written to the journal",
		}),
		JournalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "errors_total",
			Help:      "Total number of journal write errors",
		}),
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_connections",
			Help:      "Number of open WebSocket connections",
		}),
		WSMessagesHandled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_messages_total",
			Help:      "Total number of WebSocket scenario messages handled",
		}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScenarioEvaluated records one completed evaluation.
func RecordScenarioEvaluated(profitable bool, seconds float64) {
	verdict := "unprofitable"
	if profitable {
		verdict = "profitable"
	}
	DefaultMetrics.ScenariosEvaluated.WithLabelValues(verdict).Inc()
	DefaultMetrics.EvaluationLatency.Observe(seconds)
}

// RecordDecodeFailure records a malformed scenario record.
func RecordDecodeFailure() {
	DefaultMetrics.DecodeFailures.Inc()
}

// RecordJournalWrite records a journal write attempt.
func RecordJournalWrite(err error) {
	if err != nil {
		DefaultMetrics.JournalErrors.Inc()
		return
	}
	DefaultMetrics.EvaluationsJournaled.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
