package console

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/provisionr/provisionr-console/internal/opstate"
)

// Registry holds the console metrics. It is served by `provisionr console
// --metrics-addr`.
var Registry = prometheus.NewRegistry()

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "provisionr",
			Subsystem: "console",
			Name:      "operations_total",
			Help:      "Total number of backend calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "provisionr",
			Subsystem: "console",
			Name:      "operation_duration_seconds",
			Help:      "Duration of backend calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"operation"},
	)

	stateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "provisionr",
			Subsystem: "console",
			Name:      "state_transitions_total",
			Help:      "Total number of operation state transitions by target state",
		},
		[]string{"operation", "state"},
	)
)

func init() {
	Registry.MustRegister(
		operationsTotal,
		operationDuration,
		stateTransitionsTotal,
	)
}

func recordOperationMetric(operation, result string, duration float64) {
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(duration)
}

func recordTransitionMetric(operation string, to opstate.Status) {
	stateTransitionsTotal.WithLabelValues(operation, to.String()).Inc()
}
