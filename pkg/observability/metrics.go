package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_operations_total",
			Help: "Total number of gateway operations by normalized outcome",
		},
		[]string{"operation", "outcome"},
	)

	gatewayOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_operation_duration_seconds",
			Help:    "Duration of gateway operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	callbackRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_callback_requests_total",
			Help: "Total number of inbound gateway callbacks by verification result",
		},
		[]string{"endpoint", "result"},
	)

	ledgerRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_ledger_records_total",
			Help: "Total number of records appended to the transaction ledger",
		},
		[]string{"operation", "direction"},
	)
)

// ObserveGatewayOperation records one completed gateway operation
func ObserveGatewayOperation(operation, outcome string, elapsed time.Duration) {
	gatewayOperationsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCallback records one inbound callback
func ObserveCallback(endpoint, result string) {
	callbackRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// ObserveLedgerRecord records one appended ledger row
func ObserveLedgerRecord(operation, direction string) {
	ledgerRecordsTotal.WithLabelValues(operation, direction).Inc()
}
