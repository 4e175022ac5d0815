// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	LedgerEntriesTotal  *prometheus.CounterVec
	TransfersTotal      prometheus.Counter
	SettlementsTotal    prometheus.Counter
	SettlementConflicts prometheus.Counter
	SweepRuns           prometheus.Counter
	SweptOverdue        prometheus.Counter
	PaymentsGenerated   prometheus.Counter
}

// New creates a fresh registry with all collectors registered. A dedicated
// registry keeps test instances independent.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LedgerEntriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fintra_ledger_entries_total",
			Help: "Ledger entries posted, by entry type.",
		}, []string{"type"}),
		TransfersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_transfers_total",
			Help: "Transfers recorded between accounts.",
		}),
		SettlementsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_settlements_total",
			Help: "Scheduled payments settled.",
		}),
		SettlementConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_settlement_conflicts_total",
			Help: "Settlement attempts rejected because the payment was already paid or cancelled.",
		}),
		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_overdue_sweep_runs_total",
			Help: "Overdue sweep executions.",
		}),
		SweptOverdue: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_overdue_swept_total",
			Help: "Pending payments transitioned to overdue by the sweep.",
		}),
		PaymentsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintra_payments_generated_total",
			Help: "Scheduled payments created by recurrence clones and debt installment plans.",
		}),
	}
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
