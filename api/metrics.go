/*
metrics.go - Prometheus instrumentation for settlement outcomes

PURPOSE:
  Counts settlement runs by terminal state and per-contributor outcomes
  (refunded, credited, failed). Exposed on GET /metrics.
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giftwell/settlement-engine/settlement"
)

// Metrics holds the settlement counters.
type Metrics struct {
	Registry *prometheus.Registry

	settlements *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
}

// NewMetrics creates and registers the counters on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_settlements_total",
			Help: "Settlement runs by result.",
		}, []string{"result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_settlement_outcomes_total",
			Help: "Per-contributor settlement outcomes.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(m.settlements, m.outcomes)
	return m
}

// ObserveResult records a completed settlement run.
func (m *Metrics) ObserveResult(result *settlement.SettleResult) {
	m.settlements.WithLabelValues(string(result.FinalStatus)).Inc()
	m.outcomes.WithLabelValues("refunded").Add(float64(result.BankRefunds))
	m.outcomes.WithLabelValues("credited").Add(float64(result.CreditsIssued))
	m.outcomes.WithLabelValues("failed").Add(float64(result.Failed))
}

// ObserveError records a rejected settlement run.
func (m *Metrics) ObserveError(err error) {
	switch {
	case settlement.IsConflict(err):
		m.settlements.WithLabelValues("rejected_conflict").Inc()
	case settlement.IsValidation(err):
		m.settlements.WithLabelValues("rejected_validation").Inc()
	default:
		m.settlements.WithLabelValues("error").Inc()
	}
}
