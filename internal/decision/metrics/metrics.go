package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Decision outcomes by result and action
	DecisionOutcome *prometheus.CounterVec

	// Overall evaluation latency including policy resolution and recording
	EvaluateLatency prometheus.Histogram

	// Decisions whose ledger anchoring failed (recorded local-only)
	DegradedAudit prometheus.Counter
}

// New creates a Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_decision_outcomes_total",
			Help: "Total decision outcomes by result and action",
		}, []string{"result", "action"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "custodia_decision_evaluate_duration_seconds",
			Help:    "Duration of full decision evaluation including recording",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		DegradedAudit: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_decision_degraded_audit_total",
			Help: "Decisions persisted without a ledger anchor due to ledger failure",
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(result, action string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(result, action).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementDegradedAudit records a decision logged without a ledger anchor.
func (m *Metrics) IncrementDegradedAudit() {
	if m != nil {
		m.DegradedAudit.Inc()
	}
}
