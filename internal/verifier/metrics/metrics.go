package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit verifier.
type Metrics struct {
	// Verification outcomes: verified, mismatch, error
	Verifications *prometheus.CounterVec
}

// New creates a Metrics instance with all verifier metrics registered.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_verifier_verifications_total",
			Help: "Total ledger cross-verifications by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementVerification records one verification outcome.
func (m *Metrics) IncrementVerification(outcome string) {
	if m != nil {
		m.Verifications.WithLabelValues(outcome).Inc()
	}
}
