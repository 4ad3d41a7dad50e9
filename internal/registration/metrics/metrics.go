package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
type Metrics struct {
	Submissions     prometheus.Counter
	Confirmations   prometheus.Counter
	Approvals       prometheus.Counter
	Revocations     prometheus.Counter
	ApproveDuration prometheus.Histogram
}

// New creates a Metrics instance with all registration module metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubgate_registrations_submitted_total",
			Help: "Total number of registration submissions accepted",
		}),
		Confirmations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubgate_registrations_confirmed_total",
			Help: "Total number of confirmation tokens redeemed (fresh transitions only)",
		}),
		Approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubgate_registrations_approved_total",
			Help: "Total number of registrations approved and provisioned",
		}),
		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clubgate_registrations_revoked_total",
			Help: "Total number of registrations revoked",
		}),
		ApproveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clubgate_registration_approve_duration_seconds",
			Help:    "Duration of approval operations including identity provisioning",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementSubmitted records an accepted submission.
func (m *Metrics) IncrementSubmitted() {
	m.Submissions.Inc()
}

// IncrementConfirmed records a fresh confirmation.
func (m *Metrics) IncrementConfirmed() {
	m.Confirmations.Inc()
}

// IncrementApproved records an approval.
func (m *Metrics) IncrementApproved() {
	m.Approvals.Inc()
}

// IncrementRevoked records a revocation.
func (m *Metrics) IncrementRevoked() {
	m.Revocations.Inc()
}

// ObserveApprove records the duration of an approval operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveApprove(start time.Time) {
	m.ApproveDuration.Observe(time.Since(start).Seconds())
}
