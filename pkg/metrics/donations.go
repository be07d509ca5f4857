package metrics

import "github.com/prometheus/client_golang/prometheus"

// DonationMetrics counts payment verification outcomes and the settled
// donation volume.
type DonationMetrics struct {
	verifications *prometheus.CounterVec
	settledAmount prometheus.Counter
}

// NewDonationMetrics registers the donation counters on the provided registerer.
func NewDonationMetrics(reg prometheus.Registerer) *DonationMetrics {
	if reg == nil {
		return &DonationMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_verifications_total",
		Help: "Payment verification attempts, by outcome.",
	}, []string{"outcome"})
	settledAmount := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "donation_settled_amount_cad_total",
		Help: "Sum of newly settled donation amounts, in CAD.",
	})
	reg.MustRegister(verifications, settledAmount)
	return &DonationMetrics{verifications: verifications, settledAmount: settledAmount}
}

// IncVerification increments the counter for one verification outcome.
func (m *DonationMetrics) IncVerification(outcome string) {
	if m == nil || m.verifications == nil {
		return
	}
	m.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddSettledAmount records the amount of a donation that just settled to
// succeeded. Idempotent re-verifications must not call this.
func (m *DonationMetrics) AddSettledAmount(amount float64) {
	if m == nil || m.settledAmount == nil || amount <= 0 {
		return
	}
	m.settledAmount.Add(amount)
}
