package metrics

import "github.com/prometheus/client_golang/prometheus"

// Item outcomes reported by the finalizers.
const (
	OutcomeFinalized = "finalized"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// FinalizerMetrics counts per-item outcomes of the batch finalizers and the
// payout lifecycle transitions.
type FinalizerMetrics struct {
	items       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewFinalizerMetrics registers the finalizer metrics on the provided registerer.
func NewFinalizerMetrics(reg prometheus.Registerer) *FinalizerMetrics {
	if reg == nil {
		return &FinalizerMetrics{}
	}
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "finalizer_items_total",
		Help:      "Items evaluated by a finalizer, by outcome.",
	}, []string{"job", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payout_transitions_total",
		Help:      "Payout request and payout state transitions.",
	}, []string{"transition"})
	reg.MustRegister(items, transitions)
	return &FinalizerMetrics{items: items, transitions: transitions}
}

// IncItem records one item outcome for job.
func (f *FinalizerMetrics) IncItem(job, outcome string) {
	if f == nil || f.items == nil {
		return
	}
	f.items.WithLabelValues(normalizeLabel(job), outcome).Inc()
}

// IncTransition records a lifecycle transition such as "approved" or "paid".
func (f *FinalizerMetrics) IncTransition(transition string) {
	if f == nil || f.transitions == nil {
		return
	}
	f.transitions.WithLabelValues(transition).Inc()
}
