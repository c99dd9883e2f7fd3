package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PurchaseMetrics records outcomes of the purchase pipeline.
type PurchaseMetrics struct {
	intentDuration *prometheus.HistogramVec
	completed      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
}

// NewPurchaseMetrics registers the purchase metrics on the provided registerer.
func NewPurchaseMetrics(reg prometheus.Registerer) *PurchaseMetrics {
	if reg == nil {
		return &PurchaseMetrics{}
	}
	intentDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "purchase_intent_duration_seconds",
		Help:    "Duration of payment intent creation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_completed_total",
		Help: "Purchases that produced a payment intent.",
	}, []string{"currency"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_rejected_total",
		Help: "Purchase attempts rejected before payment.",
	}, []string{"reason"})
	reg.MustRegister(intentDuration, completed, rejected)
	return &PurchaseMetrics{
		intentDuration: intentDuration,
		completed:      completed,
		rejected:       rejected,
	}
}

// ObserveIntentDuration records how long intent creation took.
func (p *PurchaseMetrics) ObserveIntentDuration(outcome string, duration time.Duration) {
	if p == nil || p.intentDuration == nil {
		return
	}
	p.intentDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncCompleted increments the completed counter for the given currency.
func (p *PurchaseMetrics) IncCompleted(currency string) {
	if p == nil || p.completed == nil {
		return
	}
	p.completed.WithLabelValues(normalizeLabel(currency)).Inc()
}

// IncRejected increments the rejected counter for the given reason.
func (p *PurchaseMetrics) IncRejected(reason string) {
	if p == nil || p.rejected == nil {
		return
	}
	p.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
