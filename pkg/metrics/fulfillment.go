package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records payment-event fulfillment outcomes. The pool
// exhaustion counter is the operator alert for code replenishment.
type FulfillmentMetrics struct {
	events    *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	exhausted *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_events_total",
		Help: "Payment webhook events received, by event type.",
	}, []string{"type"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_total",
		Help: "Fulfillment dispatch outcomes, by product family and result.",
	}, []string{"family", "result"})
	exhausted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_code_pool_exhausted_total",
		Help: "Claims that found no unused access code. Requires pool replenishment.",
	}, []string{"product_type"})
	reg.MustRegister(events, outcomes, exhausted)
	return &FulfillmentMetrics{
		events:    events,
		outcomes:  outcomes,
		exhausted: exhausted,
	}
}

// IncEvent counts a received payment event by type.
func (m *FulfillmentMetrics) IncEvent(eventType string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncOutcome counts a fulfillment dispatch result for the given family.
func (m *FulfillmentMetrics) IncOutcome(family, result string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(family), normalizeLabel(result)).Inc()
}

// IncPoolExhausted counts an empty-pool claim for the given product type.
func (m *FulfillmentMetrics) IncPoolExhausted(productType string) {
	if m == nil || m.exhausted == nil {
		return
	}
	m.exhausted.WithLabelValues(normalizeLabel(productType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
