package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics records outcomes of the inventory reconciliation loop.
type WorkerMetrics struct {
	messages *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// Message outcomes.
const (
	OutcomeOrderProcessed = "order_processed"
	OutcomeProductAction  = "product_action"
	OutcomeMalformed      = "malformed"
	OutcomeRetried        = "retried"
)

// NewWorkerMetrics registers the worker metrics on the provided registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		return &WorkerMetrics{}
	}
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_total",
		Help: "Queue messages handled by the reconciliation worker, by outcome.",
	}, []string{"outcome"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_line_items_skipped_total",
		Help: "Order line items skipped during reconciliation, by reason.",
	}, []string{"reason"})
	reg.MustRegister(messages, skipped)
	return &WorkerMetrics{messages: messages, skipped: skipped}
}

// IncMessage increments the message counter for the given outcome.
func (m *WorkerMetrics) IncMessage(outcome string) {
	if m == nil || m.messages == nil {
		return
	}
	m.messages.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncSkippedItem increments the skipped line item counter for the given reason.
func (m *WorkerMetrics) IncSkippedItem(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
