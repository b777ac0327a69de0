package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkerMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetrics(reg)

	m.IncMessage(OutcomeOrderProcessed)
	m.IncMessage(OutcomeOrderProcessed)
	m.IncMessage(OutcomeMalformed)
	m.IncSkippedItem("product_missing")

	if got := testutil.ToFloat64(m.messages.WithLabelValues(OutcomeOrderProcessed)); got != 2 {
		t.Fatalf("expected 2 processed messages, got %v", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues(OutcomeMalformed)); got != 1 {
		t.Fatalf("expected 1 malformed message, got %v", got)
	}
	if got := testutil.ToFloat64(m.skipped.WithLabelValues("product_missing")); got != 1 {
		t.Fatalf("expected 1 skipped item, got %v", got)
	}
}

func TestWorkerMetricsNilSafe(t *testing.T) {
	var m *WorkerMetrics
	m.IncMessage(OutcomeRetried)
	m.IncSkippedItem("")

	empty := NewWorkerMetrics(nil)
	empty.IncMessage("")
}
