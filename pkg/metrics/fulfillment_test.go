package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestFulfillmentMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewFulfillmentMetrics(reg)

	metrics.IncEvent("checkout.session.completed")
	metrics.IncOutcome("receipts", "granted")
	metrics.IncOutcome("receipts", "granted")
	metrics.IncPoolExhausted("obywatel")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "payment_events_total", "type", "checkout.session.completed"); err != nil {
		t.Fatalf("fetch events: %v", err)
	} else if got != 1 {
		t.Fatalf("expected events=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_total", "family", "receipts"); err != nil {
		t.Fatalf("fetch outcomes: %v", err)
	} else if got != 2 {
		t.Fatalf("expected outcomes=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "access_code_pool_exhausted_total", "product_type", "obywatel"); err != nil {
		t.Fatalf("fetch exhausted: %v", err)
	} else if got != 1 {
		t.Fatalf("expected exhausted=1, got %f", got)
	}
}

func TestFulfillmentMetricsNilSafe(t *testing.T) {
	var metrics *FulfillmentMetrics
	metrics.IncEvent("x")
	metrics.IncOutcome("y", "z")
	metrics.IncPoolExhausted("w")

	empty := NewFulfillmentMetrics(nil)
	empty.IncEvent("x")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue(), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}
