package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCoreMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCoreMetrics(reg)
	m.ObserveLeadCreated("ok")
	m.ObserveLeadTransition("New", "Contacted")
	m.ObserveLeadTransition("New", "Contacted")
	m.ObserveQuoteGenerated()
	m.ObserveQuoteUpdate("Sent")
	m.ObserveInquiry("contact", "sent")
	m.ObserveAPIRequest("GET", "leads", "ok", 0.2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	family := findFamily(mfs, "sportstravel_leads_status_transitions_total")
	if family == nil {
		t.Fatal("transition family not registered")
	}
	if len(family.Metric) != 1 {
		t.Fatalf("expected one label set, got %d", len(family.Metric))
	}
	if got := family.Metric[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if findFamily(mfs, "sportstravel_apiclient_request_latency_seconds") == nil {
		t.Fatal("latency histogram not registered")
	}
}

func TestCoreMetricsNilSafe(t *testing.T) {
	var m *CoreMetrics
	m.ObserveLeadCreated("ok")
	m.ObserveLeadTransition("New", "Contacted")
	m.ObserveQuoteGenerated()
	m.ObserveQuoteUpdate("Sent")
	m.ObserveInquiry("lead", "failed")
	m.ObserveAPIRequest("GET", "leads", "ok", 0.1)
}

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
