package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.HTTPRequestDuration == nil {
		t.Error("HTTPRequestDuration not initialized")
	}
	if r.FloodfillRequestsTotal == nil {
		t.Error("FloodfillRequestsTotal not initialized")
	}
	if r.FloodfillRequestDuration == nil {
		t.Error("FloodfillRequestDuration not initialized")
	}
	if r.FloodfillIterations == nil {
		t.Error("FloodfillIterations not initialized")
	}
	if r.FloodfillOriginsPerBatch == nil {
		t.Error("FloodfillOriginsPerBatch not initialized")
	}
	if r.GraphNodesTotal == nil {
		t.Error("GraphNodesTotal not initialized")
	}
	if r.GraphWalkEdges == nil {
		t.Error("GraphWalkEdges not initialized")
	}
	if r.GraphPTEdges == nil {
		t.Error("GraphPTEdges not initialized")
	}
	if r.GraphYearsLoaded == nil {
		t.Error("GraphYearsLoaded not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("underlying Prometheus registry not initialized")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("/floodfill_pt/", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("/floodfill_pt/", "200", 50*time.Millisecond)
	r.RecordHTTPRequest("/floodfill_pt/", "400", 10*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("/floodfill_pt/", "200")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.Counter.GetValue() != 2 {
		t.Errorf("counter value = %v, want 2", m.Counter.GetValue())
	}

	hist, err := r.HTTPRequestDuration.GetMetricWithLabelValues("/floodfill_pt/", "200")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var hm dto.Metric
	if err := hist.(prometheus.Metric).Write(&hm); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if hm.Histogram.GetSampleCount() != 2 {
		t.Errorf("histogram sample count = %d, want 2", hm.Histogram.GetSampleCount())
	}
}

func TestRecordFloodfillBatch(t *testing.T) {
	r := NewRegistry()

	r.RecordFloodfillBatch("ok", 250*time.Millisecond, 3, []int32{10, 20, 30})
	r.RecordFloodfillBatch("error", 5*time.Millisecond, 1, nil)

	counter, err := r.FloodfillRequestsTotal.GetMetricWithLabelValues("ok")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.Counter.GetValue() != 1 {
		t.Errorf("counter value = %v, want 1", m.Counter.GetValue())
	}

	var dm dto.Metric
	if err := r.FloodfillRequestDuration.Write(&dm); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if dm.Histogram.GetSampleCount() != 2 {
		t.Errorf("duration sample count = %d, want 2", dm.Histogram.GetSampleCount())
	}

	var im dto.Metric
	if err := r.FloodfillIterations.Write(&im); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if im.Histogram.GetSampleCount() != 3 {
		t.Errorf("iterations sample count = %d, want 3 (one per origin in the first batch)", im.Histogram.GetSampleCount())
	}
}

func TestSetGraphSizeAndYearsLoaded(t *testing.T) {
	r := NewRegistry()

	r.SetGraphSize("2022", 100, 200, 50)
	r.SetYearsLoaded(2)

	nodes, err := r.GraphNodesTotal.GetMetricWithLabelValues("2022")
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var m dto.Metric
	if err := nodes.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.Gauge.GetValue() != 100 {
		t.Errorf("nodes gauge = %v, want 100", m.Gauge.GetValue())
	}

	var ym dto.Metric
	if err := r.GraphYearsLoaded.Write(&ym); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ym.Gauge.GetValue() != 2 {
		t.Errorf("years loaded gauge = %v, want 2", ym.Gauge.GetValue())
	}
}
