package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestOrderMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.IncPlaced(decimal.RequireFromString("30.00"))
	m.IncPlaced(decimal.RequireFromString("12.50"))
	m.IncRejected("INSUFFICIENT_STOCK")
	m.IncRejected("")
	m.IncTotalMismatch()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(t, mfs, "pos_orders_placed_total", "", ""); got != 2 {
		t.Fatalf("expected placed=2, got %f", got)
	}
	if got := counterValue(t, mfs, "pos_orders_rejected_total", "reason", "INSUFFICIENT_STOCK"); got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
	if got := counterValue(t, mfs, "pos_orders_rejected_total", "reason", "unknown"); got != 1 {
		t.Fatalf("empty reason should map to unknown, got %f", got)
	}
	if got := counterValue(t, mfs, "pos_orders_total_mismatch_total", "", ""); got != 1 {
		t.Fatalf("expected mismatch=1, got %f", got)
	}
	mf := findMetricFamily(mfs, "pos_order_value")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleSum() != 42.5 {
		t.Fatalf("expected order value sum 42.5")
	}
}

func TestPublisherMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPublisherMetrics(reg)
	m.ObserveBatch(150 * time.Millisecond)
	m.IncPublished("order.placed")
	m.IncFailed("order.placed")
	m.IncFailed("order.placed")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(t, mfs, "pos_outbox_published_total", "event_type", "order.placed"); got != 1 {
		t.Fatalf("expected published=1, got %f", got)
	}
	if got := counterValue(t, mfs, "pos_outbox_failed_total", "event_type", "order.placed"); got != 2 {
		t.Fatalf("expected failed=2, got %f", got)
	}
}

func TestJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.ObserveDuration("outbox-retention", time.Second)
	m.IncSuccess("outbox-retention")
	m.IncFailure("orphan-uploads")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(t, mfs, "pos_job_success_total", "job", "outbox-retention"); got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}
	if got := counterValue(t, mfs, "pos_job_failure_total", "job", "orphan-uploads"); got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var orders *OrderMetrics
	orders.IncPlaced(decimal.Zero)
	orders.IncRejected("x")
	orders.IncTotalMismatch()

	var httpMetrics *HTTPMetrics
	httpMetrics.Observe("GET", "/", 200, time.Millisecond)

	var publisher *PublisherMetrics
	publisher.ObserveBatch(time.Second)

	var jobs *JobMetrics
	jobs.IncFailure("x")

	if NewOrderMetrics(nil) != nil || NewHTTPMetrics(nil) != nil || NewPublisherMetrics(nil) != nil || NewJobMetrics(nil) != nil {
		t.Fatalf("nil registerer should yield nil metrics")
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewHTTPMetrics(reg).Observe(http.MethodGet, "/orders", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `pos_http_request_duration_seconds_count{method="GET",route="/orders",status="200"} 1`) {
		t.Fatalf("histogram missing from output:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("runtime collector missing")
	}
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return got
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, lp := range labels {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
