package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/id"
	"github.com/syncline/syncline/observability"
	"github.com/syncline/syncline/record"
)

func newTestExtension() (*observability.MetricsExtension, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return observability.NewMetricsExtensionWithMeter(mp.Meter("test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumByAttr(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64] data", m.Name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, found := dp.Attributes.Value(attribute.Key(key)); found && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func testLead() *record.Lead {
	return &record.Lead{
		Entity: syncline.NewEntity(),
		ID:     id.NewLeadID(),
		Name:   "Acme deal",
		Stage:  record.StageNew,
	}
}

func TestMetricsExtension_Name(t *testing.T) {
	e, _ := newTestExtension()
	if e.Name() != "observability-metrics" {
		t.Errorf("expected name %q, got %q", "observability-metrics", e.Name())
	}
}

func TestMetricsExtension_CountsMutationsByOp(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()

	if err := e.OnRecordCreated(ctx, record.CollectionLeads, testLead()); err != nil {
		t.Fatalf("OnRecordCreated: %v", err)
	}
	if err := e.OnRecordUpdated(ctx, record.CollectionLeads, testLead()); err != nil {
		t.Fatalf("OnRecordUpdated: %v", err)
	}
	if err := e.OnRecordDeleted(ctx, record.CollectionLeads, "lead_1"); err != nil {
		t.Fatalf("OnRecordDeleted: %v", err)
	}

	m := findMetric(collect(t, reader), "syncline.records.mutations")
	if m == nil {
		t.Fatal("syncline.records.mutations not found")
	}
	for _, op := range []string{"create", "update", "delete"} {
		if got := sumByAttr(t, m, "op", op); got != 1 {
			t.Errorf("op %q count = %d, want 1", op, got)
		}
	}
}

func TestMetricsExtension_SyncPassOutcome(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()

	if err := e.OnSyncCompleted(ctx, 0, time.Second); err != nil {
		t.Fatalf("OnSyncCompleted: %v", err)
	}
	if err := e.OnSyncCompleted(ctx, 2, time.Second); err != nil {
		t.Fatalf("OnSyncCompleted: %v", err)
	}

	rm := collect(t, reader)
	passes := findMetric(rm, "syncline.sync.passes")
	if passes == nil {
		t.Fatal("syncline.sync.passes not found")
	}
	if got := sumByAttr(t, passes, "outcome", "ok"); got != 1 {
		t.Errorf("ok passes = %d, want 1", got)
	}
	if got := sumByAttr(t, passes, "outcome", "partial"); got != 1 {
		t.Errorf("partial passes = %d, want 1", got)
	}

	duration := findMetric(rm, "syncline.sync.duration")
	if duration == nil {
		t.Fatal("syncline.sync.duration not found")
	}
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("expected Histogram[float64] data")
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("duration samples = %d, want 2", count)
	}
}

func TestMetricsExtension_WebhookOutcomes(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()

	if err := e.OnWebhookDelivered(ctx, "lead_created", "https://example.com", 200, time.Second); err != nil {
		t.Fatalf("OnWebhookDelivered: %v", err)
	}
	if err := e.OnWebhookFailed(ctx, "lead_created", "https://example.com", errors.New("refused")); err != nil {
		t.Fatalf("OnWebhookFailed: %v", err)
	}
	if err := e.OnRuleMatched(ctx, "lead_created", "rule_1"); err != nil {
		t.Fatalf("OnRuleMatched: %v", err)
	}

	rm := collect(t, reader)
	hooks := findMetric(rm, "syncline.automation.webhooks")
	if hooks == nil {
		t.Fatal("syncline.automation.webhooks not found")
	}
	if got := sumByAttr(t, hooks, "status", "delivered"); got != 1 {
		t.Errorf("delivered = %d, want 1", got)
	}
	if got := sumByAttr(t, hooks, "status", "failed"); got != 1 {
		t.Errorf("failed = %d, want 1", got)
	}

	rules := findMetric(rm, "syncline.automation.rules_matched")
	if rules == nil {
		t.Fatal("syncline.automation.rules_matched not found")
	}
	if got := sumByAttr(t, rules, "trigger", "lead_created"); got != 1 {
		t.Errorf("rules matched = %d, want 1", got)
	}
}

func TestMetricsExtension_PendingQueueChurn(t *testing.T) {
	e, reader := newTestExtension()
	ctx := context.Background()

	if err := e.OnPendingEnqueued(ctx, record.CollectionLeads, "lead_1", "upsert"); err != nil {
		t.Fatalf("OnPendingEnqueued: %v", err)
	}
	if err := e.OnPendingFlushed(ctx, 3, 1); err != nil {
		t.Fatalf("OnPendingFlushed: %v", err)
	}

	rm := collect(t, reader)
	in := findMetric(rm, "syncline.pending.enqueued")
	if in == nil {
		t.Fatal("syncline.pending.enqueued not found")
	}
	if got := sumByAttr(t, in, "collection", record.CollectionLeads); got != 1 {
		t.Errorf("enqueued = %d, want 1", got)
	}

	out := findMetric(rm, "syncline.pending.resolved")
	if out == nil {
		t.Fatal("syncline.pending.resolved not found")
	}
	if got := sumByAttr(t, out, "outcome", "flushed"); got != 3 {
		t.Errorf("flushed = %d, want 3", got)
	}
	if got := sumByAttr(t, out, "outcome", "dropped"); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
}
