package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/syncline/syncline/ext"
	"github.com/syncline/syncline/record"
)

// meterName is the instrumentation scope name for syncline metrics.
const meterName = "github.com/syncline/syncline/observability"

// Compile-time interface checks.
var (
	_ ext.Extension        = (*MetricsExtension)(nil)
	_ ext.RecordCreated    = (*MetricsExtension)(nil)
	_ ext.RecordUpdated    = (*MetricsExtension)(nil)
	_ ext.RecordDeleted    = (*MetricsExtension)(nil)
	_ ext.SyncCompleted    = (*MetricsExtension)(nil)
	_ ext.RuleMatched      = (*MetricsExtension)(nil)
	_ ext.WebhookDelivered = (*MetricsExtension)(nil)
	_ ext.WebhookFailed    = (*MetricsExtension)(nil)
	_ ext.PendingEnqueued  = (*MetricsExtension)(nil)
	_ ext.PendingFlushed   = (*MetricsExtension)(nil)
)

// MetricsExtension records system-wide lifecycle metrics through the
// OTel metric API. Register it as a Syncline extension to track mutation
// rates per collection, sync pass outcomes, automation deliveries, and
// pending-queue churn. With no MeterProvider installed all instruments
// are noops.
type MetricsExtension struct {
	mutations    metric.Int64Counter
	syncPasses   metric.Int64Counter
	syncDuration metric.Float64Histogram
	rulesMatched metric.Int64Counter
	webhooks     metric.Int64Counter
	pendingIn    metric.Int64Counter
	pendingOut   metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global
// MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a specific MeterProvider
// for testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}

	// The OTel API guarantees noop instruments on error.
	m.mutations, _ = meter.Int64Counter(
		"syncline.records.mutations",
		metric.WithDescription("Record mutations by collection and op"),
		metric.WithUnit("{mutation}"),
	)
	m.syncPasses, _ = meter.Int64Counter(
		"syncline.sync.passes",
		metric.WithDescription("Reconciliation passes by outcome"),
		metric.WithUnit("{pass}"),
	)
	m.syncDuration, _ = meter.Float64Histogram(
		"syncline.sync.duration",
		metric.WithDescription("Reconciliation pass duration in seconds"),
		metric.WithUnit("s"),
	)
	m.rulesMatched, _ = meter.Int64Counter(
		"syncline.automation.rules_matched",
		metric.WithDescription("Workflow rule matches by trigger"),
		metric.WithUnit("{match}"),
	)
	m.webhooks, _ = meter.Int64Counter(
		"syncline.automation.webhooks",
		metric.WithDescription("Webhook deliveries by trigger and status"),
		metric.WithUnit("{delivery}"),
	)
	m.pendingIn, _ = meter.Int64Counter(
		"syncline.pending.enqueued",
		metric.WithDescription("Remote writes queued for retry"),
		metric.WithUnit("{write}"),
	)
	m.pendingOut, _ = meter.Int64Counter(
		"syncline.pending.resolved",
		metric.WithDescription("Queued writes flushed or dropped"),
		metric.WithUnit("{write}"),
	)
	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Record lifecycle hooks ──────────────────────────

// OnRecordCreated implements ext.RecordCreated.
func (m *MetricsExtension) OnRecordCreated(ctx context.Context, collection string, _ record.Record) error {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("op", "create"),
	))
	return nil
}

// OnRecordUpdated implements ext.RecordUpdated.
func (m *MetricsExtension) OnRecordUpdated(ctx context.Context, collection string, _ record.Record) error {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("op", "update"),
	))
	return nil
}

// OnRecordDeleted implements ext.RecordDeleted.
func (m *MetricsExtension) OnRecordDeleted(ctx context.Context, collection, _ string) error {
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("op", "delete"),
	))
	return nil
}

// ── Sync lifecycle hooks ────────────────────────────

// OnSyncCompleted implements ext.SyncCompleted.
func (m *MetricsExtension) OnSyncCompleted(ctx context.Context, failed int, elapsed time.Duration) error {
	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.syncPasses.Add(ctx, 1, attrs)
	m.syncDuration.Record(ctx, elapsed.Seconds(), attrs)
	return nil
}

// ── Automation hooks ────────────────────────────────

// OnRuleMatched implements ext.RuleMatched.
func (m *MetricsExtension) OnRuleMatched(ctx context.Context, trigger, _ string) error {
	m.rulesMatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
	))
	return nil
}

// OnWebhookDelivered implements ext.WebhookDelivered.
func (m *MetricsExtension) OnWebhookDelivered(ctx context.Context, trigger, _ string, _ int, _ time.Duration) error {
	m.webhooks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", "delivered"),
	))
	return nil
}

// OnWebhookFailed implements ext.WebhookFailed.
func (m *MetricsExtension) OnWebhookFailed(ctx context.Context, trigger, _ string, _ error) error {
	m.webhooks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", "failed"),
	))
	return nil
}

// ── Pending queue hooks ─────────────────────────────

// OnPendingEnqueued implements ext.PendingEnqueued.
func (m *MetricsExtension) OnPendingEnqueued(ctx context.Context, collection, _, op string) error {
	m.pendingIn.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("op", op),
	))
	return nil
}

// OnPendingFlushed implements ext.PendingFlushed.
func (m *MetricsExtension) OnPendingFlushed(ctx context.Context, flushed, dropped int) error {
	if flushed > 0 {
		m.pendingOut.Add(ctx, int64(flushed), metric.WithAttributes(
			attribute.String("outcome", "flushed"),
		))
	}
	if dropped > 0 {
		m.pendingOut.Add(ctx, int64(dropped), metric.WithAttributes(
			attribute.String("outcome", "dropped"),
		))
	}
	return nil
}
