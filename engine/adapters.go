package engine

import (
	"context"
	"sync"
	"time"

	"github.com/syncline/syncline/automation"
	"github.com/syncline/syncline/coordinator"
	"github.com/syncline/syncline/ext"
	"github.com/syncline/syncline/record"
)

// eventsBridge adapts the extension registry and the automation
// dispatcher onto coordinator.Events. This breaks the import cycle:
// coordinator defines the interface, ext.Registry and the dispatcher
// provide the behavior, and the engine layer plugs them together.
//
// The dispatcher field is filled in after the collections are built,
// because the dispatcher reads its rules and webhooks from two of those
// collections.
type eventsBridge struct {
	registry   *ext.Registry
	dispatcher *automation.Dispatcher
}

var _ coordinator.Events = (*eventsBridge)(nil)

func (b *eventsBridge) RecordCreated(ctx context.Context, collection string, rec record.Record) {
	b.registry.EmitRecordCreated(ctx, collection, rec)
}

func (b *eventsBridge) RecordUpdated(ctx context.Context, collection string, rec record.Record) {
	b.registry.EmitRecordUpdated(ctx, collection, rec)
}

func (b *eventsBridge) RecordDeleted(ctx context.Context, collection, recordID string) {
	b.registry.EmitRecordDeleted(ctx, collection, recordID)
}

func (b *eventsBridge) Trigger(ctx context.Context, trigger string, payload any) {
	if b.dispatcher == nil {
		return
	}
	b.dispatcher.Dispatch(ctx, trigger, payload)
}

// extSyncMonitor adapts *ext.Registry to reconcile.Monitor, measuring
// pass duration itself since the reconciler does not report it.
type extSyncMonitor struct {
	r *ext.Registry

	mu      sync.Mutex
	started time.Time
}

func (m *extSyncMonitor) SyncStarted(ctx context.Context) {
	m.mu.Lock()
	m.started = time.Now()
	m.mu.Unlock()
	m.r.EmitSyncStarted(ctx)
}

func (m *extSyncMonitor) SyncCompleted(ctx context.Context, failed int) {
	m.mu.Lock()
	elapsed := time.Since(m.started)
	m.mu.Unlock()
	m.r.EmitSyncCompleted(ctx, failed, elapsed)
}

// extPendingMonitor adapts *ext.Registry to pending.Monitor.
type extPendingMonitor struct {
	r *ext.Registry
}

func (m *extPendingMonitor) PendingEnqueued(ctx context.Context, collection, recordID, op string) {
	m.r.EmitPendingEnqueued(ctx, collection, recordID, op)
}

func (m *extPendingMonitor) PendingFlushed(ctx context.Context, flushed, dropped int) {
	m.r.EmitPendingFlushed(ctx, flushed, dropped)
}

// extHookMonitor adapts *ext.Registry to automation.Monitor.
type extHookMonitor struct {
	r *ext.Registry
}

func (m *extHookMonitor) RuleMatched(ctx context.Context, trigger, ruleID string) {
	m.r.EmitRuleMatched(ctx, trigger, ruleID)
}

func (m *extHookMonitor) WebhookDelivered(ctx context.Context, trigger, url string, status int, elapsed time.Duration) {
	m.r.EmitWebhookDelivered(ctx, trigger, url, status, elapsed)
}

func (m *extHookMonitor) WebhookFailed(ctx context.Context, trigger, url string, err error) {
	m.r.EmitWebhookFailed(ctx, trigger, url, err)
}

// collectionSource feeds the automation dispatcher from the rule and
// webhook collections, so operator edits take effect on the next
// dispatch without any reload step.
type collectionSource struct {
	rules    *coordinator.Collection[*automation.Rule]
	webhooks *coordinator.Collection[*automation.Webhook]
}

var _ automation.Source = (*collectionSource)(nil)

func (s *collectionSource) ActiveRules(trigger string) []*automation.Rule {
	var out []*automation.Rule
	for _, r := range s.rules.List() {
		if r.Active && r.Trigger == trigger {
			out = append(out, r)
		}
	}
	return out
}

func (s *collectionSource) ActiveWebhooks(trigger string) []*automation.Webhook {
	var out []*automation.Webhook
	for _, w := range s.webhooks.List() {
		if w.Active && w.Trigger == trigger {
			out = append(out, w)
		}
	}
	return out
}
