package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/syncline/syncline/record"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type recordCreatedEntry struct {
	name string
	hook RecordCreated
}

type recordUpdatedEntry struct {
	name string
	hook RecordUpdated
}

type recordDeletedEntry struct {
	name string
	hook RecordDeleted
}

type syncStartedEntry struct {
	name string
	hook SyncStarted
}

type syncCompletedEntry struct {
	name string
	hook SyncCompleted
}

type ruleMatchedEntry struct {
	name string
	hook RuleMatched
}

type webhookDeliveredEntry struct {
	name string
	hook WebhookDelivered
}

type webhookFailedEntry struct {
	name string
	hook WebhookFailed
}

type pendingEnqueuedEntry struct {
	name string
	hook PendingEnqueued
}

type pendingFlushedEntry struct {
	name string
	hook PendingFlushed
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	recordCreated    []recordCreatedEntry
	recordUpdated    []recordUpdatedEntry
	recordDeleted    []recordDeletedEntry
	syncStarted      []syncStartedEntry
	syncCompleted    []syncCompletedEntry
	ruleMatched      []ruleMatchedEntry
	webhookDelivered []webhookDeliveredEntry
	webhookFailed    []webhookFailedEntry
	pendingEnqueued  []pendingEnqueuedEntry
	pendingFlushed   []pendingFlushedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(RecordCreated); ok {
		r.recordCreated = append(r.recordCreated, recordCreatedEntry{name, h})
	}
	if h, ok := e.(RecordUpdated); ok {
		r.recordUpdated = append(r.recordUpdated, recordUpdatedEntry{name, h})
	}
	if h, ok := e.(RecordDeleted); ok {
		r.recordDeleted = append(r.recordDeleted, recordDeletedEntry{name, h})
	}
	if h, ok := e.(SyncStarted); ok {
		r.syncStarted = append(r.syncStarted, syncStartedEntry{name, h})
	}
	if h, ok := e.(SyncCompleted); ok {
		r.syncCompleted = append(r.syncCompleted, syncCompletedEntry{name, h})
	}
	if h, ok := e.(RuleMatched); ok {
		r.ruleMatched = append(r.ruleMatched, ruleMatchedEntry{name, h})
	}
	if h, ok := e.(WebhookDelivered); ok {
		r.webhookDelivered = append(r.webhookDelivered, webhookDeliveredEntry{name, h})
	}
	if h, ok := e.(WebhookFailed); ok {
		r.webhookFailed = append(r.webhookFailed, webhookFailedEntry{name, h})
	}
	if h, ok := e.(PendingEnqueued); ok {
		r.pendingEnqueued = append(r.pendingEnqueued, pendingEnqueuedEntry{name, h})
	}
	if h, ok := e.(PendingFlushed); ok {
		r.pendingFlushed = append(r.pendingFlushed, pendingFlushedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Record event emitters
// ──────────────────────────────────────────────────

// EmitRecordCreated notifies all extensions that implement RecordCreated.
func (r *Registry) EmitRecordCreated(ctx context.Context, collection string, rec record.Record) {
	for _, e := range r.recordCreated {
		if err := e.hook.OnRecordCreated(ctx, collection, rec); err != nil {
			r.logHookError("OnRecordCreated", e.name, err)
		}
	}
}

// EmitRecordUpdated notifies all extensions that implement RecordUpdated.
func (r *Registry) EmitRecordUpdated(ctx context.Context, collection string, rec record.Record) {
	for _, e := range r.recordUpdated {
		if err := e.hook.OnRecordUpdated(ctx, collection, rec); err != nil {
			r.logHookError("OnRecordUpdated", e.name, err)
		}
	}
}

// EmitRecordDeleted notifies all extensions that implement RecordDeleted.
func (r *Registry) EmitRecordDeleted(ctx context.Context, collection, recordID string) {
	for _, e := range r.recordDeleted {
		if err := e.hook.OnRecordDeleted(ctx, collection, recordID); err != nil {
			r.logHookError("OnRecordDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Sync event emitters
// ──────────────────────────────────────────────────

// EmitSyncStarted notifies all extensions that implement SyncStarted.
func (r *Registry) EmitSyncStarted(ctx context.Context) {
	for _, e := range r.syncStarted {
		if err := e.hook.OnSyncStarted(ctx); err != nil {
			r.logHookError("OnSyncStarted", e.name, err)
		}
	}
}

// EmitSyncCompleted notifies all extensions that implement SyncCompleted.
func (r *Registry) EmitSyncCompleted(ctx context.Context, failed int, elapsed time.Duration) {
	for _, e := range r.syncCompleted {
		if err := e.hook.OnSyncCompleted(ctx, failed, elapsed); err != nil {
			r.logHookError("OnSyncCompleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Automation event emitters
// ──────────────────────────────────────────────────

// EmitRuleMatched notifies all extensions that implement RuleMatched.
func (r *Registry) EmitRuleMatched(ctx context.Context, trigger, ruleID string) {
	for _, e := range r.ruleMatched {
		if err := e.hook.OnRuleMatched(ctx, trigger, ruleID); err != nil {
			r.logHookError("OnRuleMatched", e.name, err)
		}
	}
}

// EmitWebhookDelivered notifies all extensions that implement WebhookDelivered.
func (r *Registry) EmitWebhookDelivered(ctx context.Context, trigger, url string, status int, elapsed time.Duration) {
	for _, e := range r.webhookDelivered {
		if err := e.hook.OnWebhookDelivered(ctx, trigger, url, status, elapsed); err != nil {
			r.logHookError("OnWebhookDelivered", e.name, err)
		}
	}
}

// EmitWebhookFailed notifies all extensions that implement WebhookFailed.
func (r *Registry) EmitWebhookFailed(ctx context.Context, trigger, url string, hookErr error) {
	for _, e := range r.webhookFailed {
		if err := e.hook.OnWebhookFailed(ctx, trigger, url, hookErr); err != nil {
			r.logHookError("OnWebhookFailed", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitPendingEnqueued notifies all extensions that implement PendingEnqueued.
func (r *Registry) EmitPendingEnqueued(ctx context.Context, collection, recordID, op string) {
	for _, e := range r.pendingEnqueued {
		if err := e.hook.OnPendingEnqueued(ctx, collection, recordID, op); err != nil {
			r.logHookError("OnPendingEnqueued", e.name, err)
		}
	}
}

// EmitPendingFlushed notifies all extensions that implement PendingFlushed.
func (r *Registry) EmitPendingFlushed(ctx context.Context, flushed, dropped int) {
	for _, e := range r.pendingFlushed {
		if err := e.hook.OnPendingFlushed(ctx, flushed, dropped); err != nil {
			r.logHookError("OnPendingFlushed", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
