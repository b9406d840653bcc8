package ext

import (
	"context"
	"time"

	"github.com/syncline/syncline/record"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Record lifecycle hooks
// ──────────────────────────────────────────────────

// RecordCreated is called after a record is created locally.
type RecordCreated interface {
	OnRecordCreated(ctx context.Context, collection string, rec record.Record) error
}

// RecordUpdated is called after a record is updated locally.
type RecordUpdated interface {
	OnRecordUpdated(ctx context.Context, collection string, rec record.Record) error
}

// RecordDeleted is called after a record is deleted locally.
type RecordDeleted interface {
	OnRecordDeleted(ctx context.Context, collection, recordID string) error
}

// ──────────────────────────────────────────────────
// Sync lifecycle hooks
// ──────────────────────────────────────────────────

// SyncStarted is called when a reconciliation pass begins.
type SyncStarted interface {
	OnSyncStarted(ctx context.Context) error
}

// SyncCompleted is called after a reconciliation pass finishes.
// failed counts the collections whose pull failed during the pass.
type SyncCompleted interface {
	OnSyncCompleted(ctx context.Context, failed int, elapsed time.Duration) error
}

// ──────────────────────────────────────────────────
// Automation hooks
// ──────────────────────────────────────────────────

// RuleMatched is called when a workflow rule matches a trigger event.
type RuleMatched interface {
	OnRuleMatched(ctx context.Context, trigger, ruleID string) error
}

// WebhookDelivered is called after a webhook POST succeeds.
type WebhookDelivered interface {
	OnWebhookDelivered(ctx context.Context, trigger, url string, status int, elapsed time.Duration) error
}

// WebhookFailed is called when a webhook POST fails.
type WebhookFailed interface {
	OnWebhookFailed(ctx context.Context, trigger, url string, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// PendingEnqueued is called when a failed remote write is queued for retry.
type PendingEnqueued interface {
	OnPendingEnqueued(ctx context.Context, collection, recordID, op string) error
}

// PendingFlushed is called after a drain pass over the pending queue.
// flushed counts the entries pushed to the remote, dropped the entries
// discarded after exhausting their attempts.
type PendingFlushed interface {
	OnPendingFlushed(ctx context.Context, flushed, dropped int) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
