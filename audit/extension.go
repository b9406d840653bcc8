package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syncline/syncline/ext"
	"github.com/syncline/syncline/record"
	"github.com/syncline/syncline/scope"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*Extension)(nil)
	_ ext.RecordCreated    = (*Extension)(nil)
	_ ext.RecordUpdated    = (*Extension)(nil)
	_ ext.RecordDeleted    = (*Extension)(nil)
	_ ext.SyncCompleted    = (*Extension)(nil)
	_ ext.RuleMatched      = (*Extension)(nil)
	_ ext.WebhookDelivered = (*Extension)(nil)
	_ ext.WebhookFailed    = (*Extension)(nil)
	_ ext.PendingEnqueued  = (*Extension)(nil)
	_ ext.PendingFlushed   = (*Extension)(nil)
)

// Recorder is the interface audit backends must implement. It is
// defined locally so callers inject their concrete backend at wiring
// time without this package depending on it.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *Event) error
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *Event) error

func (f RecorderFunc) Record(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Event is one audit trail entry.
type Event struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	OrgID      string         `json:"org_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges sync lifecycle events to an audit trail backend.
// Each hook emits a structured audit event through the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithActions restricts the extension to emit only the listed actions.
// By default every action is enabled. Unknown actions are silently
// ignored.
func WithActions(actions ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool, len(actions))
		for _, a := range actions {
			e.enabled[a] = true
		}
	}
}

// WithLogger sets a custom logger for the extension.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) { e.logger = l }
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit" }

// ── Record lifecycle hooks ──────────────────────────

// OnRecordCreated implements ext.RecordCreated.
func (e *Extension) OnRecordCreated(ctx context.Context, collection string, rec record.Record) error {
	return e.record(ctx, ActionRecordCreated, SeverityInfo, OutcomeSuccess,
		ResourceRecord, rec.RecordID(), CategoryRecord, nil,
		"collection", collection,
	)
}

// OnRecordUpdated implements ext.RecordUpdated.
func (e *Extension) OnRecordUpdated(ctx context.Context, collection string, rec record.Record) error {
	return e.record(ctx, ActionRecordUpdated, SeverityInfo, OutcomeSuccess,
		ResourceRecord, rec.RecordID(), CategoryRecord, nil,
		"collection", collection,
	)
}

// OnRecordDeleted implements ext.RecordDeleted.
func (e *Extension) OnRecordDeleted(ctx context.Context, collection, recordID string) error {
	return e.record(ctx, ActionRecordDeleted, SeverityInfo, OutcomeSuccess,
		ResourceRecord, recordID, CategoryRecord, nil,
		"collection", collection,
	)
}

// ── Sync lifecycle hooks ────────────────────────────

// OnSyncCompleted implements ext.SyncCompleted.
func (e *Extension) OnSyncCompleted(ctx context.Context, failed int, elapsed time.Duration) error {
	severity, outcome := SeverityInfo, OutcomeSuccess
	if failed > 0 {
		severity, outcome = SeverityWarning, OutcomeFailure
	}
	return e.record(ctx, ActionSyncCompleted, severity, outcome,
		ResourceSyncPass, "", CategorySync, nil,
		"failed_tables", failed,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ── Automation hooks ────────────────────────────────

// OnRuleMatched implements ext.RuleMatched.
func (e *Extension) OnRuleMatched(ctx context.Context, trigger, ruleID string) error {
	return e.record(ctx, ActionRuleMatched, SeverityInfo, OutcomeSuccess,
		ResourceRule, ruleID, CategoryAutomation, nil,
		"trigger", trigger,
	)
}

// OnWebhookDelivered implements ext.WebhookDelivered.
func (e *Extension) OnWebhookDelivered(ctx context.Context, trigger, url string, status int, elapsed time.Duration) error {
	return e.record(ctx, ActionWebhookDelivered, SeverityInfo, OutcomeSuccess,
		ResourceWebhook, url, CategoryAutomation, nil,
		"trigger", trigger,
		"status", status,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnWebhookFailed implements ext.WebhookFailed.
func (e *Extension) OnWebhookFailed(ctx context.Context, trigger, url string, hookErr error) error {
	return e.record(ctx, ActionWebhookFailed, SeverityWarning, OutcomeFailure,
		ResourceWebhook, url, CategoryAutomation, hookErr,
		"trigger", trigger,
	)
}

// ── Pending queue hooks ─────────────────────────────

// OnPendingEnqueued implements ext.PendingEnqueued.
func (e *Extension) OnPendingEnqueued(ctx context.Context, collection, recordID, op string) error {
	return e.record(ctx, ActionPendingEnqueued, SeverityWarning, OutcomeFailure,
		ResourcePendingWrite, recordID, CategoryPending, nil,
		"collection", collection,
		"op", op,
	)
}

// OnPendingFlushed implements ext.PendingFlushed.
func (e *Extension) OnPendingFlushed(ctx context.Context, flushed, dropped int) error {
	severity, outcome := SeverityInfo, OutcomeSuccess
	if dropped > 0 {
		severity, outcome = SeverityCritical, OutcomeFailure
	}
	return e.record(ctx, ActionPendingFlushed, severity, outcome,
		ResourcePendingWrite, "", CategoryPending, nil,
		"flushed", flushed,
		"dropped", dropped,
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &Event{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		OrgID:      scope.OrgFrom(ctx),
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
