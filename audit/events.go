package audit

// Audit event actions. Each constant corresponds to one ext lifecycle
// hook and becomes the Action field of the audit event.
const (
	ActionRecordCreated    = "record.created"
	ActionRecordUpdated    = "record.updated"
	ActionRecordDeleted    = "record.deleted"
	ActionSyncCompleted    = "sync.completed"
	ActionRuleMatched      = "automation.rule_matched"
	ActionWebhookDelivered = "automation.webhook_delivered"
	ActionWebhookFailed    = "automation.webhook_failed"
	ActionPendingEnqueued  = "pending.enqueued"
	ActionPendingFlushed   = "pending.flushed"
)

// Audit event categories group related actions.
const (
	CategoryRecord     = "syncline.record"
	CategorySync       = "syncline.sync"
	CategoryAutomation = "syncline.automation"
	CategoryPending    = "syncline.pending"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceRecord       = "record"
	ResourceSyncPass     = "sync_pass"
	ResourceRule         = "workflow_rule"
	ResourceWebhook      = "webhook"
	ResourcePendingWrite = "pending_write"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionRecordCreated,
		ActionRecordUpdated,
		ActionRecordDeleted,
		ActionSyncCompleted,
		ActionRuleMatched,
		ActionWebhookDelivered,
		ActionWebhookFailed,
		ActionPendingEnqueued,
		ActionPendingFlushed,
	}
}
