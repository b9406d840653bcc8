// Package ext defines the extension system for Syncline.
//
// Extensions are notified of lifecycle events and can react to them —
// recording metrics, writing audit trails, mirroring notifications, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnRecordCreated(ctx context.Context, collection string, rec record.Record) error {
//	    log.Printf("%s created in %s", rec.RecordID(), collection)
//	    return nil
//	}
//
// # Record Lifecycle Hooks
//
//   - [RecordCreated] — a record was created locally
//   - [RecordUpdated] — a record was updated locally
//   - [RecordDeleted] — a record was deleted locally
//
// # Sync Lifecycle Hooks
//
//   - [SyncStarted] — a reconciliation pass began
//   - [SyncCompleted] — a reconciliation pass finished
//
// # Automation Hooks
//
//   - [RuleMatched] — a workflow rule matched a trigger event
//   - [WebhookDelivered] — a webhook POST succeeded
//   - [WebhookFailed] — a webhook POST failed
//
// # Other Hooks
//
//   - [PendingEnqueued] — a failed remote write was queued for retry
//   - [PendingFlushed] — a drain pass over the pending queue finished
//   - [Shutdown] — the syncer is shutting down gracefully
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
