// Package audit bridges sync lifecycle events to an audit trail
// backend. Register the Extension with the engine and every mutation,
// reconciliation pass, automation delivery, and pending-queue change
// is emitted as a structured audit event through the injected Recorder.
//
// The Recorder interface is defined locally so this package carries no
// dependency on any particular audit store; callers bridge it to their
// backend with a RecorderFunc.
package audit
