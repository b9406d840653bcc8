// Package pending provides the retry queue for record writes that could
// not reach the remote. It supports inspection, draining, and purging.
//
// When a mutation's remote push fails, the coordinator calls
// [Queue.Enqueue] to persist the write for a later attempt. The original
// document, operation, error message, and attempt counts are preserved
// for debugging.
//
// # Entry
//
// An [Entry] captures:
//   - Collection / RecordID / OrgID: the write's identity
//   - Op: "upsert" or "delete"
//   - Doc: the raw JSON document at time of failure (empty for deletes)
//   - Error: the most recent push error
//   - Attempts / MaxAttempts: the retry budget
//   - NextAttemptAt: earliest eligible retry, per the backoff strategy
//
// # Draining
//
// [Queue.Drain] walks eligible entries oldest-first and replays each
// against the remote gateway. An unreachable remote stops the pass
// early: the remaining entries stay queued and nothing is consumed. An
// entry that keeps failing against a reachable remote is retried with
// exponential backoff and dropped once its attempt budget is spent.
//
// The queue persists through the same local store as the entity
// collections, under a reserved collection key, so queued writes
// survive restarts.
package pending
