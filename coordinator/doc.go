// Package coordinator owns the authoritative in-memory collections and
// is the single path through which every record mutation flows.
//
// A mutation commits synchronously to memory and the local store; the
// caller gets its result as soon as the local write lands. The matching
// remote write is fire-and-forget: it runs in the background with a
// timeout, and a failure queues the write for retry instead of ever
// surfacing to the caller.
//
// Each Collection serializes its mutations and reconciliation pulls
// behind one writer lock, so a pull can never overwrite an in-flight
// optimistic mutation.
package coordinator
