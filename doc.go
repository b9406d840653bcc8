// Package syncline provides a local-first synchronization and automation
// engine for multi-tenant business records. It keeps entity collections
// (leads, clients, tickets, invoices, proposals, ...) usable while the
// remote backend is unreachable and reconciles them transparently when
// connectivity returns.
//
// Syncline is designed as a library, not a service. Import it, configure
// a local cache store and a remote gateway, and drive mutations through
// typed collections.
//
// # Quick Start
//
//	s, err := syncline.New(
//	    syncline.WithCache(bunCache),
//	    syncline.WithRemoteTimeout(5*time.Second),
//	)
//
// # Architecture
//
// Every mutation commits to in-memory state and the local cache before the
// function returns; the remote write is scheduled afterwards and never
// blocks or fails the caller. Failed remote writes land in a locally
// persisted pending queue and are drained once the backend is reachable
// again. Reconciliation merges remote snapshots into local state without
// ever discarding unsynced local work.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based,
// client-generated identifiers.
package syncline
