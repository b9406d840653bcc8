// Package reconcile merges local entity collections with freshly fetched
// remote snapshots and coordinates multi-table reconciliation passes.
package reconcile

import (
	"github.com/syncline/syncline"
	"github.com/syncline/syncline/record"
)

// Merge combines a local collection with a remote snapshot into one
// authoritative collection, keyed by record id.
//
// An empty or nil remote returns local unchanged: an unreachable remote
// never erases local data. Otherwise the result starts from every local
// record in order; remote records overwrite by id according to the
// conflict policy, and remote-only ids are appended in snapshot order.
// Local-only ids (optimistic creates not yet pushed) always survive.
//
// Re-running Merge with the same remote snapshot is idempotent.
func Merge[T record.Record](local, remote []T, policy syncline.ConflictPolicy) []T {
	if len(remote) == 0 {
		return local
	}

	index := make(map[string]int, len(local))
	result := make([]T, len(local))
	copy(result, local)
	for i, rec := range result {
		index[rec.RecordID()] = i
	}

	for _, rem := range remote {
		i, exists := index[rem.RecordID()]
		if !exists {
			index[rem.RecordID()] = len(result)
			result = append(result, rem)
			continue
		}
		if policy == syncline.PreferNewer && result[i].ModifiedAt().After(rem.ModifiedAt()) {
			continue
		}
		result[i] = rem
	}

	return result
}
