package reconcile

import (
	"sync"
	"time"
)

// SyncState is a snapshot of the engine's synchronization status.
type SyncState struct {
	// Syncing reports whether a reconciliation pass is in progress.
	Syncing bool `json:"syncing"`

	// LastSyncAt is when the last pass finished, zero if never.
	LastSyncAt time.Time `json:"last_sync_at"`

	// LastError is the most recent pass-level failure, empty on success.
	LastError string `json:"last_error,omitempty"`
}

// StateTracker tracks sync status across reconciliation passes.
// Safe for concurrent use.
type StateTracker struct {
	mu    sync.Mutex
	state SyncState
}

// Begin marks a pass as started.
func (t *StateTracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Syncing = true
}

// End marks a pass as finished, stamping the sync time regardless of
// success or failure.
func (t *StateTracker) End(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Syncing = false
	t.state.LastSyncAt = time.Now().UTC()
	if err != nil {
		t.state.LastError = err.Error()
	} else {
		t.state.LastError = ""
	}
}

// RestoreLastSync seeds the last-sync timestamp from persisted state at
// startup. A pass that already ran wins over the restored value.
func (t *StateTracker) RestoreLastSync(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.LastSyncAt.IsZero() {
		t.state.LastSyncAt = at
	}
}

// State returns a snapshot of the current sync status.
func (t *StateTracker) State() SyncState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
