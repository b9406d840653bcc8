package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/syncline/syncline/reconcile"
)

type fakeTarget struct {
	name   string
	err    error
	mu     sync.Mutex
	pulled int
}

func (f *fakeTarget) CollectionName() string { return f.name }

func (f *fakeTarget) Pull(ctx context.Context) error {
	f.mu.Lock()
	f.pulled++
	f.mu.Unlock()
	return f.err
}

func (f *fakeTarget) pulls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulled
}

type captureMonitor struct {
	mu      sync.Mutex
	started int
	failed  []int
}

func (m *captureMonitor) SyncStarted(ctx context.Context) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

func (m *captureMonitor) SyncCompleted(ctx context.Context, failed int) {
	m.mu.Lock()
	m.failed = append(m.failed, failed)
	m.mu.Unlock()
}

func TestReconcilerRunAllTargets(t *testing.T) {
	t.Parallel()

	leads := &fakeTarget{name: "leads"}
	clients := &fakeTarget{name: "clients"}

	r := reconcile.New(slog.New(slog.DiscardHandler))
	if err := r.Run(context.Background(), []reconcile.Target{leads, clients}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if leads.pulls() != 1 || clients.pulls() != 1 {
		t.Errorf("pull counts = %d, %d; want 1, 1", leads.pulls(), clients.pulls())
	}

	state := r.State()
	if state.Syncing {
		t.Error("Syncing should be false after Run returns")
	}
	if state.LastSyncAt.IsZero() {
		t.Error("LastSyncAt not stamped")
	}
	if state.LastError != "" {
		t.Errorf("LastError = %q, want empty", state.LastError)
	}
}

func TestReconcilerIsolatesFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("decode: corrupt payload")
	leads := &fakeTarget{name: "leads", err: boom}
	clients := &fakeTarget{name: "clients"}
	tickets := &fakeTarget{name: "tickets"}

	mon := &captureMonitor{}
	r := reconcile.New(slog.New(slog.DiscardHandler), reconcile.WithMonitor(mon))

	err := r.Run(context.Background(), []reconcile.Target{leads, clients, tickets})
	if err == nil {
		t.Fatal("Run should report the failed table")
	}
	if !errors.Is(err, boom) {
		t.Errorf("aggregate error should wrap the table error, got %v", err)
	}
	if !strings.Contains(err.Error(), "leads") {
		t.Errorf("aggregate error should name the table, got %q", err)
	}

	// The other tables still completed their pull.
	if clients.pulls() != 1 || tickets.pulls() != 1 {
		t.Errorf("healthy tables skipped: clients=%d tickets=%d", clients.pulls(), tickets.pulls())
	}

	if mon.started != 1 {
		t.Errorf("SyncStarted called %d times, want 1", mon.started)
	}
	if len(mon.failed) != 1 || mon.failed[0] != 1 {
		t.Errorf("SyncCompleted failed counts = %v, want [1]", mon.failed)
	}

	state := r.State()
	if state.LastError == "" {
		t.Error("LastError should record the failed pass")
	}
	if state.LastSyncAt.IsZero() {
		t.Error("a partially failed pass still stamps LastSyncAt")
	}
}

func TestReconcilerParallelismBound(t *testing.T) {
	t.Parallel()

	targets := make([]reconcile.Target, 8)
	for i := range targets {
		targets[i] = &fakeTarget{name: "t"}
	}

	r := reconcile.New(slog.New(slog.DiscardHandler), reconcile.WithParallelism(2))
	if err := r.Run(context.Background(), targets); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, target := range targets {
		if target.(*fakeTarget).pulls() != 1 {
			t.Fatal("every target should be pulled exactly once")
		}
	}
}

func TestStateTracker(t *testing.T) {
	t.Parallel()

	var tr reconcile.StateTracker

	tr.Begin()
	if !tr.State().Syncing {
		t.Error("Begin should mark syncing")
	}

	before := time.Now().UTC()
	tr.End(nil)
	state := tr.State()
	if state.Syncing {
		t.Error("End should clear syncing")
	}
	if state.LastSyncAt.Before(before) {
		t.Error("End should stamp LastSyncAt")
	}

	tr.Begin()
	tr.End(errors.New("pull failed"))
	if got := tr.State().LastError; !strings.Contains(got, "pull failed") {
		t.Errorf("LastError = %q, want to contain %q", got, "pull failed")
	}
}
