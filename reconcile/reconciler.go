package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syncline/syncline"
)

// Target is one reconcilable collection. Coordinator collections
// implement it; Pull fetches the remote snapshot and merges it into
// local state under the collection's writer lock.
type Target interface {
	// CollectionName returns the collection's cache key / table name.
	CollectionName() string

	// Pull fetches the remote snapshot and merges it into local state.
	// An unavailable remote is not an error: it leaves local state
	// untouched.
	Pull(ctx context.Context) error
}

// Monitor receives pass lifecycle notifications. The engine adapts the
// extension registry onto it.
type Monitor interface {
	SyncStarted(ctx context.Context)
	SyncCompleted(ctx context.Context, failed int)
}

// nopMonitor is used when no Monitor is configured.
type nopMonitor struct{}

func (nopMonitor) SyncStarted(context.Context)        {}
func (nopMonitor) SyncCompleted(context.Context, int) {}

// Reconciler runs multi-table reconciliation passes: all targets are
// pulled in parallel, each isolated so one table's failure never blocks
// the merge of another.
type Reconciler struct {
	tracker *StateTracker
	monitor Monitor
	logger  *slog.Logger

	// Parallelism bounds concurrent table fetches. Zero means no bound.
	Parallelism int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithMonitor sets the pass lifecycle monitor.
func WithMonitor(m Monitor) Option {
	return func(r *Reconciler) { r.monitor = m }
}

// WithParallelism bounds concurrent table fetches.
func WithParallelism(n int) Option {
	return func(r *Reconciler) { r.Parallelism = n }
}

// New creates a Reconciler.
func New(logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		tracker: &StateTracker{},
		monitor: nopMonitor{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current sync status snapshot.
func (r *Reconciler) State() SyncState {
	return r.tracker.State()
}

// RestoreLastSync seeds the last-sync timestamp from persisted state.
func (r *Reconciler) RestoreLastSync(at time.Time) {
	r.tracker.RestoreLastSync(at)
}

// Run executes one reconciliation pass over all targets. Failures are
// isolated per table: the pass always completes, stamps the sync time,
// and returns an aggregate error naming the tables that failed. An
// unavailable remote is not a failure; it leaves local state untouched.
func (r *Reconciler) Run(ctx context.Context, targets []Target) error {
	r.tracker.Begin()
	r.monitor.SyncStarted(ctx)

	g, gctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}

	errs := make([]error, len(targets))
	for i, target := range targets {
		g.Go(func() error {
			if err := target.Pull(gctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", target.CollectionName(), err)
				r.logger.Warn("collection pull failed",
					slog.String("collection", target.CollectionName()),
					slog.String("error", err.Error()),
				)
			}
			return nil // isolate: never cancel sibling pulls
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	err := errors.Join(errs...)
	r.tracker.End(err)
	r.monitor.SyncCompleted(ctx, failed)

	if err != nil {
		return fmt.Errorf("syncline: reconciliation: %w", err)
	}
	return nil
}

// Unavailable reports whether err is the remote-unavailable sentinel.
func Unavailable(err error) bool {
	return errors.Is(err, syncline.ErrRemoteUnavailable)
}
