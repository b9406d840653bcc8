package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/backoff"
	"github.com/syncline/syncline/cache"
	"github.com/syncline/syncline/id"
	"github.com/syncline/syncline/remote"
)

// Collection is the reserved local store key holding the queue.
const Collection = "pending_writes"

// DefaultMaxAttempts is the retry budget for a queued write.
const DefaultMaxAttempts = 8

// Monitor receives queue lifecycle notifications. The engine adapts the
// extension registry onto it.
type Monitor interface {
	PendingEnqueued(ctx context.Context, collection, recordID, op string)
	PendingFlushed(ctx context.Context, flushed, dropped int)
}

// nopMonitor is used when no Monitor is configured.
type nopMonitor struct{}

func (nopMonitor) PendingEnqueued(context.Context, string, string, string) {}
func (nopMonitor) PendingFlushed(context.Context, int, int)                {}

// Queue holds record writes awaiting replay against the remote.
// Safe for concurrent use.
type Queue struct {
	store    cache.Store
	gateway  remote.Gateway
	strategy backoff.Strategy
	monitor  Monitor
	logger   *slog.Logger

	maxAttempts int

	mu      sync.Mutex
	entries []*Entry
}

// Option configures a Queue.
type Option func(*Queue)

// WithBackoff sets the retry delay strategy.
func WithBackoff(s backoff.Strategy) Option {
	return func(q *Queue) { q.strategy = s }
}

// WithMaxAttempts sets the per-entry retry budget.
func WithMaxAttempts(n int) Option {
	return func(q *Queue) { q.maxAttempts = n }
}

// WithMonitor sets the queue lifecycle monitor.
func WithMonitor(m Monitor) Option {
	return func(q *Queue) { q.monitor = m }
}

// NewQueue creates a pending write queue persisting through store and
// replaying through gateway.
func NewQueue(store cache.Store, gateway remote.Gateway, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		store:       store,
		gateway:     gateway,
		strategy:    backoff.DefaultStrategy(),
		monitor:     nopMonitor{},
		logger:      logger,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Load restores queued entries from the local store. A queue that has
// never been persisted loads empty.
func (q *Queue) Load(ctx context.Context) error {
	data, err := q.store.LoadCollection(ctx, Collection)
	if errors.Is(err, syncline.ErrNotCached) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pending: load queue: %w", err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("pending: %w: %w", syncline.ErrCorruptCache, err)
	}

	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
	return nil
}

// Enqueue persists a failed write for later replay. The entry's
// identity fields must be set by the caller; Enqueue stamps the rest.
func (q *Queue) Enqueue(ctx context.Context, e *Entry, pushErr error) error {
	now := time.Now().UTC()
	e.ID = id.NewPendingID()
	e.Error = pushErr.Error()
	e.Attempts = 1
	if e.MaxAttempts == 0 {
		e.MaxAttempts = q.maxAttempts
	}
	e.NextAttempt = now.Add(q.strategy.Delay(1))
	e.FailedAt = now
	e.CreatedAt = now

	q.mu.Lock()
	q.entries = append(q.entries, e)
	err := q.persistLocked(ctx)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	q.logger.Info("remote write queued for retry",
		slog.String("collection", e.Collection),
		slog.String("record_id", e.RecordID),
		slog.String("op", e.Op),
		slog.String("error", e.Error),
	)
	q.monitor.PendingEnqueued(ctx, e.Collection, e.RecordID, e.Op)
	return nil
}

// Drain replays eligible entries against the remote, oldest first.
// An unreachable remote ends the pass early with nothing consumed.
// Entries that keep failing are rescheduled with backoff and dropped
// once their attempt budget is spent. Returns the number of entries
// flushed to the remote and the number dropped.
func (q *Queue) Drain(ctx context.Context) (flushed, dropped int, err error) {
	now := time.Now().UTC()

	q.mu.Lock()
	defer q.mu.Unlock()

	remaining := q.entries[:0]
	offline := false
	for i, e := range q.entries {
		if offline || !e.Eligible(now) {
			remaining = append(remaining, e)
			continue
		}

		pushErr := q.replay(ctx, e)
		switch {
		case pushErr == nil:
			flushed++

		case errors.Is(pushErr, syncline.ErrRemoteUnavailable):
			// Still offline. Keep this and everything after it.
			offline = true
			remaining = append(remaining, e)
			q.logger.Debug("pending drain paused, remote unavailable",
				slog.Int("remaining", len(q.entries)-i),
			)

		default:
			e.Attempts++
			e.Error = pushErr.Error()
			if e.Attempts >= e.MaxAttempts {
				dropped++
				q.logger.Warn("pending write dropped, attempts exhausted",
					slog.String("collection", e.Collection),
					slog.String("record_id", e.RecordID),
					slog.String("op", e.Op),
					slog.Int("attempts", e.Attempts),
					slog.String("error", e.Error),
				)
				continue
			}
			e.NextAttempt = now.Add(q.strategy.Delay(e.Attempts))
			remaining = append(remaining, e)
		}
	}
	q.entries = remaining

	if perr := q.persistLocked(ctx); perr != nil {
		return flushed, dropped, perr
	}

	if flushed > 0 || dropped > 0 {
		q.logger.Info("pending queue drained",
			slog.Int("flushed", flushed),
			slog.Int("dropped", dropped),
			slog.Int("remaining", len(q.entries)),
		)
		q.monitor.PendingFlushed(ctx, flushed, dropped)
	}
	return flushed, dropped, nil
}

// replay pushes one entry's write to the remote.
func (q *Queue) replay(ctx context.Context, e *Entry) error {
	switch e.Op {
	case OpDelete:
		return q.gateway.Delete(ctx, e.Collection, e.RecordID)
	default:
		return q.gateway.Upsert(ctx, e.Collection, remote.Row{
			ID:    e.RecordID,
			OrgID: e.OrgID,
			Doc:   e.Doc,
		})
	}
}

// Entries returns a snapshot of the queued entries.
func (q *Queue) Entries() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Count returns the number of queued entries.
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Remove discards a single queued entry by id, for operator tooling
// that gives up on a stuck write.
func (q *Queue) Remove(ctx context.Context, entryID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.ID.String() == entryID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return q.persistLocked(ctx)
		}
	}
	return fmt.Errorf("%w: %q", syncline.ErrPendingNotFound, entryID)
}

// Purge discards all queued entries.
func (q *Queue) Purge(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	return q.persistLocked(ctx)
}

// persistLocked writes the queue to the local store. Caller holds mu.
func (q *Queue) persistLocked(ctx context.Context) error {
	entries := q.entries
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("pending: encode queue: %w", err)
	}
	if err := q.store.SaveCollection(ctx, Collection, data); err != nil {
		return fmt.Errorf("pending: persist queue: %w", err)
	}
	return nil
}
