package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/authz"
	"github.com/syncline/syncline/automation"
	"github.com/syncline/syncline/cache"
	"github.com/syncline/syncline/middleware"
	"github.com/syncline/syncline/pending"
	"github.com/syncline/syncline/reconcile"
	"github.com/syncline/syncline/record"
	"github.com/syncline/syncline/remote"
	"github.com/syncline/syncline/scope"
)

// DefaultRemoteTimeout bounds one fire-and-forget remote write.
const DefaultRemoteTimeout = 10 * time.Second

// Events receives mutation notifications. The engine adapts the
// extension registry and the automation dispatcher onto it.
type Events interface {
	RecordCreated(ctx context.Context, collection string, rec record.Record)
	RecordUpdated(ctx context.Context, collection string, rec record.Record)
	RecordDeleted(ctx context.Context, collection, recordID string)

	// Trigger raises a domain event for automation fan-out.
	Trigger(ctx context.Context, trigger string, payload any)
}

// nopEvents is used when no Events sink is configured.
type nopEvents struct{}

func (nopEvents) RecordCreated(context.Context, string, record.Record) {}
func (nopEvents) RecordUpdated(context.Context, string, record.Record) {}
func (nopEvents) RecordDeleted(context.Context, string, string)        {}
func (nopEvents) Trigger(context.Context, string, any)                 {}

// Collection is the authoritative in-memory state for one entity kind,
// backed by the local store and mirrored best-effort to the remote.
type Collection[T record.Record] struct {
	name    string
	store   cache.Store
	gateway remote.Gateway
	queue   *pending.Queue
	events  Events
	chain   middleware.Middleware
	logger  *slog.Logger

	remoteTimeout time.Duration
	policy        syncline.ConflictPolicy
	createTrigger func(rec T) string
	updateTrigger func(old, updated T) string

	// mu serializes mutations and reconciliation pulls: single-writer
	// semantics for the in-memory slice.
	mu      sync.Mutex
	records []T
	loaded  bool

	// wg tracks in-flight background remote writes.
	wg sync.WaitGroup
}

var _ reconcile.Target = (*Collection[*record.Lead])(nil)

// Option configures a Collection.
type Option[T record.Record] func(*Collection[T])

// WithEvents sets the mutation notification sink.
func WithEvents[T record.Record](e Events) Option[T] {
	return func(c *Collection[T]) { c.events = e }
}

// WithMiddleware wraps every mutation in the given middleware chain.
func WithMiddleware[T record.Record](mws ...middleware.Middleware) Option[T] {
	return func(c *Collection[T]) { c.chain = middleware.Chain(mws...) }
}

// WithPendingQueue queues failed remote writes for retry instead of
// dropping them.
func WithPendingQueue[T record.Record](q *pending.Queue) Option[T] {
	return func(c *Collection[T]) { c.queue = q }
}

// WithRemoteTimeout bounds each background remote write.
func WithRemoteTimeout[T record.Record](d time.Duration) Option[T] {
	return func(c *Collection[T]) { c.remoteTimeout = d }
}

// WithConflictPolicy sets the merge policy used by Pull.
func WithConflictPolicy[T record.Record](p syncline.ConflictPolicy) Option[T] {
	return func(c *Collection[T]) { c.policy = p }
}

// WithCreateTrigger overrides the trigger raised by Create. The default
// maps the collection name through automation.TriggerForCreate.
func WithCreateTrigger[T record.Record](fn func(rec T) string) Option[T] {
	return func(c *Collection[T]) { c.createTrigger = fn }
}

// WithUpdateTrigger sets the trigger raised by Update and Patch, given
// the record before and after the mutation. No trigger fires when fn
// returns "".
func WithUpdateTrigger[T record.Record](fn func(old, updated T) string) Option[T] {
	return func(c *Collection[T]) { c.updateTrigger = fn }
}

// New creates a Collection over the given local store and remote
// gateway. The collection is unusable until Load establishes its
// in-memory state.
func New[T record.Record](name string, store cache.Store, gateway remote.Gateway, logger *slog.Logger, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		name:          name,
		store:         store,
		gateway:       gateway,
		events:        nopEvents{},
		chain:         middleware.Chain(),
		logger:        logger,
		remoteTimeout: DefaultRemoteTimeout,
		policy:        syncline.RemoteWins,
		createTrigger: func(T) string { return automation.TriggerForCreate(name) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectionName implements reconcile.Target.
func (c *Collection[T]) CollectionName() string { return c.name }

// Load establishes in-memory state from the local store, falling back
// to seed when the cache is missing, corrupt, or empty against a
// non-empty seed. It also sets the initialized gate so later startups
// skip seeding.
func (c *Collection[T]) Load(ctx context.Context, seed []T) error {
	records := cache.Load(ctx, c.store, c.name, seed, c.logger)

	c.mu.Lock()
	c.records = records
	c.loaded = true
	c.mu.Unlock()

	if err := c.store.SaveMeta(ctx, cache.MetaInitialized, []byte("1")); err != nil {
		return fmt.Errorf("coordinator: %s: set initialized gate: %w", c.name, err)
	}
	return nil
}

// List returns a snapshot of the collection. The returned records are
// deep copies owned by the caller; apply changes with Update.
func (c *Collection[T]) List() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.records))
	for i, rec := range c.records {
		clone, err := cloneRecord(rec)
		if err != nil {
			c.logger.Warn("record not cloneable, returning live reference",
				slog.String("collection", c.name),
				slog.String("record_id", rec.RecordID()),
				slog.String("error", err.Error()),
			)
			out[i] = rec
			continue
		}
		out[i] = clone
	}
	return out
}

// Get returns a deep copy of the record with the given id. The caller
// owns the copy; apply changes with Update.
func (c *Collection[T]) Get(recordID string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexLocked(recordID)
	if i < 0 {
		return zero, fmt.Errorf("%w: %s %q", syncline.ErrRecordNotFound, c.name, recordID)
	}
	clone, err := cloneRecord(c.records[i])
	if err != nil {
		return zero, fmt.Errorf("coordinator: clone %s %q: %w", c.name, recordID, err)
	}
	return clone, nil
}

// Count returns the number of records held in memory.
func (c *Collection[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Create appends a new record. The id must be unique within the
// collection; a duplicate is rejected with ErrDuplicateID. The record
// is stamped with the session organization before the remote push.
// The collection takes ownership of rec; callers must not mutate it
// after Create returns.
func (c *Collection[T]) Create(ctx context.Context, rec T) error {
	if err := c.ready(); err != nil {
		return err
	}

	m := &middleware.Mutation{
		Op:         authz.ActionCreate,
		Collection: c.name,
		RecordID:   rec.RecordID(),
		OrgID:      scope.OrgFrom(ctx),
	}
	err := c.chain(ctx, m, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.indexLocked(rec.RecordID()) >= 0 {
			return fmt.Errorf("%w: %s %q", syncline.ErrDuplicateID, c.name, rec.RecordID())
		}
		c.stampOrg(ctx, rec)
		c.records = append(c.records, rec)
		return c.persistLocked(ctx)
	})
	if err != nil {
		return err
	}

	c.pushUpsert(ctx, rec)
	c.events.RecordCreated(ctx, c.name, rec)
	if trigger := c.createTrigger(rec); trigger != "" {
		c.events.Trigger(ctx, trigger, rec)
	}
	return nil
}

// Update replaces the record matching rec's id. A missing id is an
// error, not a silent no-op. The collection takes ownership of rec;
// callers must not mutate it after Update returns.
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	if err := c.ready(); err != nil {
		return err
	}

	var old T
	m := &middleware.Mutation{
		Op:         authz.ActionUpdate,
		Collection: c.name,
		RecordID:   rec.RecordID(),
		OrgID:      scope.OrgFrom(ctx),
	}
	err := c.chain(ctx, m, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		i := c.indexLocked(rec.RecordID())
		if i < 0 {
			return fmt.Errorf("%w: %s %q", syncline.ErrRecordNotFound, c.name, rec.RecordID())
		}
		old = c.records[i]
		rec.Touch()
		c.stampOrg(ctx, rec)
		c.records[i] = rec
		return c.persistLocked(ctx)
	})
	if err != nil {
		return err
	}

	c.pushUpsert(ctx, rec)
	c.events.RecordUpdated(ctx, c.name, rec)
	if c.updateTrigger != nil {
		if trigger := c.updateTrigger(old, rec); trigger != "" {
			c.events.Trigger(ctx, trigger, rec)
		}
	}
	return nil
}

// immutableFields are identity keys a Patch may never rewrite; moving a
// record to another id or tenant goes through Delete and Create.
var immutableFields = []string{"id", "organization_id"}

// Patch merges the given fields into the record with recordID, without
// requiring the full entity, and returns the patched record. Identity
// fields are rejected: patching "id" or "organization_id" is an error.
func (c *Collection[T]) Patch(ctx context.Context, recordID string, patch map[string]any) (T, error) {
	var old, patched T
	if err := c.ready(); err != nil {
		return patched, err
	}
	for _, k := range immutableFields {
		if _, found := patch[k]; found {
			return patched, fmt.Errorf("coordinator: patch %s %q: field %q is immutable", c.name, recordID, k)
		}
	}

	m := &middleware.Mutation{
		Op:         authz.ActionUpdate,
		Collection: c.name,
		RecordID:   recordID,
		OrgID:      scope.OrgFrom(ctx),
	}
	err := c.chain(ctx, m, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		i := c.indexLocked(recordID)
		if i < 0 {
			return fmt.Errorf("%w: %s %q", syncline.ErrRecordNotFound, c.name, recordID)
		}
		old = c.records[i]

		merged, err := mergeFields(old, patch)
		if err != nil {
			return fmt.Errorf("coordinator: patch %s %q: %w", c.name, recordID, err)
		}
		merged.Touch()
		c.stampOrg(ctx, merged)
		c.records[i] = merged
		patched = merged
		return c.persistLocked(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	c.pushUpsert(ctx, patched)
	c.events.RecordUpdated(ctx, c.name, patched)
	if c.updateTrigger != nil {
		if trigger := c.updateTrigger(old, patched); trigger != "" {
			c.events.Trigger(ctx, trigger, patched)
		}
	}
	return patched, nil
}

// Delete removes the record with recordID.
func (c *Collection[T]) Delete(ctx context.Context, recordID string) error {
	if err := c.ready(); err != nil {
		return err
	}

	var orgID string
	m := &middleware.Mutation{
		Op:         authz.ActionDelete,
		Collection: c.name,
		RecordID:   recordID,
		OrgID:      scope.OrgFrom(ctx),
	}
	err := c.chain(ctx, m, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		i := c.indexLocked(recordID)
		if i < 0 {
			return fmt.Errorf("%w: %s %q", syncline.ErrRecordNotFound, c.name, recordID)
		}
		orgID = c.records[i].Organization()
		c.records = slices.Delete(c.records, i, i+1)
		return c.persistLocked(ctx)
	})
	if err != nil {
		return err
	}

	c.pushDelete(ctx, recordID, orgID)
	c.events.RecordDeleted(ctx, c.name, recordID)
	return nil
}

// Replace swaps the whole collection, bypassing per-record semantics.
// Used for seeding and imports; no remote writes or events are raised.
func (c *Collection[T]) Replace(ctx context.Context, records []T) error {
	if err := c.ready(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	return c.persistLocked(ctx)
}

// Pull implements reconcile.Target: it fetches the remote snapshot,
// merges it into local state under the writer lock, and persists the
// result. An unavailable remote leaves local state untouched and is not
// an error.
func (c *Collection[T]) Pull(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}

	rows, err := c.gateway.FetchAll(ctx, c.name)
	if errors.Is(err, syncline.ErrRemoteUnavailable) {
		c.logger.Debug("remote unavailable, keeping local state",
			slog.String("collection", c.name),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	remoteRecords := make([]T, 0, len(rows))
	for _, row := range rows {
		var rec T
		if err := json.Unmarshal(row.Doc, &rec); err != nil {
			return fmt.Errorf("decode record %q: %w", row.ID, err)
		}
		remoteRecords = append(remoteRecords, rec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = reconcile.Merge(c.records, remoteRecords, c.policy)
	if err := c.persistLocked(ctx); err != nil {
		return err
	}

	c.logger.Debug("collection reconciled",
		slog.String("collection", c.name),
		slog.Int("local", len(c.records)),
		slog.Int("remote", len(remoteRecords)),
	)
	return nil
}

// Flush blocks until all in-flight background remote writes finish.
func (c *Collection[T]) Flush() {
	c.wg.Wait()
}

// ──────────────────────────────────────────────────
// internals
// ──────────────────────────────────────────────────

func (c *Collection[T]) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return fmt.Errorf("%w: %s", syncline.ErrNotLoaded, c.name)
	}
	return nil
}

// indexLocked returns the position of recordID, -1 when absent.
// Caller holds mu.
func (c *Collection[T]) indexLocked(recordID string) int {
	for i, rec := range c.records {
		if rec.RecordID() == recordID {
			return i
		}
	}
	return -1
}

// stampOrg fills in the session organization on unscoped records so the
// remote copy always carries the tenant. Caller holds mu.
func (c *Collection[T]) stampOrg(ctx context.Context, rec T) {
	if rec.Organization() != "" {
		return
	}
	if org := scope.OrgFrom(ctx); org != "" {
		rec.SetOrganization(org)
	}
}

// persistLocked writes the collection to the local store. Caller holds
// mu.
func (c *Collection[T]) persistLocked(ctx context.Context) error {
	if err := cache.Save(ctx, c.store, c.name, c.records); err != nil {
		return fmt.Errorf("coordinator: persist %s: %w", c.name, err)
	}
	return nil
}

// pushUpsert mirrors a record to the remote in the background. Failures
// are queued for retry, never surfaced to the mutation caller.
func (c *Collection[T]) pushUpsert(ctx context.Context, rec T) {
	doc, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("remote push skipped, record not serializable",
			slog.String("collection", c.name),
			slog.String("record_id", rec.RecordID()),
			slog.String("error", err.Error()),
		)
		return
	}
	row := remote.Row{ID: rec.RecordID(), OrgID: rec.Organization(), Doc: doc}

	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		pushCtx, cancel := context.WithTimeout(bg, c.remoteTimeout)
		err := c.gateway.Upsert(pushCtx, c.name, row)
		cancel()
		if err != nil {
			c.queueRetry(bg, &pending.Entry{
				Collection: c.name,
				RecordID:   row.ID,
				OrgID:      row.OrgID,
				Op:         pending.OpUpsert,
				Doc:        doc,
			}, err)
		}
	}()
}

// pushDelete mirrors a deletion to the remote in the background.
func (c *Collection[T]) pushDelete(ctx context.Context, recordID, orgID string) {
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		pushCtx, cancel := context.WithTimeout(bg, c.remoteTimeout)
		err := c.gateway.Delete(pushCtx, c.name, recordID)
		cancel()
		if err != nil {
			c.queueRetry(bg, &pending.Entry{
				Collection: c.name,
				RecordID:   recordID,
				OrgID:      orgID,
				Op:         pending.OpDelete,
			}, err)
		}
	}()
}

func (c *Collection[T]) queueRetry(ctx context.Context, e *pending.Entry, pushErr error) {
	if c.queue == nil {
		c.logger.Warn("remote write lost, no pending queue configured",
			slog.String("collection", e.Collection),
			slog.String("record_id", e.RecordID),
			slog.String("op", e.Op),
			slog.String("error", pushErr.Error()),
		)
		return
	}
	if err := c.queue.Enqueue(ctx, e, pushErr); err != nil {
		c.logger.Error("queueing failed remote write",
			slog.String("collection", e.Collection),
			slog.String("record_id", e.RecordID),
			slog.String("error", err.Error()),
		)
	}
}

// cloneRecord deep-copies a record through its JSON form so read paths
// never hand out pointers into the authoritative slice.
func cloneRecord[T record.Record](rec T) (T, error) {
	var out T
	data, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

// mergeFields applies a field patch to a record through its JSON form.
func mergeFields[T record.Record](rec T, patch map[string]any) (T, error) {
	var merged T

	data, err := json.Marshal(rec)
	if err != nil {
		return merged, err
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return merged, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	data, err = json.Marshal(fields)
	if err != nil {
		return merged, err
	}
	if err := json.Unmarshal(data, &merged); err != nil {
		return merged, err
	}
	return merged, nil
}
