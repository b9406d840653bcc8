package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/automation"
	"github.com/syncline/syncline/cache"
	"github.com/syncline/syncline/coordinator"
	"github.com/syncline/syncline/diag"
	"github.com/syncline/syncline/ext"
	mw "github.com/syncline/syncline/middleware"
	"github.com/syncline/syncline/observability"
	"github.com/syncline/syncline/pending"
	"github.com/syncline/syncline/reconcile"
	"github.com/syncline/syncline/record"
	"github.com/syncline/syncline/remote"
)

// Engine is the assembled sync stack: one typed collection per entity
// kind, a shared pending-write queue, the reconciler, and the
// automation dispatcher. Use Build() to create one from a Syncer.
type Engine struct {
	s          *syncline.Syncer
	store      cache.Store
	gateway    remote.Gateway
	extensions *ext.Registry
	queue      *pending.Queue
	reconciler *reconcile.Reconciler
	dispatcher *automation.Dispatcher
	runner     *runner
	logger     *slog.Logger

	leads         *coordinator.Collection[*record.Lead]
	clients       *coordinator.Collection[*record.Client]
	tickets       *coordinator.Collection[*record.Ticket]
	invoices      *coordinator.Collection[*record.Invoice]
	proposals     *coordinator.Collection[*record.Proposal]
	activities    *coordinator.Collection[*record.Activity]
	notifications *coordinator.Collection[*record.Notification]
	fieldDefs     *coordinator.Collection[*record.FieldDef]
	rules         *coordinator.Collection[*automation.Rule]
	webhooks      *coordinator.Collection[*automation.Webhook]

	mws []mw.Middleware

	// OpenTelemetry providers (optional; nil means use global).
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtension registers an extension with the engine.
func WithExtension(e ext.Extension) Option {
	return func(eng *Engine) {
		eng.extensions.Register(e)
	}
}

// WithMiddleware appends middleware to the mutation chain, after the
// built-in recover/tracing/metrics/logging stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m)
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the engine.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(eng *Engine) {
		eng.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, both the metrics middleware and the observability extension
// use this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// Build assembles an Engine on top of a Syncer and a remote gateway.
// The Syncer's cache must implement cache.Store.
func Build(s *syncline.Syncer, gateway remote.Gateway, opts ...Option) (*Engine, error) {
	logger := s.Logger()
	config := s.Config()

	if s.Cache() == nil {
		return nil, syncline.ErrNoCache
	}
	store, ok := s.Cache().(cache.Store)
	if !ok {
		return nil, fmt.Errorf("syncline: cache does not implement cache.Store")
	}
	if gateway == nil {
		gateway = remote.Unconfigured{}
	}

	eng := &Engine{
		s:          s,
		store:      store,
		gateway:    gateway,
		extensions: ext.NewRegistry(logger),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(eng)
	}

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter("github.com/syncline/syncline/observability")
		obsExt = observability.NewMetricsExtensionWithMeter(meter)
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Build tracing middleware (custom provider or global).
	var tracingMw mw.Middleware
	if eng.tracerProvider != nil {
		tracer := eng.tracerProvider.Tracer("github.com/syncline/syncline")
		tracingMw = mw.TracingWithTracer(tracer)
	} else {
		tracingMw = mw.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter("github.com/syncline/syncline")
		metricsMw = mw.MetricsWithMeter(meter)
	} else {
		metricsMw = mw.Metrics()
	}

	// Default mutation stack: recover → tracing → metrics → logging.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		tracingMw,
		metricsMw,
		mw.Logging(logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)

	// Shared pending-write queue for every collection.
	eng.queue = pending.NewQueue(store, gateway, logger,
		pending.WithMaxAttempts(config.MaxPendingAttempts),
		pending.WithMonitor(&extPendingMonitor{r: eng.extensions}),
	)

	// Collections. The events bridge gets its dispatcher after the rule
	// and webhook collections exist, since the dispatcher reads them.
	events := &eventsBridge{registry: eng.extensions}

	eng.leads = buildCollection[*record.Lead](record.CollectionLeads, eng, events, allMws,
		coordinator.WithUpdateTrigger[*record.Lead](dealWonTrigger))
	eng.clients = buildCollection[*record.Client](record.CollectionClients, eng, events, allMws)
	eng.tickets = buildCollection[*record.Ticket](record.CollectionTickets, eng, events, allMws)
	eng.invoices = buildCollection[*record.Invoice](record.CollectionInvoices, eng, events, allMws)
	eng.proposals = buildCollection[*record.Proposal](record.CollectionProposals, eng, events, allMws)
	eng.activities = buildCollection[*record.Activity](record.CollectionActivities, eng, events, allMws)
	eng.notifications = buildCollection[*record.Notification](record.CollectionNotifications, eng, events, allMws)
	eng.fieldDefs = buildCollection[*record.FieldDef](record.CollectionFieldDefs, eng, events, allMws)
	eng.rules = buildCollection[*automation.Rule](automation.CollectionRules, eng, events, allMws)
	eng.webhooks = buildCollection[*automation.Webhook](automation.CollectionWebhooks, eng, events, allMws)

	eng.dispatcher = automation.NewDispatcher(
		&collectionSource{rules: eng.rules, webhooks: eng.webhooks},
		logger,
		automation.WithTimeout(config.WebhookTimeout),
		automation.WithRateLimit(rate.Limit(config.WebhookRate), config.WebhookBurst),
		automation.WithMonitor(&extHookMonitor{r: eng.extensions}),
	)
	events.dispatcher = eng.dispatcher

	eng.reconciler = reconcile.New(logger,
		reconcile.WithMonitor(&extSyncMonitor{r: eng.extensions}),
	)

	// Background refresh and drain loops, handed back to the Syncer so
	// Start/Stop on the root handle drive them.
	eng.runner = newRunner(eng, config.RefreshSchedule, config.DrainInterval, logger)
	s.SetRunner(eng.runner)
	s.SetExtensions(eng.extensions)

	return eng, nil
}

// dealWonTrigger fires when a lead moves into the won stage.
func dealWonTrigger(old, updated *record.Lead) string {
	if old.Stage != record.StageWon && updated.Stage == record.StageWon {
		return automation.TriggerDealWon
	}
	return ""
}

func buildCollection[T record.Record](name string, eng *Engine, events coordinator.Events, mws []mw.Middleware, extra ...coordinator.Option[T]) *coordinator.Collection[T] {
	config := eng.s.Config()
	opts := []coordinator.Option[T]{
		coordinator.WithEvents[T](events),
		coordinator.WithMiddleware[T](mws...),
		coordinator.WithPendingQueue[T](eng.queue),
		coordinator.WithRemoteTimeout[T](config.RemoteTimeout),
		coordinator.WithConflictPolicy[T](config.Conflict),
	}
	opts = append(opts, extra...)
	return coordinator.New[T](name, eng.store, eng.gateway, eng.logger, opts...)
}

// ─────────────────────────────────────────────────────────────────────
// Typed collection accessors
// ─────────────────────────────────────────────────────────────────────

// Leads returns the sales lead collection.
func (eng *Engine) Leads() *coordinator.Collection[*record.Lead] { return eng.leads }

// Clients returns the client account collection.
func (eng *Engine) Clients() *coordinator.Collection[*record.Client] { return eng.clients }

// Tickets returns the support ticket collection.
func (eng *Engine) Tickets() *coordinator.Collection[*record.Ticket] { return eng.tickets }

// Invoices returns the invoice collection.
func (eng *Engine) Invoices() *coordinator.Collection[*record.Invoice] { return eng.invoices }

// Proposals returns the proposal collection.
func (eng *Engine) Proposals() *coordinator.Collection[*record.Proposal] { return eng.proposals }

// Activities returns the activity log collection.
func (eng *Engine) Activities() *coordinator.Collection[*record.Activity] { return eng.activities }

// Notifications returns the notification collection.
func (eng *Engine) Notifications() *coordinator.Collection[*record.Notification] {
	return eng.notifications
}

// FieldDefs returns the custom field definition collection.
func (eng *Engine) FieldDefs() *coordinator.Collection[*record.FieldDef] { return eng.fieldDefs }

// Rules returns the workflow rule collection.
func (eng *Engine) Rules() *coordinator.Collection[*automation.Rule] { return eng.rules }

// Webhooks returns the webhook configuration collection.
func (eng *Engine) Webhooks() *coordinator.Collection[*automation.Webhook] { return eng.webhooks }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *ext.Registry { return eng.extensions }

// PendingQueue returns the shared pending-write queue.
func (eng *Engine) PendingQueue() *pending.Queue { return eng.queue }

// Dispatcher returns the automation dispatcher.
func (eng *Engine) Dispatcher() *automation.Dispatcher { return eng.dispatcher }

// State returns the current reconciliation state snapshot.
func (eng *Engine) State() reconcile.SyncState { return eng.reconciler.State() }

// ─────────────────────────────────────────────────────────────────────
// Lifecycle and operations
// ─────────────────────────────────────────────────────────────────────

// Seeds supplies fallback data per collection for the first load, used
// when the local cache is missing or corrupt.
type Seeds struct {
	Leads         []*record.Lead
	Clients       []*record.Client
	Tickets       []*record.Ticket
	Invoices      []*record.Invoice
	Proposals     []*record.Proposal
	Activities    []*record.Activity
	Notifications []*record.Notification
	FieldDefs     []*record.FieldDef
	Rules         []*automation.Rule
	Webhooks      []*automation.Webhook
}

// LoadAll migrates the local store and loads every collection and the
// pending queue from it. It must be called once before mutations or
// refresh. Seeds apply only on the first run against a store: once the
// initialized gate is set, a deliberately emptied collection stays
// empty instead of resurrecting its seed data.
func (eng *Engine) LoadAll(ctx context.Context, seeds Seeds) error {
	if err := eng.store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}

	gate, err := eng.store.LoadMeta(ctx, cache.MetaInitialized)
	if err != nil && !errors.Is(err, syncline.ErrNotCached) {
		return fmt.Errorf("read initialized gate: %w", err)
	}
	if len(gate) > 0 {
		seeds = Seeds{}
	}

	if err := eng.leads.Load(ctx, seeds.Leads); err != nil {
		return err
	}
	if err := eng.clients.Load(ctx, seeds.Clients); err != nil {
		return err
	}
	if err := eng.tickets.Load(ctx, seeds.Tickets); err != nil {
		return err
	}
	if err := eng.invoices.Load(ctx, seeds.Invoices); err != nil {
		return err
	}
	if err := eng.proposals.Load(ctx, seeds.Proposals); err != nil {
		return err
	}
	if err := eng.activities.Load(ctx, seeds.Activities); err != nil {
		return err
	}
	if err := eng.notifications.Load(ctx, seeds.Notifications); err != nil {
		return err
	}
	if err := eng.fieldDefs.Load(ctx, seeds.FieldDefs); err != nil {
		return err
	}
	if err := eng.rules.Load(ctx, seeds.Rules); err != nil {
		return err
	}
	if err := eng.webhooks.Load(ctx, seeds.Webhooks); err != nil {
		return err
	}

	if err := eng.queue.Load(ctx); err != nil {
		return err
	}

	// Restore the last-sync stamp so State() survives a restart.
	if stamp, err := eng.store.LoadMeta(ctx, cache.MetaLastSync); err == nil {
		if at, perr := time.Parse(time.RFC3339, string(stamp)); perr == nil {
			eng.reconciler.RestoreLastSync(at)
		}
	}
	return nil
}

// Refresh runs one reconciliation pass over every collection and stamps
// the last-sync meta key. Per-table failures are aggregated into the
// returned error; tables that fetched cleanly are still merged.
func (eng *Engine) Refresh(ctx context.Context) error {
	err := eng.reconciler.Run(ctx, eng.targets())

	stamp := []byte(time.Now().UTC().Format(time.RFC3339))
	if metaErr := eng.store.SaveMeta(ctx, cache.MetaLastSync, stamp); metaErr != nil {
		eng.logger.Warn("save last-sync meta", slog.Any("error", metaErr))
	}
	return err
}

// DrainPending replays queued remote writes, reporting how many were
// flushed and how many were dropped after exhausting their attempts.
func (eng *Engine) DrainPending(ctx context.Context) (flushed, dropped int, err error) {
	return eng.queue.Drain(ctx)
}

// Diagnose compares local collection sizes against remote counts and
// reports per-table status.
func (eng *Engine) Diagnose(ctx context.Context) []diag.Result {
	return diag.Check(ctx, eng.gateway, eng.tables(), eng.logger)
}

// Flush blocks until all in-flight remote writes and webhook deliveries
// have settled. Intended for shutdown and tests.
func (eng *Engine) Flush() {
	eng.leads.Flush()
	eng.clients.Flush()
	eng.tickets.Flush()
	eng.invoices.Flush()
	eng.proposals.Flush()
	eng.activities.Flush()
	eng.notifications.Flush()
	eng.fieldDefs.Flush()
	eng.rules.Flush()
	eng.webhooks.Flush()
	eng.dispatcher.Flush()
}

func (eng *Engine) targets() []reconcile.Target {
	return []reconcile.Target{
		eng.leads,
		eng.clients,
		eng.tickets,
		eng.invoices,
		eng.proposals,
		eng.activities,
		eng.notifications,
		eng.fieldDefs,
		eng.rules,
		eng.webhooks,
	}
}

func (eng *Engine) tables() []diag.Table {
	return []diag.Table{
		{Label: "Leads", Name: record.CollectionLeads, Local: int64(eng.leads.Count())},
		{Label: "Clients", Name: record.CollectionClients, Local: int64(eng.clients.Count())},
		{Label: "Tickets", Name: record.CollectionTickets, Local: int64(eng.tickets.Count())},
		{Label: "Invoices", Name: record.CollectionInvoices, Local: int64(eng.invoices.Count())},
		{Label: "Proposals", Name: record.CollectionProposals, Local: int64(eng.proposals.Count())},
		{Label: "Activities", Name: record.CollectionActivities, Local: int64(eng.activities.Count())},
		{Label: "Notifications", Name: record.CollectionNotifications, Local: int64(eng.notifications.Count())},
		{Label: "Custom fields", Name: record.CollectionFieldDefs, Local: int64(eng.fieldDefs.Count())},
		{Label: "Workflow rules", Name: automation.CollectionRules, Local: int64(eng.rules.Count())},
		{Label: "Webhooks", Name: automation.CollectionWebhooks, Local: int64(eng.webhooks.Count())},
	}
}
