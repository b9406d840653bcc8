package syncline

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a Syncer.
type Option func(*Syncer) error

// Cacher is the minimal local store interface held by the Syncer.
// It covers lifecycle operations only. The full cache contract
// (cache.Store) is used in subsystem layers that don't create import
// cycles; implementations satisfy both.
type Cacher interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// refreshRunner is an internal interface for the background refresh and
// drain loops wired in by the engine layer.
type refreshRunner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// extensionEmitter is an internal interface for extension lifecycle events.
type extensionEmitter interface {
	EmitShutdown(ctx context.Context)
}

// Syncer is the root handle for the local-first sync engine. It holds
// configuration, the logger, and the local cache store.
//
// Create one with New() and functional options. The Syncer holds
// references to subsystem components via internal interfaces to avoid
// import cycles. Use engine.Build to wire everything together.
type Syncer struct {
	config     Config
	logger     *slog.Logger
	cache      Cacher
	extensions extensionEmitter
	runner     refreshRunner

	// started tracks whether Start has been called.
	started bool
}

// New creates a new Syncer with the given options.
func New(opts ...Option) (*Syncer, error) {
	s := &Syncer{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Logger returns the syncer's logger.
func (s *Syncer) Logger() *slog.Logger { return s.logger }

// Cache returns the syncer's local cache store.
func (s *Syncer) Cache() Cacher { return s.cache }

// Config returns a copy of the syncer's configuration.
func (s *Syncer) Config() Config { return s.config }

// SetRunner sets the background refresh runner (called by the engine).
func (s *Syncer) SetRunner(r refreshRunner) { s.runner = r }

// SetExtensions sets the extension emitter (called by the engine).
func (s *Syncer) SetExtensions(e extensionEmitter) { s.extensions = e }

// Start begins background refresh and pending-queue draining. The
// runner is wired in by engine.Build; starting before that is an error.
func (s *Syncer) Start(ctx context.Context) error {
	if s.runner == nil {
		return ErrNotBuilt
	}
	if err := s.runner.Start(ctx); err != nil {
		return err
	}
	s.started = true
	return nil
}

// Stop gracefully shuts down the syncer.
func (s *Syncer) Stop(ctx context.Context) error {
	if s.runner != nil && s.started {
		if err := s.runner.Stop(ctx); err != nil {
			s.logger.Error("runner stop error", "error", err)
		}
	}
	if s.extensions != nil {
		s.extensions.EmitShutdown(ctx)
	}
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

// WithLogger sets the structured logger for the syncer.
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) error {
		s.logger = l
		return nil
	}
}

// WithCache sets the local cache store for the syncer.
// The store must implement Cacher at minimum; typically it will be a
// cache.Store which adds the collection and meta operations.
func WithCache(c Cacher) Option {
	return func(s *Syncer) error {
		s.cache = c
		return nil
	}
}

// WithRemoteTimeout bounds each fire-and-forget remote write.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Syncer) error {
		s.config.RemoteTimeout = d
		return nil
	}
}

// WithWebhookTimeout bounds each outbound webhook delivery.
func WithWebhookTimeout(d time.Duration) Option {
	return func(s *Syncer) error {
		s.config.WebhookTimeout = d
		return nil
	}
}

// WithRefreshSchedule sets the cron expression for background
// reconciliation. Empty disables scheduled refresh.
func WithRefreshSchedule(expr string) Option {
	return func(s *Syncer) error {
		s.config.RefreshSchedule = expr
		return nil
	}
}

// WithDrainInterval sets how often the pending-write queue is drained.
func WithDrainInterval(d time.Duration) Option {
	return func(s *Syncer) error {
		s.config.DrainInterval = d
		return nil
	}
}

// WithConflictPolicy selects the merge conflict policy.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(s *Syncer) error {
		s.config.Conflict = p
		return nil
	}
}
