package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

// cronParser supports standard 5-field cron and descriptors like
// "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// runner drives the background loops: scheduled reconciliation refresh
// and periodic pending-queue draining. The Syncer's Start/Stop own its
// lifecycle.
type runner struct {
	eng        *Engine
	schedule   string
	drainEvery time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func newRunner(eng *Engine, schedule string, drainEvery time.Duration, logger *slog.Logger) *runner {
	return &runner{
		eng:        eng,
		schedule:   schedule,
		drainEvery: drainEvery,
		logger:     logger,
	}
}

// Start validates the refresh schedule and launches the loops. An empty
// schedule disables scheduled refresh; a zero drain interval disables
// the drain loop.
func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	var sched cronlib.Schedule
	if r.schedule != "" {
		var err error
		sched, err = cronParser.Parse(r.schedule)
		if err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
		}
	}

	// The loops outlive the Start call.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.running = true

	if sched != nil {
		r.wg.Add(1)
		go r.refreshLoop(loopCtx, sched)
	}
	if r.drainEvery > 0 {
		r.wg.Add(1)
		go r.drainLoop(loopCtx)
	}

	r.logger.Info("sync runner started",
		slog.String("refresh_schedule", r.schedule),
		slog.Duration("drain_interval", r.drainEvery),
	)
	return nil
}

// Stop cancels the loops, waits for them to exit, and drains in-flight
// remote writes and webhook deliveries.
func (r *runner) Stop(_ context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.cancel()
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	r.eng.Flush()
	r.logger.Info("sync runner stopped")
	return nil
}

func (r *runner) refreshLoop(ctx context.Context, sched cronlib.Schedule) {
	defer r.wg.Done()

	for {
		next := sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := r.eng.Refresh(ctx); err != nil {
			r.logger.Warn("scheduled refresh error", slog.Any("error", err))
		}
	}
}

func (r *runner) drainLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.drainEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if r.eng.queue.Count() == 0 {
			continue
		}
		if _, _, err := r.eng.queue.Drain(ctx); err != nil {
			r.logger.Warn("pending drain error", slog.Any("error", err))
		}
	}
}
