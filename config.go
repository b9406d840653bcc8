package syncline

import "time"

// ConflictPolicy selects how the reconciler resolves two versions of the
// same record id during a merge.
type ConflictPolicy string

const (
	// RemoteWins replaces the local record with the remote one
	// unconditionally. This is the default.
	RemoteWins ConflictPolicy = "remote_wins"

	// PreferNewer keeps whichever side was modified most recently,
	// compared by the record's UpdatedAt timestamp.
	PreferNewer ConflictPolicy = "prefer_newer"
)

// Config holds configuration for the Syncer.
type Config struct {
	// RemoteTimeout bounds each fire-and-forget remote write.
	RemoteTimeout time.Duration

	// WebhookTimeout bounds each outbound webhook delivery.
	WebhookTimeout time.Duration

	// RefreshSchedule is a cron expression for background reconciliation.
	// Empty disables scheduled refresh; startup and manual refresh still run.
	RefreshSchedule string

	// DrainInterval is how often the pending-write queue is drained.
	// Zero disables the drain loop.
	DrainInterval time.Duration

	// MaxPendingAttempts is how many times a pending remote write is
	// retried before it is dropped with a log entry.
	MaxPendingAttempts int

	// Conflict selects the merge conflict policy.
	Conflict ConflictPolicy

	// WebhookRate is the sustained webhook deliveries per second allowed
	// per tenant. Zero disables rate limiting.
	WebhookRate float64

	// WebhookBurst is the burst size for the per-tenant webhook limiter.
	WebhookBurst int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RemoteTimeout:      10 * time.Second,
		WebhookTimeout:     15 * time.Second,
		RefreshSchedule:    "",
		DrainInterval:      30 * time.Second,
		MaxPendingAttempts: 8,
		Conflict:           RemoteWins,
		WebhookRate:        5,
		WebhookBurst:       10,
	}
}
