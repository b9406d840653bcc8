package pending

import (
	"encoding/json"
	"time"

	"github.com/syncline/syncline/id"
)

// Write operations replayed against the remote.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Entry represents one record write that failed to reach the remote and
// is queued for replay.
type Entry struct {
	ID          id.ID           `json:"id"`
	Collection  string          `json:"collection"`
	RecordID    string          `json:"record_id"`
	OrgID       string          `json:"org_id,omitempty"`
	Op          string          `json:"op"`
	Doc         json.RawMessage `json:"doc,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	NextAttempt time.Time       `json:"next_attempt_at"`
	FailedAt    time.Time       `json:"failed_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Eligible reports whether the entry may be replayed at now.
func (e *Entry) Eligible(now time.Time) bool {
	return !e.NextAttempt.After(now)
}
