package syncline

import "time"

// Entity is the embedded base for every syncline record. It carries the
// audit timestamps shared by all collections.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity returns an Entity stamped with the current UTC time.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}

// Touch updates the modification timestamp.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// ModifiedAt returns the last modification time. The reconciler uses it
// for the PreferNewer conflict policy.
func (e Entity) ModifiedAt() time.Time { return e.UpdatedAt }
