// Package remote abstracts the table-oriented remote data service:
// parallel bulk reads, per-record upsert, per-record delete, and
// head-only counts. Backends: Postgres (pgx), MongoDB, and Memory.
//
// A gateway reports syncline.ErrRemoteUnavailable instead of failing hard
// when the backend is unconfigured or unreachable; callers treat that
// identically to "no remote data yet".
package remote

import (
	"context"
	"encoding/json"

	"github.com/syncline/syncline"
)

// Row is one remote record in wire form: its id and tenant scope
// extracted for keying, plus the full JSON document.
type Row struct {
	ID    string          `json:"id"`
	OrgID string          `json:"organization_id,omitempty"`
	Doc   json.RawMessage `json:"doc"`
}

// Gateway is the remote data service contract. Reads return
// syncline.ErrRemoteUnavailable when the service cannot be reached;
// writes are issued best-effort by the coordinator, which swallows and
// queues failures rather than surfacing them.
type Gateway interface {
	// FetchAll reads every record in a table (SELECT *).
	FetchAll(ctx context.Context, table string) ([]Row, error)

	// Upsert inserts or replaces one record by id.
	Upsert(ctx context.Context, table string, row Row) error

	// Delete removes one record by id. Deleting a missing id is not an
	// error.
	Delete(ctx context.Context, table string, recordID string) error

	// Count returns the number of records in a table (head-only query).
	Count(ctx context.Context, table string) (int64, error)

	// Ping checks remote connectivity.
	Ping(ctx context.Context) error

	// Close releases gateway resources.
	Close() error
}

// Unconfigured is the null Gateway used when no remote backend is set.
// Every operation reports syncline.ErrRemoteUnavailable, so the engine
// degrades to cache-only behavior without special-casing nil.
type Unconfigured struct{}

var _ Gateway = Unconfigured{}

// FetchAll implements Gateway.
func (Unconfigured) FetchAll(context.Context, string) ([]Row, error) {
	return nil, syncline.ErrRemoteUnavailable
}

// Upsert implements Gateway.
func (Unconfigured) Upsert(context.Context, string, Row) error {
	return syncline.ErrRemoteUnavailable
}

// Delete implements Gateway.
func (Unconfigured) Delete(context.Context, string, string) error {
	return syncline.ErrRemoteUnavailable
}

// Count implements Gateway.
func (Unconfigured) Count(context.Context, string) (int64, error) {
	return 0, syncline.ErrRemoteUnavailable
}

// Ping implements Gateway.
func (Unconfigured) Ping(context.Context) error {
	return syncline.ErrRemoteUnavailable
}

// Close implements Gateway.
func (Unconfigured) Close() error { return nil }
