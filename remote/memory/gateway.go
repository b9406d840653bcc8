// Package memory provides an in-memory remote.Gateway. Intended for unit
// testing and development; it can simulate an unreachable backend via
// SetOnline.
package memory

import (
	"context"
	"sync"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/remote"
)

var _ remote.Gateway = (*Gateway)(nil)

// Gateway is a fully in-memory implementation of remote.Gateway.
// Safe for concurrent access.
type Gateway struct {
	mu      sync.RWMutex
	tables  map[string]map[string]remote.Row
	online  bool
	upserts int
	deletes int
}

// New returns an empty, online Gateway.
func New() *Gateway {
	return &Gateway{
		tables: make(map[string]map[string]remote.Row),
		online: true,
	}
}

// SetOnline toggles simulated connectivity. While offline every
// operation reports syncline.ErrRemoteUnavailable.
func (g *Gateway) SetOnline(online bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.online = online
}

// Seed inserts rows directly, bypassing the online check. Test helper.
func (g *Gateway) Seed(table string, rows ...remote.Row) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.tables[table]
	if t == nil {
		t = make(map[string]remote.Row)
		g.tables[table] = t
	}
	for _, r := range rows {
		t[r.ID] = r
	}
}

// UpsertCount reports how many upserts have been applied. Test helper.
func (g *Gateway) UpsertCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.upserts
}

// DeleteCount reports how many deletes have been applied. Test helper.
func (g *Gateway) DeleteCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.deletes
}

// FetchAll returns every row in a table.
func (g *Gateway) FetchAll(_ context.Context, table string) ([]remote.Row, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.online {
		return nil, syncline.ErrRemoteUnavailable
	}

	rows := make([]remote.Row, 0, len(g.tables[table]))
	for _, r := range g.tables[table] {
		rows = append(rows, r)
	}
	return rows, nil
}

// Upsert inserts or replaces one row by id.
func (g *Gateway) Upsert(_ context.Context, table string, row remote.Row) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.online {
		return syncline.ErrRemoteUnavailable
	}

	t := g.tables[table]
	if t == nil {
		t = make(map[string]remote.Row)
		g.tables[table] = t
	}
	t[row.ID] = row
	g.upserts++
	return nil
}

// Delete removes one row by id. Missing ids are not an error.
func (g *Gateway) Delete(_ context.Context, table string, recordID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.online {
		return syncline.ErrRemoteUnavailable
	}

	delete(g.tables[table], recordID)
	g.deletes++
	return nil
}

// Count returns the number of rows in a table.
func (g *Gateway) Count(_ context.Context, table string) (int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.online {
		return 0, syncline.ErrRemoteUnavailable
	}

	return int64(len(g.tables[table])), nil
}

// Ping reports simulated connectivity.
func (g *Gateway) Ping(_ context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.online {
		return syncline.ErrRemoteUnavailable
	}
	return nil
}

// Close is a no-op for the memory gateway.
func (g *Gateway) Close() error { return nil }
