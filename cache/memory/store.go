// Package memory provides a fully in-memory cache.Store. Intended for
// unit testing and development.
package memory

import (
	"context"
	"sync"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/cache"
)

var _ cache.Store = (*Store)(nil)

// Store is an in-memory implementation of cache.Store.
// Safe for concurrent access.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]byte
	meta        map[string][]byte
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string][]byte),
		meta:        make(map[string][]byte),
	}
}

// LoadCollection returns the stored bytes for a collection.
func (m *Store) LoadCollection(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.collections[name]
	if !ok {
		return nil, syncline.ErrNotCached
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// SaveCollection stores the bytes for a collection.
func (m *Store) SaveCollection(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.collections[name] = cp
	return nil
}

// LoadMeta returns the stored bytes for a meta key.
func (m *Store) LoadMeta(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.meta[key]
	if !ok {
		return nil, syncline.ErrNotCached
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// SaveMeta stores the bytes for a meta key.
func (m *Store) SaveMeta(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.meta[key] = cp
	return nil
}

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }
