// Package redis implements cache.Store backed by Redis, for server-side
// deployments where the local cache is shared between processes.
// Collections and meta values are stored as msgpack-encoded envelopes.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := rediscache.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/cache"
)

var _ cache.Store = (*Store)(nil)

// Redis key naming conventions. All keys are prefixed with "syncline:"
// to avoid collisions.
const keyPrefix = "syncline:"

// collectionKey returns the key for a collection: syncline:collection:{name}
func collectionKey(name string) string { return keyPrefix + "collection:" + name }

// metaKey returns the key for a meta value: syncline:meta:{key}
func metaKey(key string) string { return keyPrefix + "meta:" + key }

// envelope wraps a stored value with its write timestamp.
type envelope struct {
	Data      []byte    `msgpack:"data"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store implements cache.Store backed by Redis.
type Store struct {
	client redis.Cmdable
	logger *slog.Logger
}

// New creates a new Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.Cmdable { return s.client }

// Migrate is a no-op for Redis (schemaless).
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op because the caller owns the client lifecycle.
func (s *Store) Close() error { return nil }

// get loads and decodes an envelope from the given key.
func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, syncline.ErrNotCached
		}
		return nil, fmt.Errorf("syncline/rediscache: get %q: %w", key, err)
	}

	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("syncline/rediscache: decode %q: %w", key, err)
	}
	return env.Data, nil
}

// set encodes and stores an envelope under the given key.
func (s *Store) set(ctx context.Context, key string, data []byte) error {
	raw, err := msgpack.Marshal(envelope{Data: data, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("syncline/rediscache: encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("syncline/rediscache: set %q: %w", key, err)
	}
	return nil
}

// LoadCollection returns the serialized JSON array for a collection.
func (s *Store) LoadCollection(ctx context.Context, name string) ([]byte, error) {
	return s.get(ctx, collectionKey(name))
}

// SaveCollection persists the serialized JSON array for a collection.
func (s *Store) SaveCollection(ctx context.Context, name string, data []byte) error {
	return s.set(ctx, collectionKey(name), data)
}

// LoadMeta returns the value stored under a meta key.
func (s *Store) LoadMeta(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, metaKey(key))
}

// SaveMeta persists a value under a meta key.
func (s *Store) SaveMeta(ctx context.Context, key string, data []byte) error {
	return s.set(ctx, metaKey(key), data)
}
