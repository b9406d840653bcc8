// Package cache defines the durable local store for entity collections.
// Each collection persists as one key holding its full JSON array, plus
// meta keys for the initialized gate and last-sync metadata. Backends:
// SQLite (bun), Redis, and Memory.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/record"
)

// Meta keys reserved by the engine.
const (
	// MetaInitialized is set once the first load completes. Later
	// startups treat seed data as already consumed, so a deliberately
	// emptied collection is not re-seeded.
	MetaInitialized = "initialized"

	// MetaLastSync holds the timestamp of the last completed
	// reconciliation pass, restored into the sync state at startup.
	MetaLastSync = "last_sync"
)

// Store is the local persistence contract. A single backend implements
// collection storage and meta storage; implementations must be safe for
// concurrent use.
type Store interface {
	// LoadCollection returns the serialized JSON array for a collection.
	// Returns syncline.ErrNotCached when no value has been persisted.
	LoadCollection(ctx context.Context, name string) ([]byte, error)

	// SaveCollection persists the serialized JSON array for a collection,
	// replacing any previous value.
	SaveCollection(ctx context.Context, name string, data []byte) error

	// LoadMeta returns the value stored under a meta key.
	// Returns syncline.ErrNotCached when the key has never been written.
	LoadMeta(ctx context.Context, key string) ([]byte, error)

	// SaveMeta persists a value under a meta key.
	SaveMeta(ctx context.Context, key string, data []byte) error

	// Migrate prepares backend schema.
	Migrate(ctx context.Context) error

	// Ping checks store availability.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Load reads a collection from the store, falling back to seed when the
// cache is missing, unreadable, or parses to an empty collection while a
// non-empty seed is supplied. It never returns an error: a corrupted or
// empty cache must not present as "this tenant has zero records" when a
// non-trivial seed exists.
func Load[T record.Record](ctx context.Context, s Store, name string, seed []T, logger *slog.Logger) []T {
	data, err := s.LoadCollection(ctx, name)
	if err != nil {
		if !errors.Is(err, syncline.ErrNotCached) {
			logger.Warn("cache load failed, using seed",
				slog.String("collection", name),
				slog.String("error", err.Error()),
			)
		}
		return seed
	}

	records, err := record.DecodeList[T](data)
	if err != nil {
		logger.Warn("cached collection unreadable, using seed",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
		return seed
	}

	if len(records) == 0 && len(seed) > 0 {
		return seed
	}
	return records
}

// Save serializes a collection and persists it.
func Save[T record.Record](ctx context.Context, s Store, name string, records []T) error {
	data, err := record.EncodeList(records)
	if err != nil {
		return err
	}
	return s.SaveCollection(ctx, name, data)
}
