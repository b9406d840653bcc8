package buncache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/cache"
)

var _ cache.Store = (*Store)(nil)

// collectionRow is one persisted collection: the full JSON array under
// its collection name.
type collectionRow struct {
	bun.BaseModel `bun:"table:syncline_collections"`

	Name      string    `bun:"name,pk"`
	Data      []byte    `bun:"data,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// metaRow is one engine metadata value (initialized gate, last sync).
type metaRow struct {
	bun.BaseModel `bun:"table:syncline_meta"`

	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store is a Bun implementation of cache.Store using SQLite dialect.
// The caller owns the *bun.DB lifecycle; Store never closes it.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Bun store. The caller owns the db lifecycle — the
// Store will not close it on Close().
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying *bun.DB for advanced usage.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{(*collectionRow)(nil), (*metaRow)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("syncline/buncache: create table: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op because the caller owns the *bun.DB lifecycle.
func (s *Store) Close() error {
	return nil
}

// LoadCollection returns the serialized JSON array for a collection.
func (s *Store) LoadCollection(ctx context.Context, name string) ([]byte, error) {
	row := new(collectionRow)
	err := s.db.NewSelect().Model(row).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncline.ErrNotCached
		}
		return nil, fmt.Errorf("syncline/buncache: load collection %q: %w", name, err)
	}
	return row.Data, nil
}

// SaveCollection persists the serialized JSON array for a collection.
func (s *Store) SaveCollection(ctx context.Context, name string, data []byte) error {
	row := &collectionRow{
		Name:      name,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("syncline/buncache: save collection %q: %w", name, err)
	}
	return nil
}

// LoadMeta returns the value stored under a meta key.
func (s *Store) LoadMeta(ctx context.Context, key string) ([]byte, error) {
	row := new(metaRow)
	err := s.db.NewSelect().Model(row).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, syncline.ErrNotCached
		}
		return nil, fmt.Errorf("syncline/buncache: load meta %q: %w", key, err)
	}
	return row.Value, nil
}

// SaveMeta persists a value under a meta key.
func (s *Store) SaveMeta(ctx context.Context, key string, data []byte) error {
	row := &metaRow{
		Key:       key,
		Value:     data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("syncline/buncache: save meta %q: %w", key, err)
	}
	return nil
}
