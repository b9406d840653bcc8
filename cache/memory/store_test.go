package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/syncline/syncline"
)

func TestLifecycle(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Migrate", func() error { return s.Migrate(ctx) }},
		{"Ping", func() error { return s.Ping(ctx) }},
		{"Close", func() error { return s.Close() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err != nil {
				t.Fatalf("%s returned error: %v", tt.name, err)
			}
		})
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.LoadCollection(ctx, "leads"); !errors.Is(err, syncline.ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}

	want := []byte(`[{"id":"lead_1"}]`)
	if err := s.SaveCollection(ctx, "leads", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadCollection(ctx, "leads")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("round-trip mismatch: %s != %s", got, want)
	}

	// A later save replaces the previous value.
	if err := s.SaveCollection(ctx, "leads", []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = s.LoadCollection(ctx, "leads")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("got %s, want []", got)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if _, err := s.LoadMeta(ctx, "initialized"); !errors.Is(err, syncline.ErrNotCached) {
		t.Fatalf("expected ErrNotCached, got %v", err)
	}

	if err := s.SaveMeta(ctx, "initialized", []byte("true")); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	got, err := s.LoadMeta(ctx, "initialized")
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if string(got) != "true" {
		t.Errorf("got %q, want %q", got, "true")
	}
}

func TestReturnsCopies(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if err := s.SaveCollection(ctx, "clients", []byte(`[1]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.LoadCollection(ctx, "clients")
	got[0] = 'X'

	again, _ := s.LoadCollection(ctx, "clients")
	if string(again) != `[1]` {
		t.Errorf("store data mutated through returned slice: %s", again)
	}
}
