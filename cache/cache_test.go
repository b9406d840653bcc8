package cache_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/cache"
	"github.com/syncline/syncline/cache/memory"
	"github.com/syncline/syncline/id"
	"github.com/syncline/syncline/record"
)

func newLead(name string) *record.Lead {
	return &record.Lead{
		Entity: syncline.NewEntity(),
		ID:     id.NewLeadID(),
		Name:   name,
		Stage:  record.StageNew,
	}
}

func TestLoadFallsBackToSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := slog.Default()
	seed := []*record.Lead{newLead("Seed Lead")}

	tests := []struct {
		name   string
		cached []byte // nil means nothing persisted
		seed   []*record.Lead
		want   int
	}{
		{"nothing persisted", nil, seed, 1},
		{"corrupt cache", []byte(`{not json`), seed, 1},
		{"empty cache with seed", []byte(`[]`), seed, 1},
		{"empty cache without seed", []byte(`[]`), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memory.New()
			if tt.cached != nil {
				if err := s.SaveCollection(ctx, record.CollectionLeads, tt.cached); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			got := cache.Load(ctx, s, record.CollectionLeads, tt.seed, logger)
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.New()

	leads := []*record.Lead{newLead("Ada"), newLead("Grace")}
	if err := cache.Save(ctx, s, record.CollectionLeads, leads); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A persisted non-empty collection wins over the seed.
	seed := []*record.Lead{newLead("Seed")}
	got := cache.Load(ctx, s, record.CollectionLeads, seed, slog.Default())
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].RecordID() != leads[0].RecordID() || got[1].RecordID() != leads[1].RecordID() {
		t.Error("round-trip lost record identity")
	}
	if got[0].Name != "Ada" || got[1].Name != "Grace" {
		t.Errorf("round-trip lost fields: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestSaveEmptyCollection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.New()

	if err := cache.Save(ctx, s, record.CollectionClients, []*record.Client(nil)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := s.LoadCollection(ctx, record.CollectionClients)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("empty collection should persist as [], got %s", data)
	}
}
