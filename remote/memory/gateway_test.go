package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/remote"
)

func row(id string) remote.Row {
	return remote.Row{ID: id, Doc: json.RawMessage(`{}`)}
}

func TestGatewayUpsertReplacesByID(t *testing.T) {
	t.Parallel()

	g := New()
	ctx := context.Background()

	if err := g.Upsert(ctx, "leads", row("lead_1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := g.Upsert(ctx, "leads", remote.Row{ID: "lead_1", OrgID: "org_1", Doc: json.RawMessage(`{"v":2}`)}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	rows, err := g.FetchAll(ctx, "leads")
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, upsert by id must replace, not append", len(rows))
	}
	if rows[0].OrgID != "org_1" {
		t.Errorf("OrgID = %q, want the replacement row", rows[0].OrgID)
	}
	if g.UpsertCount() != 2 {
		t.Errorf("UpsertCount = %d, want 2", g.UpsertCount())
	}
}

func TestGatewayDeleteMissingIsNoError(t *testing.T) {
	t.Parallel()

	g := New()
	if err := g.Delete(context.Background(), "leads", "lead_missing"); err != nil {
		t.Errorf("Delete missing = %v, want nil", err)
	}
}

func TestGatewayCount(t *testing.T) {
	t.Parallel()

	g := New()
	g.Seed("leads", row("lead_1"), row("lead_2"))

	n, err := g.Count(context.Background(), "leads")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestGatewayOffline(t *testing.T) {
	t.Parallel()

	g := New()
	g.Seed("leads", row("lead_1"))
	g.SetOnline(false)
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{"FetchAll", func() error { _, err := g.FetchAll(ctx, "leads"); return err }},
		{"Upsert", func() error { return g.Upsert(ctx, "leads", row("lead_2")) }},
		{"Delete", func() error { return g.Delete(ctx, "leads", "lead_1") }},
		{"Count", func() error { _, err := g.Count(ctx, "leads"); return err }},
		{"Ping", func() error { return g.Ping(ctx) }},
	}
	for _, op := range ops {
		if err := op.call(); !errors.Is(err, syncline.ErrRemoteUnavailable) {
			t.Errorf("%s offline = %v, want ErrRemoteUnavailable", op.name, err)
		}
	}

	// Recovery restores the untouched state.
	g.SetOnline(true)
	rows, err := g.FetchAll(ctx, "leads")
	if err != nil {
		t.Fatalf("FetchAll after recovery: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "lead_1" {
		t.Errorf("rows after recovery = %v", rows)
	}
}
