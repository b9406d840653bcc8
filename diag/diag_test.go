package diag_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/syncline/syncline/diag"
	"github.com/syncline/syncline/record"
	"github.com/syncline/syncline/remote"
	remotemem "github.com/syncline/syncline/remote/memory"
)

func seedRows(gw *remotemem.Gateway, table string, n int) {
	rows := make([]remote.Row, n)
	for i := range rows {
		rows[i] = remote.Row{ID: fmt.Sprintf("%s_%d", table, i), Doc: json.RawMessage(`{}`)}
	}
	gw.Seed(table, rows...)
}

func TestCheckClassifiesTables(t *testing.T) {
	t.Parallel()

	gw := remotemem.New()
	seedRows(gw, record.CollectionLeads, 3)
	seedRows(gw, record.CollectionClients, 5)

	results := diag.Check(context.Background(), gw, []diag.Table{
		{Label: "Leads", Name: record.CollectionLeads, Local: 3},
		{Label: "Clients", Name: record.CollectionClients, Local: 2},
		{Label: "Tickets", Name: record.CollectionTickets, Local: 0},
	}, slog.New(slog.DiscardHandler))

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	want := []struct {
		label  string
		remote int64
		status string
	}{
		{"Leads", 3, diag.StatusSynced},
		{"Clients", 5, diag.StatusDiff},
		{"Tickets", 0, diag.StatusSynced},
	}
	for i, w := range want {
		got := results[i]
		if got.Label != w.label || got.Remote != w.remote || got.Status != w.status {
			t.Errorf("results[%d] = %+v, want %+v", i, got, w)
		}
	}
}

// countsByName fails a single named table, leaving the rest countable.
type countsByName struct {
	counts map[string]int64
	fail   string
}

func (c countsByName) Count(_ context.Context, table string) (int64, error) {
	if table == c.fail {
		return 0, fmt.Errorf("count %s: connection refused", table)
	}
	return c.counts[table], nil
}

func TestCheckIsolatesFailingTable(t *testing.T) {
	t.Parallel()

	counter := countsByName{
		counts: map[string]int64{record.CollectionLeads: 2},
		fail:   record.CollectionClients,
	}
	results := diag.Check(context.Background(), counter, []diag.Table{
		{Label: "Leads", Name: record.CollectionLeads, Local: 2},
		{Label: "Clients", Name: record.CollectionClients, Local: 4},
	}, slog.New(slog.DiscardHandler))

	if results[0].Status != diag.StatusSynced {
		t.Errorf("healthy table status = %q, a sibling failure must not taint it", results[0].Status)
	}
	if results[1].Status != diag.StatusError {
		t.Errorf("failing table status = %q, want %q", results[1].Status, diag.StatusError)
	}
	if results[1].Detail == "" {
		t.Error("error row should carry the failure detail")
	}
}

func TestCheckOfflineRemoteReportsErrors(t *testing.T) {
	t.Parallel()

	gw := remotemem.New()
	gw.SetOnline(false)

	results := diag.Check(context.Background(), gw, []diag.Table{
		{Label: "Leads", Name: record.CollectionLeads, Local: 1},
		{Label: "Clients", Name: record.CollectionClients, Local: 0},
	}, slog.New(slog.DiscardHandler))

	for _, r := range results {
		if r.Status != diag.StatusError {
			t.Errorf("%s status = %q, want %q while offline", r.Label, r.Status, diag.StatusError)
		}
	}
}

func TestCheckEmptySpec(t *testing.T) {
	t.Parallel()

	results := diag.Check(context.Background(), remotemem.New(), nil, slog.New(slog.DiscardHandler))
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}
