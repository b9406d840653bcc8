package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/id"
	"github.com/syncline/syncline/record"
	"github.com/syncline/syncline/scope"
)

// memRecorder captures events in memory.
type memRecorder struct {
	events []*Event
	err    error
}

func (m *memRecorder) Record(_ context.Context, evt *Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *memRecorder) last(t *testing.T) *Event {
	t.Helper()
	if len(m.events) == 0 {
		t.Fatal("no audit event recorded")
	}
	return m.events[len(m.events)-1]
}

func testLead() *record.Lead {
	return &record.Lead{
		Entity: syncline.NewEntity(),
		ID:     id.NewLeadID(),
		Name:   "Acme",
		Stage:  record.StageNew,
	}
}

func TestExtensionName(t *testing.T) {
	e := New(&memRecorder{})
	if e.Name() != "audit" {
		t.Errorf("Name() = %q, want audit", e.Name())
	}
}

func TestRecordHooks(t *testing.T) {
	rec := &memRecorder{}
	e := New(rec, WithLogger(slog.New(slog.DiscardHandler)))
	ctx := scope.WithOrg(context.Background(), "org_1")
	lead := testLead()

	if err := e.OnRecordCreated(ctx, record.CollectionLeads, lead); err != nil {
		t.Fatalf("OnRecordCreated: %v", err)
	}
	evt := rec.last(t)
	if evt.Action != ActionRecordCreated || evt.Category != CategoryRecord {
		t.Errorf("event = %+v", evt)
	}
	if evt.ResourceID != lead.RecordID() {
		t.Errorf("ResourceID = %q, want %q", evt.ResourceID, lead.RecordID())
	}
	if evt.OrgID != "org_1" {
		t.Errorf("OrgID = %q, want org_1", evt.OrgID)
	}
	if evt.Metadata["collection"] != record.CollectionLeads {
		t.Errorf("collection = %v", evt.Metadata["collection"])
	}

	if err := e.OnRecordDeleted(ctx, record.CollectionLeads, lead.RecordID()); err != nil {
		t.Fatalf("OnRecordDeleted: %v", err)
	}
	if got := rec.last(t).Action; got != ActionRecordDeleted {
		t.Errorf("Action = %q, want %q", got, ActionRecordDeleted)
	}
}

func TestSyncCompletedSeverity(t *testing.T) {
	tests := []struct {
		name         string
		failed       int
		wantSeverity string
		wantOutcome  string
	}{
		{"clean pass", 0, SeverityInfo, OutcomeSuccess},
		{"partial failure", 2, SeverityWarning, OutcomeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			e := New(rec)
			if err := e.OnSyncCompleted(context.Background(), tt.failed, time.Second); err != nil {
				t.Fatalf("OnSyncCompleted: %v", err)
			}
			evt := rec.last(t)
			if evt.Severity != tt.wantSeverity || evt.Outcome != tt.wantOutcome {
				t.Errorf("severity/outcome = %s/%s, want %s/%s",
					evt.Severity, evt.Outcome, tt.wantSeverity, tt.wantOutcome)
			}
			if evt.Metadata["failed_tables"] != tt.failed {
				t.Errorf("failed_tables = %v, want %d", evt.Metadata["failed_tables"], tt.failed)
			}
		})
	}
}

func TestWebhookFailedCarriesReason(t *testing.T) {
	rec := &memRecorder{}
	e := New(rec)

	hookErr := errors.New("connection refused")
	if err := e.OnWebhookFailed(context.Background(), "lead_created", "https://example.com/hook", hookErr); err != nil {
		t.Fatalf("OnWebhookFailed: %v", err)
	}
	evt := rec.last(t)
	if evt.Outcome != OutcomeFailure || evt.Reason != "connection refused" {
		t.Errorf("event = %+v", evt)
	}
}

func TestPendingFlushedEscalatesOnDrop(t *testing.T) {
	rec := &memRecorder{}
	e := New(rec)

	if err := e.OnPendingFlushed(context.Background(), 3, 1); err != nil {
		t.Fatalf("OnPendingFlushed: %v", err)
	}
	evt := rec.last(t)
	if evt.Severity != SeverityCritical {
		t.Errorf("Severity = %q, dropped writes should escalate", evt.Severity)
	}
}

func TestWithActionsFilters(t *testing.T) {
	rec := &memRecorder{}
	e := New(rec, WithActions(ActionRecordDeleted))
	ctx := context.Background()
	lead := testLead()

	if err := e.OnRecordCreated(ctx, record.CollectionLeads, lead); err != nil {
		t.Fatalf("OnRecordCreated: %v", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("filtered action recorded: %+v", rec.events)
	}
	if err := e.OnRecordDeleted(ctx, record.CollectionLeads, lead.RecordID()); err != nil {
		t.Fatalf("OnRecordDeleted: %v", err)
	}
	if len(rec.events) != 1 {
		t.Errorf("events = %d, want 1", len(rec.events))
	}
}

func TestRecorderErrorNeverPropagates(t *testing.T) {
	rec := &memRecorder{err: errors.New("backend down")}
	e := New(rec, WithLogger(slog.New(slog.DiscardHandler)))

	if err := e.OnRecordCreated(context.Background(), record.CollectionLeads, testLead()); err != nil {
		t.Errorf("hook returned %v, recorder failures must be swallowed", err)
	}
}
