package id_test

import (
	"strings"
	"testing"

	"github.com/syncline/syncline/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"LeadID", id.NewLeadID, "lead_"},
		{"ClientID", id.NewClientID, "client_"},
		{"TicketID", id.NewTicketID, "ticket_"},
		{"InvoiceID", id.NewInvoiceID, "inv_"},
		{"ProposalID", id.NewProposalID, "prop_"},
		{"ActivityID", id.NewActivityID, "act_"},
		{"NotificationID", id.NewNotificationID, "notif_"},
		{"RuleID", id.NewRuleID, "rule_"},
		{"WebhookID", id.NewWebhookID, "hook_"},
		{"FieldDefID", id.NewFieldDefID, "field_"},
		{"PendingID", id.NewPendingID, "pw_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixLead)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixLead {
		t.Errorf("expected prefix %q, got %q", id.PrefixLead, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	original := id.NewTicketID()
	parsed, err := id.Parse(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
	}
}

func TestParseWithPrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected id.Prefix
		wantErr  bool
	}{
		{"matching prefix", id.NewLeadID().String(), id.PrefixLead, false},
		{"mismatched prefix", id.NewClientID().String(), id.PrefixLead, true},
		{"empty string", "", id.PrefixLead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := id.ParseWithPrefix(tt.input, tt.expected)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID should stringify empty, got %q", i.String())
	}

	text, err := i.MarshalText()
	if err != nil {
		t.Fatalf("marshal nil ID: %v", err)
	}
	if len(text) != 0 {
		t.Errorf("nil ID should marshal empty, got %q", text)
	}
}

func TestTextRoundTrip(t *testing.T) {
	original := id.NewWebhookID()
	text, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}
}

func TestScan(t *testing.T) {
	original := id.NewInvoiceID()

	tests := []struct {
		name string
		src  any
		want string
	}{
		{"string", original.String(), original.String()},
		{"bytes", []byte(original.String()), original.String()},
		{"nil", nil, ""},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i id.ID
			if err := i.Scan(tt.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if i.String() != tt.want {
				t.Errorf("got %q, want %q", i.String(), tt.want)
			}
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		var i id.ID
		if err := i.Scan(42); err == nil {
			t.Error("expected error scanning int")
		}
	})
}
