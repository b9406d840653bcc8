package automation

import (
	"github.com/syncline/syncline"
	"github.com/syncline/syncline/id"
	"github.com/syncline/syncline/record"
)

// Collection names for the automation entities. Like the business
// collections, each doubles as the local cache key and the remote table
// name.
const (
	CollectionRules    = "workflow_rules"
	CollectionWebhooks = "webhooks"
)

// Trigger events. A mutation on a trigger-source collection raises the
// matching event; deal_won fires when a lead moves into the won stage.
const (
	TriggerLeadCreated     = "lead_created"
	TriggerClientCreated   = "client_created"
	TriggerTicketCreated   = "ticket_created"
	TriggerInvoiceCreated  = "invoice_created"
	TriggerProposalCreated = "proposal_created"
	TriggerActivityLogged  = "activity_logged"
	TriggerDealWon         = "deal_won"
)

// createTriggers maps trigger-source collections to their create event.
var createTriggers = map[string]string{
	record.CollectionLeads:      TriggerLeadCreated,
	record.CollectionClients:    TriggerClientCreated,
	record.CollectionTickets:    TriggerTicketCreated,
	record.CollectionInvoices:   TriggerInvoiceCreated,
	record.CollectionProposals:  TriggerProposalCreated,
	record.CollectionActivities: TriggerActivityLogged,
}

// TriggerForCreate returns the trigger event raised by creating a record
// in the given collection, or "" when the collection is not a trigger
// source.
func TriggerForCreate(collection string) string {
	return createTriggers[collection]
}

// Rule is a declarative workflow definition: when its trigger event
// fires and the rule is active, its configured action is meant to run.
// The dispatcher only identifies matching rules; action execution is an
// extension point.
type Rule struct {
	syncline.Entity
	record.Tenant

	ID      id.ID  `json:"id"`
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
	Action  string `json:"action,omitempty"`
	Active  bool   `json:"active"`
}

// RecordID implements record.Record.
func (r *Rule) RecordID() string { return r.ID.String() }

// Webhook is an outbound HTTP automation: when its trigger event fires
// and the hook is active, the trigger payload is sent to URL.
type Webhook struct {
	syncline.Entity
	record.Tenant

	ID      id.ID             `json:"id"`
	Name    string            `json:"name,omitempty"`
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Trigger string            `json:"trigger_event"`
	Active  bool              `json:"active"`
}

// RecordID implements record.Record.
func (w *Webhook) RecordID() string { return w.ID.String() }
