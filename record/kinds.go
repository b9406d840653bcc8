package record

import (
	"time"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/id"
)

// Collection names. Each doubles as the local cache key and the remote
// table name for that entity kind.
const (
	CollectionLeads         = "leads"
	CollectionClients       = "clients"
	CollectionTickets       = "tickets"
	CollectionInvoices      = "invoices"
	CollectionProposals     = "proposals"
	CollectionActivities    = "activities"
	CollectionNotifications = "notifications"
	CollectionFieldDefs     = "custom_fields"
)

// Lead stages. StageWon marks a closed deal and fires the deal_won trigger.
const (
	StageNew       = "new"
	StageContacted = "contacted"
	StageQualified = "qualified"
	StageWon       = "won"
	StageLost      = "lost"
)

// Lead is a sales lead.
type Lead struct {
	syncline.Entity
	Tenant

	ID      id.ID   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Company string  `json:"company,omitempty"`
	Stage   string  `json:"stage"`
	Value   float64 `json:"value,omitempty"`
	Source  string  `json:"source,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// RecordID implements Record.
func (l *Lead) RecordID() string { return l.ID.String() }

// Client is an active customer account.
type Client struct {
	syncline.Entity
	Tenant

	ID      id.ID  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Status  string `json:"status,omitempty"`
}

// RecordID implements Record.
func (c *Client) RecordID() string { return c.ID.String() }

// Ticket is a support ticket.
type Ticket struct {
	syncline.Entity
	Tenant

	ID         id.ID      `json:"id"`
	ClientID   id.ID      `json:"client_id,omitempty"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	Status     string     `json:"status"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// RecordID implements Record.
func (t *Ticket) RecordID() string { return t.ID.String() }

// Invoice is a billing document.
type Invoice struct {
	syncline.Entity
	Tenant

	ID       id.ID      `json:"id"`
	ClientID id.ID      `json:"client_id,omitempty"`
	Number   string     `json:"number"`
	Amount   float64    `json:"amount"`
	Currency string     `json:"currency,omitempty"`
	Status   string     `json:"status"`
	DueAt    *time.Time `json:"due_at,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

// RecordID implements Record.
func (i *Invoice) RecordID() string { return i.ID.String() }

// Proposal is a quote or offer sent to a lead or client.
type Proposal struct {
	syncline.Entity
	Tenant

	ID       id.ID      `json:"id"`
	LeadID   id.ID      `json:"lead_id,omitempty"`
	Title    string     `json:"title"`
	Body     string     `json:"body,omitempty"`
	Amount   float64    `json:"amount,omitempty"`
	Status   string     `json:"status"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
	ValidTil *time.Time `json:"valid_til,omitempty"`
}

// RecordID implements Record.
func (p *Proposal) RecordID() string { return p.ID.String() }

// Activity is a logged interaction (call, meeting, note).
type Activity struct {
	syncline.Entity
	Tenant

	ID        id.ID  `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
	RelatedTo string `json:"related_to,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

// RecordID implements Record.
func (a *Activity) RecordID() string { return a.ID.String() }

// Notification is an operator-visible message.
type Notification struct {
	syncline.Entity
	Tenant

	ID     id.ID      `json:"id"`
	Title  string     `json:"title"`
	Body   string     `json:"body,omitempty"`
	Level  string     `json:"level,omitempty"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// RecordID implements Record.
func (n *Notification) RecordID() string { return n.ID.String() }

// FieldDef is a custom field definition attached to a collection.
type FieldDef struct {
	syncline.Entity
	Tenant

	ID         id.ID    `json:"id"`
	Collection string   `json:"collection"`
	Label      string   `json:"label"`
	FieldType  string   `json:"field_type"`
	Required   bool     `json:"required,omitempty"`
	Options    []string `json:"options,omitempty"`
}

// RecordID implements Record.
func (f *FieldDef) RecordID() string { return f.ID.String() }
