package models

import "time"

// TicketStatus defines the possible statuses for a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket is an internal follow-up item, optionally linked to a contact or
// an opportunity.
type Ticket struct {
	ID            int64          `json:"id"`
	CreatorID     int64          `json:"creator_id"`
	AssigneeID    int64          `json:"assignee_id"`
	ContactID     *int64         `json:"contact_id,omitempty"`
	OpportunityID *int64         `json:"opportunity_id,omitempty"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	DueDate       *time.Time     `json:"due_date,omitempty"`
	Priority      TicketPriority `json:"priority"`
	Status        TicketStatus   `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TicketFilter defines the available parameters for filtering tickets.
type TicketFilter struct {
	AssigneeID    *int64
	CreatorID     *int64
	ContactID     *int64
	OpportunityID *int64
	Status        *TicketStatus
}
