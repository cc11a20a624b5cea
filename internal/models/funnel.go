package models

import "time"

// Funnel is one named sales or process workflow. A funnel whose won
// opportunities produce a contract sets GeneratesContract; NextFunnelID
// links to the follow-on funnel a won opportunity cascades into.
type Funnel struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	GeneratesContract bool      `json:"generates_contract"`
	NextFunnelID      *int64    `json:"next_funnel_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`

	// populated by detail/board endpoints, not by list queries
	Stages []FunnelStage `json:"stages,omitempty"`
}

// FunnelStage is one step of a funnel. OrderPosition is unique per funnel
// and defines the sequence. SLAHours is nil when the stage carries no SLA.
type FunnelStage struct {
	ID                int64     `json:"id"`
	FunnelID          int64     `json:"funnel_id"`
	Name              string    `json:"name"`
	Color             string    `json:"color"`
	OrderPosition     int       `json:"order_position"`
	SLAHours          *float64  `json:"sla_hours,omitempty"`
	ProposalMilestone bool      `json:"proposal_milestone"`
	CreatedAt         time.Time `json:"created_at"`
}
