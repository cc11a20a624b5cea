package models

import "time"

// OpportunityStatus defines the lifecycle states of an opportunity.
type OpportunityStatus string

const (
	OpportunityActive OpportunityStatus = "active"
	OpportunityWon    OpportunityStatus = "won"
	OpportunityLost   OpportunityStatus = "lost"
)

// Opportunity is a single tracked deal moving through a funnel's stages.
// StageEnteredAt is reset on every stage change and drives SLA health.
// Invariant: status=lost <=> LostReasonID and LostAt are both set;
// status=won => WonAt is set.
type Opportunity struct {
	ID              int64             `json:"id"`
	ContactID       int64             `json:"contact_id"`
	OwnerID         int64             `json:"owner_id"`
	CurrentFunnelID int64             `json:"current_funnel_id"`
	CurrentStageID  int64             `json:"current_stage_id"`
	StageEnteredAt  time.Time         `json:"stage_entered_at"`
	Status          OpportunityStatus `json:"status"`
	ProposalValue   *float64          `json:"proposal_value,omitempty"`
	LostReasonID    *int64            `json:"lost_reason_id,omitempty"`
	LostAt          *time.Time        `json:"lost_at,omitempty"`
	WonAt           *time.Time        `json:"won_at,omitempty"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OpportunityFilter narrows list queries.
type OpportunityFilter struct {
	FunnelID *int64
	StageID  *int64
	OwnerID  *int64
	Status   *OpportunityStatus
}
