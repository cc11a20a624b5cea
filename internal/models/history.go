package models

import "time"

// HistoryAction identifies the kind of change recorded in the audit trail.
type HistoryAction string

const (
	HistoryCreated     HistoryAction = "created"
	HistoryStageChange HistoryAction = "stage_change"
	HistoryLost        HistoryAction = "lost"
	HistoryWon         HistoryAction = "won"
	HistoryReactivated HistoryAction = "reactivated"
)

// OpportunityHistoryEntry is one append-only audit row. Entries are written
// exclusively by the transition executor and the lifecycle operations and
// are never updated or deleted. FromStageID/ToStageID are populated for
// stage_change entries.
type OpportunityHistoryEntry struct {
	ID            int64         `json:"id"`
	OpportunityID int64         `json:"opportunity_id"`
	Action        HistoryAction `json:"action"`
	FromStageID   *int64        `json:"from_stage_id,omitempty"`
	ToStageID     *int64        `json:"to_stage_id,omitempty"`
	ActorID       int64         `json:"actor_id"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
