// Package pipeline holds the pure decision rules for moving opportunities
// between funnel stages. Nothing here touches the database or the clock;
// both the kanban drag handler and the stage-click handler call the same
// functions so the rules cannot drift between entry points.
package pipeline

import (
	"fmt"

	"prospera/internal/models"
)

// TransitionOutcome is the verdict of CanTransition.
type TransitionOutcome string

const (
	TransitionAllowed            TransitionOutcome = "allowed"
	TransitionNeedsProposalValue TransitionOutcome = "requires_proposal_value"
	TransitionRejected           TransitionOutcome = "rejected"
)

// TransitionResult carries the verdict plus a human-readable reason when
// the move is rejected.
type TransitionResult struct {
	Outcome TransitionOutcome `json:"outcome"`
	Reason  string            `json:"reason,omitempty"`
}

func allowed() TransitionResult {
	return TransitionResult{Outcome: TransitionAllowed}
}

func needsProposalValue() TransitionResult {
	return TransitionResult{Outcome: TransitionNeedsProposalValue}
}

func rejected(reason string) TransitionResult {
	return TransitionResult{Outcome: TransitionRejected, Reason: reason}
}

// ProposalMilestone returns the stage at and after which a proposal value
// must be on record, or nil when the funnel has none configured. When
// several stages carry the flag the earliest by order wins.
func ProposalMilestone(stages []models.FunnelStage) *models.FunnelStage {
	var milestone *models.FunnelStage
	for i := range stages {
		if !stages[i].ProposalMilestone {
			continue
		}
		if milestone == nil || stages[i].OrderPosition < milestone.OrderPosition {
			milestone = &stages[i]
		}
	}
	return milestone
}

// StageRequiresProposalValue reports whether the given stage sits at or
// after the funnel's proposal milestone. A funnel with no milestone
// configured requires a value nowhere (default-permissive).
func StageRequiresProposalValue(stage models.FunnelStage, stages []models.FunnelStage) bool {
	milestone := ProposalMilestone(stages)
	if milestone == nil {
		return false
	}
	return stage.OrderPosition >= milestone.OrderPosition
}

func findStage(stages []models.FunnelStage, id int64) *models.FunnelStage {
	for i := range stages {
		if stages[i].ID == id {
			return &stages[i]
		}
	}
	return nil
}

func hasProposalValue(opp *models.Opportunity) bool {
	return opp.ProposalValue != nil && *opp.ProposalValue > 0
}

// CanTransition decides whether opp may move to targetStageID given the
// ordered stage list of its current funnel. Lost and won opportunities are
// never stage-moved directly; they go through the lifecycle operations.
func CanTransition(opp *models.Opportunity, targetStageID int64, stages []models.FunnelStage) TransitionResult {
	if opp.Status != models.OpportunityActive {
		return rejected(fmt.Sprintf("opportunity is %s; only active opportunities can change stage", opp.Status))
	}
	target := findStage(stages, targetStageID)
	if target == nil || target.FunnelID != opp.CurrentFunnelID {
		return rejected("target stage does not belong to the opportunity's funnel")
	}
	if StageRequiresProposalValue(*target, stages) && !hasProposalValue(opp) {
		return needsProposalValue()
	}
	return allowed()
}

// CanClearProposalValue reports whether the proposal value may be cleared
// back to empty. Once the opportunity sits at or after the proposal
// milestone the value is append-only: it can be replaced with a new
// positive number but never removed.
func CanClearProposalValue(opp *models.Opportunity, stages []models.FunnelStage) bool {
	current := findStage(stages, opp.CurrentStageID)
	if current == nil {
		return true
	}
	return !StageRequiresProposalValue(*current, stages)
}
