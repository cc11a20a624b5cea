package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospera/internal/models"
)

func fptr(f float64) *float64 { return &f }

// the default sales funnel: proposal value becomes mandatory at stage 3
func salesStages() []models.FunnelStage {
	return []models.FunnelStage{
		{ID: 1, FunnelID: 10, Name: "New", OrderPosition: 1},
		{ID: 2, FunnelID: 10, Name: "Qualified", OrderPosition: 2},
		{ID: 3, FunnelID: 10, Name: "Proposal Sent", OrderPosition: 3, ProposalMilestone: true},
		{ID: 4, FunnelID: 10, Name: "Closing", OrderPosition: 4},
	}
}

func activeOpp(stageID int64) *models.Opportunity {
	return &models.Opportunity{
		ID:              100,
		CurrentFunnelID: 10,
		CurrentStageID:  stageID,
		Status:          models.OpportunityActive,
	}
}

func TestProposalMilestone(t *testing.T) {
	stages := salesStages()
	milestone := ProposalMilestone(stages)
	require.NotNil(t, milestone)
	assert.Equal(t, int64(3), milestone.ID)
}

func TestProposalMilestoneEarliestWins(t *testing.T) {
	stages := salesStages()
	stages[3].ProposalMilestone = true // both stage 3 and 4 flagged

	milestone := ProposalMilestone(stages)
	require.NotNil(t, milestone)
	assert.Equal(t, int64(3), milestone.ID, "earliest flagged stage by order wins")
}

func TestProposalMilestoneNoneConfigured(t *testing.T) {
	stages := []models.FunnelStage{
		{ID: 1, FunnelID: 10, OrderPosition: 1},
		{ID: 2, FunnelID: 10, OrderPosition: 2},
	}
	assert.Nil(t, ProposalMilestone(stages))
}

func TestCanTransitionAllowedBeforeMilestone(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(1)

	res := CanTransition(opp, 2, stages)
	assert.Equal(t, TransitionAllowed, res.Outcome)
}

func TestCanTransitionNeedsValueAtMilestone(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(2)

	res := CanTransition(opp, 3, stages)
	assert.Equal(t, TransitionNeedsProposalValue, res.Outcome)
}

func TestCanTransitionNeedsValueAfterMilestone(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(2)

	// jumping straight past the milestone still requires the value
	res := CanTransition(opp, 4, stages)
	assert.Equal(t, TransitionNeedsProposalValue, res.Outcome)
}

func TestCanTransitionWithValue(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(2)
	opp.ProposalValue = fptr(2500)

	res := CanTransition(opp, 3, stages)
	assert.Equal(t, TransitionAllowed, res.Outcome)

	res = CanTransition(opp, 4, stages)
	assert.Equal(t, TransitionAllowed, res.Outcome)
}

func TestCanTransitionZeroValueDoesNotCount(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(2)
	opp.ProposalValue = fptr(0)

	res := CanTransition(opp, 3, stages)
	assert.Equal(t, TransitionNeedsProposalValue, res.Outcome)
}

func TestCanTransitionBackwardAllowed(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(3)
	opp.ProposalValue = fptr(1000)

	res := CanTransition(opp, 1, stages)
	assert.Equal(t, TransitionAllowed, res.Outcome)
}

func TestCanTransitionNonActiveRejected(t *testing.T) {
	stages := salesStages()
	for _, status := range []models.OpportunityStatus{models.OpportunityWon, models.OpportunityLost} {
		opp := activeOpp(1)
		opp.Status = status
		opp.ProposalValue = fptr(5000)

		res := CanTransition(opp, 2, stages)
		assert.Equal(t, TransitionRejected, res.Outcome, "status %s", status)
		assert.NotEmpty(t, res.Reason)
	}
}

func TestCanTransitionForeignStageRejected(t *testing.T) {
	stages := salesStages()
	opp := activeOpp(1)

	res := CanTransition(opp, 99, stages)
	assert.Equal(t, TransitionRejected, res.Outcome)

	// a stage with a known id but from another funnel
	foreign := append(stages, models.FunnelStage{ID: 50, FunnelID: 20, OrderPosition: 1})
	res = CanTransition(opp, 50, foreign)
	assert.Equal(t, TransitionRejected, res.Outcome)
}

func TestCanTransitionNoMilestoneFunnelIsPermissive(t *testing.T) {
	// funnels without a proposal milestone never demand a value
	stages := []models.FunnelStage{
		{ID: 1, FunnelID: 10, OrderPosition: 1},
		{ID: 2, FunnelID: 10, OrderPosition: 2},
		{ID: 3, FunnelID: 10, OrderPosition: 3},
	}
	opp := activeOpp(1)

	for _, target := range []int64{2, 3} {
		res := CanTransition(opp, target, stages)
		assert.Equal(t, TransitionAllowed, res.Outcome, "target %d", target)
	}
}

func TestCanClearProposalValue(t *testing.T) {
	stages := salesStages()

	before := activeOpp(2)
	before.ProposalValue = fptr(800)
	assert.True(t, CanClearProposalValue(before, stages), "clearable before the milestone")

	at := activeOpp(3)
	at.ProposalValue = fptr(800)
	assert.False(t, CanClearProposalValue(at, stages), "append-only at the milestone")

	after := activeOpp(4)
	after.ProposalValue = fptr(800)
	assert.False(t, CanClearProposalValue(after, stages), "append-only after the milestone")
}
