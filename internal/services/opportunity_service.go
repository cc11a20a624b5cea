package services

import (
	"context"
	"log"
	"time"

	"prospera/internal/models"
	"prospera/internal/pipeline"
	"prospera/internal/repositories"
)

// OpportunityStore is the persistence boundary of the transition engine.
// Implementations must make every stage/status write conditional on the
// caller's last-read state and must append the matching history row in
// the same transaction.
type OpportunityStore interface {
	Create(ctx context.Context, o *models.Opportunity, actorID int64) error
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	List(ctx context.Context, filter models.OpportunityFilter, limit, offset int) ([]*models.Opportunity, error)
	MoveStage(ctx context.Context, id, fromStageID, toStageID int64, enteredAt time.Time, proposalValue *float64, actorID int64) (*models.Opportunity, error)
	MarkLost(ctx context.Context, id, reasonID int64, lostAt time.Time, notes string, actorID int64) (*models.Opportunity, error)
	MarkWon(ctx context.Context, id int64, wonAt time.Time, actorID int64, cascade *models.Opportunity) (*models.Opportunity, error)
	Reactivate(ctx context.Context, id, stageID int64, enteredAt time.Time, actorID int64) (*models.Opportunity, error)
	UpdateProposalValue(ctx context.Context, id, fromStageID int64, value *float64, now time.Time) error
	UpdateNotes(ctx context.Context, id int64, notes string, now time.Time) error
}

type FunnelStore interface {
	GetByID(ctx context.Context, id int64) (*models.Funnel, error)
	GetStages(ctx context.Context, funnelID int64) ([]models.FunnelStage, error)
	NextFunnelFirstStage(ctx context.Context, funnelID int64) (*models.Funnel, *models.FunnelStage, error)
}

type HistoryStore interface {
	ListByOpportunity(ctx context.Context, opportunityID int64) ([]models.OpportunityHistoryEntry, error)
}

type LostReasonStore interface {
	GetByID(id int64) (*models.LostReason, error)
}

// PipelineNotifier receives engine events after they are committed.
// Delivery is best-effort: a failure is logged and never rolls back or
// fails the mutation.
type PipelineNotifier interface {
	StageChanged(opp *models.Opportunity, from, to models.FunnelStage) error
	OpportunityWon(opp *models.Opportunity, cascade *models.Opportunity) error
	OpportunityLost(opp *models.Opportunity, reason *models.LostReason) error
}

type OpportunityService struct {
	store     OpportunityStore
	funnels   FunnelStore
	history   HistoryStore
	reasons   LostReasonStore
	notifiers []PipelineNotifier

	now func() time.Time // injectable clock
}

func NewOpportunityService(store OpportunityStore, funnels FunnelStore, history HistoryStore, reasons LostReasonStore, notifiers ...PipelineNotifier) *OpportunityService {
	return &OpportunityService{
		store:     store,
		funnels:   funnels,
		history:   history,
		reasons:   reasons,
		notifiers: notifiers,
		now:       time.Now,
	}
}

func (s *OpportunityService) notify(what string, fn func(n PipelineNotifier) error) {
	for _, n := range s.notifiers {
		if n == nil {
			continue
		}
		if err := fn(n); err != nil {
			log.Printf("[pipeline][notify] %s: %v", what, err)
		}
	}
}

// Create opens a new opportunity in the funnel's first stage and writes
// the "created" history row.
func (s *OpportunityService) Create(ctx context.Context, o *models.Opportunity, actorID int64) error {
	if o.ContactID == 0 {
		return validationf("contact_id", "contact is required")
	}
	stages, err := s.funnels.GetStages(ctx, o.CurrentFunnelID)
	if err != nil {
		return err
	}
	if len(stages) == 0 {
		return validationf("funnel_id", "funnel %d has no stages", o.CurrentFunnelID)
	}
	if o.ProposalValue != nil && *o.ProposalValue <= 0 {
		return validationf("proposal_value", "must be greater than zero")
	}

	now := s.now()
	o.CurrentStageID = stages[0].ID
	o.StageEnteredAt = now
	o.Status = models.OpportunityActive
	o.CreatedAt = now
	o.UpdatedAt = now
	return s.store.Create(ctx, o, actorID)
}

func (s *OpportunityService) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	return s.store.GetByID(ctx, id)
}

func (s *OpportunityService) List(ctx context.Context, filter models.OpportunityFilter, limit, offset int) ([]*models.Opportunity, error) {
	return s.store.List(ctx, filter, limit, offset)
}

func (s *OpportunityService) History(ctx context.Context, id int64) ([]models.OpportunityHistoryEntry, error) {
	return s.history.ListByOpportunity(ctx, id)
}

// CheckMove runs the transition validator without side effects. Both the
// kanban drop handler and the stage-click handler call this before
// prompting for a proposal value.
func (s *OpportunityService) CheckMove(ctx context.Context, id, targetStageID int64) (pipeline.TransitionResult, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return pipeline.TransitionResult{}, err
	}
	if opp == nil {
		return pipeline.TransitionResult{}, repositories.ErrNotFound
	}
	stages, err := s.funnels.GetStages(ctx, opp.CurrentFunnelID)
	if err != nil {
		return pipeline.TransitionResult{}, err
	}
	return pipeline.CanTransition(opp, targetStageID, stages), nil
}

// Move executes a stage transition. fromStageID is the stage the caller
// last read; a mismatch at write time means someone else moved the
// opportunity first and the call fails with ErrConflict. If the target
// requires a proposal value and none is on record, proposalValue must be
// supplied here; the whole move is aborted otherwise, nothing is held
// open waiting for input.
func (s *OpportunityService) Move(ctx context.Context, id, fromStageID, toStageID int64, proposalValue *float64, actorID int64) (*models.Opportunity, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, repositories.ErrNotFound
	}
	if fromStageID == toStageID {
		return nil, validationf("to_stage_id", "opportunity is already in this stage")
	}

	stages, err := s.funnels.GetStages(ctx, opp.CurrentFunnelID)
	if err != nil {
		return nil, err
	}
	result := pipeline.CanTransition(opp, toStageID, stages)
	switch result.Outcome {
	case pipeline.TransitionRejected:
		return nil, validationf("to_stage_id", "%s", result.Reason)
	case pipeline.TransitionNeedsProposalValue:
		if proposalValue == nil {
			return nil, ErrProposalValueRequired
		}
	}
	if proposalValue != nil && *proposalValue <= 0 {
		return nil, validationf("proposal_value", "must be greater than zero")
	}

	updated, err := s.store.MoveStage(ctx, id, fromStageID, toStageID, s.now(), proposalValue, actorID)
	if err != nil {
		return nil, err
	}

	from := findStage(stages, fromStageID)
	to := findStage(stages, toStageID)
	if from != nil && to != nil {
		s.notify("stage change", func(n PipelineNotifier) error {
			return n.StageChanged(updated, *from, *to)
		})
	}
	return updated, nil
}

// SetProposalValue edits the recorded value. Clearing (nil) is refused
// once the opportunity sits at or after the proposal milestone: the
// value becomes append-only there.
func (s *OpportunityService) SetProposalValue(ctx context.Context, id int64, value *float64) (*models.Opportunity, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, repositories.ErrNotFound
	}
	if value == nil {
		stages, err := s.funnels.GetStages(ctx, opp.CurrentFunnelID)
		if err != nil {
			return nil, err
		}
		if !pipeline.CanClearProposalValue(opp, stages) {
			return nil, validationf("proposal_value", "cannot be cleared once the opportunity has reached the proposal stage")
		}
	} else if *value <= 0 {
		return nil, validationf("proposal_value", "must be greater than zero")
	}
	if err := s.store.UpdateProposalValue(ctx, id, opp.CurrentStageID, value, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

func (s *OpportunityService) SetNotes(ctx context.Context, id int64, notes string) (*models.Opportunity, error) {
	if err := s.store.UpdateNotes(ctx, id, notes, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

// MarkLost freezes the opportunity at its current stage and records why
// it was lost. Only active opportunities can be lost.
func (s *OpportunityService) MarkLost(ctx context.Context, id, reasonID int64, notes string, actorID int64) (*models.Opportunity, error) {
	reason, err := s.reasons.GetByID(reasonID)
	if err != nil {
		return nil, err
	}
	if reason == nil {
		return nil, validationf("lost_reason_id", "unknown lost reason %d", reasonID)
	}

	updated, err := s.store.MarkLost(ctx, id, reasonID, s.now(), notes, actorID)
	if err != nil {
		return nil, err
	}
	s.notify("lost", func(n PipelineNotifier) error {
		return n.OpportunityLost(updated, reason)
	})
	return updated, nil
}

// MarkWon closes the opportunity as won. When the funnel has a successor
// configured, a linked opportunity is opened in the successor's first
// stage in the same transaction as the status change, so the cascade and
// the win can never half-apply. Returns the won opportunity and the
// cascade (nil when no successor is configured).
func (s *OpportunityService) MarkWon(ctx context.Context, id int64, actorID int64) (*models.Opportunity, *models.Opportunity, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if opp == nil {
		return nil, nil, repositories.ErrNotFound
	}

	now := s.now()
	var cascade *models.Opportunity
	nextFunnel, firstStage, err := s.funnels.NextFunnelFirstStage(ctx, opp.CurrentFunnelID)
	if err != nil {
		return nil, nil, err
	}
	if nextFunnel != nil && firstStage != nil {
		cascade = &models.Opportunity{
			ContactID:       opp.ContactID,
			OwnerID:         opp.OwnerID,
			CurrentFunnelID: nextFunnel.ID,
			CurrentStageID:  firstStage.ID,
			StageEnteredAt:  now,
			Status:          models.OpportunityActive,
			ProposalValue:   opp.ProposalValue,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	updated, err := s.store.MarkWon(ctx, id, now, actorID, cascade)
	if err != nil {
		return nil, nil, err
	}
	s.notify("won", func(n PipelineNotifier) error {
		return n.OpportunityWon(updated, cascade)
	})
	return updated, cascade, nil
}

// Reactivate returns a lost opportunity to the active state. The target
// stage defaults to the stage it was lost from and must belong to the
// opportunity's funnel.
func (s *OpportunityService) Reactivate(ctx context.Context, id int64, stageID *int64, actorID int64) (*models.Opportunity, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, repositories.ErrNotFound
	}
	if opp.Status != models.OpportunityLost {
		return nil, validationf("status", "only lost opportunities can be reactivated")
	}

	target := opp.CurrentStageID
	if stageID != nil {
		stages, err := s.funnels.GetStages(ctx, opp.CurrentFunnelID)
		if err != nil {
			return nil, err
		}
		if findStage(stages, *stageID) == nil {
			return nil, validationf("stage_id", "stage does not belong to the opportunity's funnel")
		}
		target = *stageID
	}
	return s.store.Reactivate(ctx, id, target, s.now(), actorID)
}

// BoardCard is one opportunity on the kanban board with its current SLA
// health, recomputed on every request.
type BoardCard struct {
	Opportunity *models.Opportunity `json:"opportunity"`
	Health      pipeline.SLAHealth  `json:"health,omitempty"`
}

type BoardColumn struct {
	Stage         models.FunnelStage `json:"stage"`
	Opportunities []BoardCard        `json:"opportunities"`
}

// boardPageSize caps how many active opportunities the board walks per page.
const boardPageSize = 500

// Board assembles the funnel's stages with their active opportunities and
// health signals.
func (s *OpportunityService) Board(ctx context.Context, funnelID int64) ([]BoardColumn, error) {
	stages, err := s.funnels.GetStages(ctx, funnelID)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, repositories.ErrNotFound
	}

	now := s.now()
	active := models.OpportunityActive
	filter := models.OpportunityFilter{FunnelID: &funnelID, Status: &active}
	byStage := make(map[int64][]BoardCard)
	for offset := 0; ; offset += boardPageSize {
		opps, err := s.store.List(ctx, filter, boardPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, opp := range opps {
			stage := findStage(stages, opp.CurrentStageID)
			if stage == nil {
				continue
			}
			byStage[stage.ID] = append(byStage[stage.ID], BoardCard{
				Opportunity: opp,
				Health:      pipeline.EvaluateSLA(opp, *stage, now),
			})
		}
		if len(opps) < boardPageSize {
			break
		}
	}

	columns := make([]BoardColumn, 0, len(stages))
	for _, stage := range stages {
		columns = append(columns, BoardColumn{Stage: stage, Opportunities: byStage[stage.ID]})
	}
	return columns, nil
}

// Detail is the opportunity page payload: record, audit trail and health.
type Detail struct {
	Opportunity *models.Opportunity              `json:"opportunity"`
	History     []models.OpportunityHistoryEntry `json:"history"`
	Health      pipeline.SLAHealth               `json:"health,omitempty"`
}

func (s *OpportunityService) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	opp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, repositories.ErrNotFound
	}
	entries, err := s.history.ListByOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Opportunity: opp, History: entries}
	if opp.Status == models.OpportunityActive {
		stages, err := s.funnels.GetStages(ctx, opp.CurrentFunnelID)
		if err != nil {
			return nil, err
		}
		if stage := findStage(stages, opp.CurrentStageID); stage != nil {
			detail.Health = pipeline.EvaluateSLA(opp, *stage, s.now())
		}
	}
	return detail, nil
}

func findStage(stages []models.FunnelStage, id int64) *models.FunnelStage {
	for i := range stages {
		if stages[i].ID == id {
			return &stages[i]
		}
	}
	return nil
}
