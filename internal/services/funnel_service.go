package services

import (
	"context"
	"time"

	"prospera/internal/models"
	"prospera/internal/repositories"
)

type FunnelService struct {
	Repo *repositories.FunnelRepository
}

func NewFunnelService(repo *repositories.FunnelRepository) *FunnelService {
	return &FunnelService{Repo: repo}
}

// Create validates and persists a funnel with its ordered stages.
func (s *FunnelService) Create(ctx context.Context, funnel *models.Funnel) error {
	if funnel.Name == "" {
		return validationf("name", "funnel name is required")
	}
	if len(funnel.Stages) == 0 {
		return validationf("stages", "a funnel needs at least one stage")
	}
	seen := map[int]bool{}
	for i := range funnel.Stages {
		st := &funnel.Stages[i]
		if st.Name == "" {
			return validationf("stages", "stage %d: name is required", i+1)
		}
		if st.OrderPosition == 0 {
			st.OrderPosition = i + 1
		}
		if seen[st.OrderPosition] {
			return validationf("stages", "duplicate order_position %d", st.OrderPosition)
		}
		seen[st.OrderPosition] = true
		if st.SLAHours != nil && *st.SLAHours <= 0 {
			return validationf("stages", "stage %q: sla_hours must be positive", st.Name)
		}
	}
	if funnel.NextFunnelID != nil {
		next, err := s.Repo.GetByID(ctx, *funnel.NextFunnelID)
		if err != nil {
			return err
		}
		if next == nil {
			return validationf("next_funnel_id", "unknown funnel %d", *funnel.NextFunnelID)
		}
	}
	if funnel.CreatedAt.IsZero() {
		funnel.CreatedAt = time.Now()
	}
	return s.Repo.Create(ctx, funnel)
}

func (s *FunnelService) GetByID(ctx context.Context, id int64) (*models.Funnel, error) {
	funnel, err := s.Repo.GetByID(ctx, id)
	if err != nil || funnel == nil {
		return funnel, err
	}
	stages, err := s.Repo.GetStages(ctx, id)
	if err != nil {
		return nil, err
	}
	funnel.Stages = stages
	return funnel, nil
}

func (s *FunnelService) List(ctx context.Context) ([]*models.Funnel, error) {
	return s.Repo.List(ctx)
}

func (s *FunnelService) GetStages(ctx context.Context, funnelID int64) ([]models.FunnelStage, error) {
	return s.Repo.GetStages(ctx, funnelID)
}

func (s *FunnelService) AddStage(ctx context.Context, stage *models.FunnelStage) error {
	funnel, err := s.Repo.GetByID(ctx, stage.FunnelID)
	if err != nil {
		return err
	}
	if funnel == nil {
		return repositories.ErrNotFound
	}
	if stage.Name == "" {
		return validationf("name", "stage name is required")
	}
	if stage.SLAHours != nil && *stage.SLAHours <= 0 {
		return validationf("sla_hours", "must be positive")
	}
	stages, err := s.Repo.GetStages(ctx, stage.FunnelID)
	if err != nil {
		return err
	}
	if stage.OrderPosition == 0 {
		stage.OrderPosition = len(stages) + 1
	}
	for _, existing := range stages {
		if existing.OrderPosition == stage.OrderPosition {
			return validationf("order_position", "position %d already taken", stage.OrderPosition)
		}
	}
	if stage.CreatedAt.IsZero() {
		stage.CreatedAt = time.Now()
	}
	return s.Repo.CreateStage(ctx, stage)
}

// Reorder rewrites stage order. Every stage of the funnel must appear
// exactly once; live opportunities keep their stage, only the sequence
// (and with it the proposal-milestone frontier) shifts.
func (s *FunnelService) Reorder(ctx context.Context, funnelID int64, orderedStageIDs []int64) error {
	stages, err := s.Repo.GetStages(ctx, funnelID)
	if err != nil {
		return err
	}
	if len(stages) == 0 {
		return repositories.ErrNotFound
	}
	if len(orderedStageIDs) != len(stages) {
		return validationf("stage_ids", "expected %d stage ids, got %d", len(stages), len(orderedStageIDs))
	}
	known := map[int64]bool{}
	for _, st := range stages {
		known[st.ID] = true
	}
	seen := map[int64]bool{}
	for _, id := range orderedStageIDs {
		if !known[id] {
			return validationf("stage_ids", "stage %d does not belong to funnel %d", id, funnelID)
		}
		if seen[id] {
			return validationf("stage_ids", "stage %d listed twice", id)
		}
		seen[id] = true
	}
	return s.Repo.ReorderStages(ctx, funnelID, orderedStageIDs)
}
