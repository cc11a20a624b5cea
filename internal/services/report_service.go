package services

import (
	"context"
	"time"

	"prospera/internal/models"
	"prospera/internal/pipeline"
	"prospera/internal/repositories"
)

// WinLossStore is the aggregate query surface of the reporting layer.
type WinLossStore interface {
	WinLoss(ctx context.Context, from, to time.Time) ([]repositories.WinLossRow, error)
}

// StageSummary describes the load of one stage of a pipeline.
type StageSummary struct {
	Stage      models.FunnelStage `json:"stage"`
	Count      int                `json:"count"`
	TotalValue float64            `json:"total_value"`
	Warning    int                `json:"warning"`
	Overdue    int                `json:"overdue"`
}

// PipelineSummary is the per-stage report of a single funnel.
type PipelineSummary struct {
	Funnel models.Funnel  `json:"funnel"`
	Stages []StageSummary `json:"stages"`
}

type ReportService struct {
	store   OpportunityStore
	funnels FunnelStore
	winLoss WinLossStore

	now func() time.Time
}

func NewReportService(store OpportunityStore, funnels FunnelStore, winLoss WinLossStore) *ReportService {
	return &ReportService{
		store:   store,
		funnels: funnels,
		winLoss: winLoss,
		now:     time.Now,
	}
}

// reportPageSize caps how many active opportunities a summary walks per page.
const reportPageSize = 500

// PipelineSummary aggregates the active opportunities of a funnel by stage,
// including totals and SLA health counts.
func (s *ReportService) PipelineSummary(ctx context.Context, funnelID int64) (*PipelineSummary, error) {
	funnel, err := s.funnels.GetByID(ctx, funnelID)
	if err != nil {
		return nil, err
	}
	if funnel == nil {
		return nil, repositories.ErrNotFound
	}
	stages, err := s.funnels.GetStages(ctx, funnelID)
	if err != nil {
		return nil, err
	}

	summary := &PipelineSummary{Funnel: *funnel, Stages: make([]StageSummary, len(stages))}
	byStage := make(map[int64]*StageSummary, len(stages))
	for i, st := range stages {
		summary.Stages[i] = StageSummary{Stage: st}
		byStage[st.ID] = &summary.Stages[i]
	}

	now := s.now()
	status := models.OpportunityActive
	filter := models.OpportunityFilter{FunnelID: &funnelID, Status: &status}
	for offset := 0; ; offset += reportPageSize {
		opps, err := s.store.List(ctx, filter, reportPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, opp := range opps {
			cell, ok := byStage[opp.CurrentStageID]
			if !ok {
				continue
			}
			cell.Count++
			if opp.ProposalValue != nil {
				cell.TotalValue += *opp.ProposalValue
			}
			switch pipeline.EvaluateSLA(opp, cell.Stage, now) {
			case pipeline.SLAWarning:
				cell.Warning++
			case pipeline.SLAOverdue:
				cell.Overdue++
			}
		}
		if len(opps) < reportPageSize {
			break
		}
	}
	return summary, nil
}

// WinLoss returns the closed-opportunity aggregates over [from, to).
func (s *ReportService) WinLoss(ctx context.Context, from, to time.Time) ([]repositories.WinLossRow, error) {
	if !to.After(from) {
		return nil, validationf("to", "range end must be after range start")
	}
	return s.winLoss.WinLoss(ctx, from, to)
}
