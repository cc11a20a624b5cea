package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"prospera/internal/models"
)

type FunnelRepository struct {
	db *sql.DB
}

func NewFunnelRepository(db *sql.DB) *FunnelRepository {
	return &FunnelRepository{db: db}
}

// Create inserts the funnel and its stages in one transaction.
func (r *FunnelRepository) Create(ctx context.Context, funnel *models.Funnel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create funnel: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO funnels (name, generates_contract, next_funnel_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	if err := tx.QueryRowContext(ctx, q,
		funnel.Name, funnel.GeneratesContract, funnel.NextFunnelID, funnel.CreatedAt,
	).Scan(&funnel.ID); err != nil {
		return fmt.Errorf("create funnel: %w", err)
	}

	const sq = `
        INSERT INTO funnel_stages (funnel_id, name, color, order_position, sla_hours, proposal_milestone, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	for i := range funnel.Stages {
		s := &funnel.Stages[i]
		s.FunnelID = funnel.ID
		if err := tx.QueryRowContext(ctx, sq,
			s.FunnelID, s.Name, s.Color, s.OrderPosition, s.SLAHours, s.ProposalMilestone, funnel.CreatedAt,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("create funnel stage %q: %w", s.Name, err)
		}
	}
	return tx.Commit()
}

func (r *FunnelRepository) GetByID(ctx context.Context, id int64) (*models.Funnel, error) {
	const q = `
        SELECT id, name, generates_contract, next_funnel_id, created_at
        FROM funnels
        WHERE id = $1
    `
	f := &models.Funnel{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.Name, &f.GeneratesContract, &f.NextFunnelID, &f.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get funnel by id: %w", err)
	}
	return f, nil
}

func (r *FunnelRepository) List(ctx context.Context) ([]*models.Funnel, error) {
	const q = `
        SELECT id, name, generates_contract, next_funnel_id, created_at
        FROM funnels
        ORDER BY id
    `
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list funnels: %w", err)
	}
	defer rows.Close()

	var funnels []*models.Funnel
	for rows.Next() {
		f := &models.Funnel{}
		if err := rows.Scan(&f.ID, &f.Name, &f.GeneratesContract, &f.NextFunnelID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan funnel: %w", err)
		}
		funnels = append(funnels, f)
	}
	return funnels, rows.Err()
}

// GetStages returns the funnel's stages ordered by position.
func (r *FunnelRepository) GetStages(ctx context.Context, funnelID int64) ([]models.FunnelStage, error) {
	const q = `
        SELECT id, funnel_id, name, color, order_position, sla_hours, proposal_milestone, created_at
        FROM funnel_stages
        WHERE funnel_id = $1
        ORDER BY order_position
    `
	rows, err := r.db.QueryContext(ctx, q, funnelID)
	if err != nil {
		return nil, fmt.Errorf("get stages: %w", err)
	}
	defer rows.Close()

	var stages []models.FunnelStage
	for rows.Next() {
		var s models.FunnelStage
		if err := rows.Scan(&s.ID, &s.FunnelID, &s.Name, &s.Color, &s.OrderPosition, &s.SLAHours, &s.ProposalMilestone, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *FunnelRepository) GetStage(ctx context.Context, id int64) (*models.FunnelStage, error) {
	const q = `
        SELECT id, funnel_id, name, color, order_position, sla_hours, proposal_milestone, created_at
        FROM funnel_stages
        WHERE id = $1
    `
	s := &models.FunnelStage{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.FunnelID, &s.Name, &s.Color, &s.OrderPosition, &s.SLAHours, &s.ProposalMilestone, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stage by id: %w", err)
	}
	return s, nil
}

func (r *FunnelRepository) CreateStage(ctx context.Context, stage *models.FunnelStage) error {
	const q = `
        INSERT INTO funnel_stages (funnel_id, name, color, order_position, sla_hours, proposal_milestone, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	if err := r.db.QueryRowContext(ctx, q,
		stage.FunnelID, stage.Name, stage.Color, stage.OrderPosition, stage.SLAHours, stage.ProposalMilestone, stage.CreatedAt,
	).Scan(&stage.ID); err != nil {
		return fmt.Errorf("create stage: %w", err)
	}
	return nil
}

// ReorderStages rewrites order_position for the given stage ids, first to
// last. All stages must belong to the funnel; positions are assigned 1..n.
func (r *FunnelRepository) ReorderStages(ctx context.Context, funnelID int64, orderedStageIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder stages: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `UPDATE funnel_stages SET order_position = $1 WHERE id = $2 AND funnel_id = $3`
	for i, stageID := range orderedStageIDs {
		res, err := tx.ExecContext(ctx, q, i+1, stageID, funnelID)
		if err != nil {
			return fmt.Errorf("reorder stages: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder stages: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("reorder stages: stage %d: %w", stageID, ErrNotFound)
		}
	}
	return tx.Commit()
}

// NextFunnelFirstStage resolves the successor funnel configured for the
// given funnel and its first stage. Returns (nil, nil, nil) when no
// successor is configured.
func (r *FunnelRepository) NextFunnelFirstStage(ctx context.Context, funnelID int64) (*models.Funnel, *models.FunnelStage, error) {
	current, err := r.GetByID(ctx, funnelID)
	if err != nil {
		return nil, nil, err
	}
	if current == nil || current.NextFunnelID == nil {
		return nil, nil, nil
	}
	next, err := r.GetByID(ctx, *current.NextFunnelID)
	if err != nil {
		return nil, nil, err
	}
	if next == nil {
		return nil, nil, nil
	}
	stages, err := r.GetStages(ctx, next.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(stages) == 0 {
		return nil, nil, nil
	}
	first := stages[0]
	return next, &first, nil
}
