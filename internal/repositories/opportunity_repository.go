package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"prospera/internal/models"
)

const opportunityColumns = `id, contact_id, owner_id, current_funnel_id, current_stage_id,
       stage_entered_at, status, proposal_value, lost_reason_id, lost_at, won_at, notes, created_at, updated_at`

// OpportunityRepository persists opportunities and their audit trail. All
// stage/status writes are conditional on the caller's last-read state
// (compare-and-swap); a miss surfaces as ErrConflict, never a silent
// overwrite. The matching history row is written in the same transaction
// so the two can only succeed or fail together.
type OpportunityRepository struct {
	db *sql.DB
}

func NewOpportunityRepository(db *sql.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func scanOpportunity(row interface{ Scan(...interface{}) error }) (*models.Opportunity, error) {
	o := &models.Opportunity{}
	err := row.Scan(
		&o.ID, &o.ContactID, &o.OwnerID, &o.CurrentFunnelID, &o.CurrentStageID,
		&o.StageEnteredAt, &o.Status, &o.ProposalValue, &o.LostReasonID, &o.LostAt,
		&o.WonAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create inserts the opportunity and its "created" history row atomically.
func (r *OpportunityRepository) Create(ctx context.Context, o *models.Opportunity, actorID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create opportunity: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO opportunities (contact_id, owner_id, current_funnel_id, current_stage_id,
                                   stage_entered_at, status, proposal_value, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        RETURNING id
    `
	if err := tx.QueryRowContext(ctx, q,
		o.ContactID, o.OwnerID, o.CurrentFunnelID, o.CurrentStageID,
		o.StageEnteredAt, o.Status, o.ProposalValue, o.Notes, o.CreatedAt,
	).Scan(&o.ID); err != nil {
		return fmt.Errorf("create opportunity: %w", err)
	}

	if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
		OpportunityID: o.ID,
		Action:        models.HistoryCreated,
		ActorID:       actorID,
		CreatedAt:     o.CreatedAt,
	}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	q := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1`
	o, err := scanOpportunity(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity by id: %w", err)
	}
	return o, nil
}

func (r *OpportunityRepository) List(ctx context.Context, filter models.OpportunityFilter, limit, offset int) ([]*models.Opportunity, error) {
	query := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE 1=1`
	args := []interface{}{}
	i := 1

	if filter.FunnelID != nil {
		query += fmt.Sprintf(" AND current_funnel_id = $%d", i)
		args = append(args, *filter.FunnelID)
		i++
	}
	if filter.StageID != nil {
		query += fmt.Sprintf(" AND current_stage_id = $%d", i)
		args = append(args, *filter.StageID)
		i++
	}
	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", i)
		args = append(args, *filter.OwnerID)
		i++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, *filter.Status)
		i++
	}
	query += fmt.Sprintf(" ORDER BY stage_entered_at LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// casError maps a zero-row conditional update to the right failure: the
// row is gone (ErrNotFound) or it no longer matches the precondition
// (ErrConflict).
func (r *OpportunityRepository) casError(ctx context.Context, q rowQuerier, id int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM opportunities WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("opportunity precondition check: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

// MoveStage applies a validated stage transition: conditional on the
// caller's last-read stage and on active status, resets the entry
// timestamp, optionally records the proposal value, and appends the
// stage_change history row, all in one transaction.
func (r *OpportunityRepository) MoveStage(ctx context.Context, id, fromStageID, toStageID int64, enteredAt time.Time, proposalValue *float64, actorID int64) (*models.Opportunity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("move stage: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        UPDATE opportunities
        SET current_stage_id = $1,
            stage_entered_at = $2,
            proposal_value   = COALESCE($3, proposal_value),
            updated_at       = $2
        WHERE id = $4 AND current_stage_id = $5 AND status = 'active'
    `
	res, err := tx.ExecContext(ctx, q, toStageID, enteredAt, proposalValue, id, fromStageID)
	if err != nil {
		return nil, fmt.Errorf("move stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("move stage: %w", err)
	}
	if affected == 0 {
		return nil, r.casError(ctx, tx, id)
	}

	if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryStageChange,
		FromStageID:   &fromStageID,
		ToStageID:     &toStageID,
		ActorID:       actorID,
		CreatedAt:     enteredAt,
	}); err != nil {
		return nil, err
	}

	o, err := r.getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("move stage: commit: %w", err)
	}
	return o, nil
}

// MarkLost freezes the opportunity at its current stage and records the
// loss. Conditional on active status.
func (r *OpportunityRepository) MarkLost(ctx context.Context, id, reasonID int64, lostAt time.Time, notes string, actorID int64) (*models.Opportunity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mark lost: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        UPDATE opportunities
        SET status = 'lost', lost_reason_id = $1, lost_at = $2, updated_at = $2
        WHERE id = $3 AND status = 'active'
    `
	res, err := tx.ExecContext(ctx, q, reasonID, lostAt, id)
	if err != nil {
		return nil, fmt.Errorf("mark lost: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("mark lost: %w", err)
	}
	if affected == 0 {
		return nil, r.casError(ctx, tx, id)
	}

	if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryLost,
		ActorID:       actorID,
		Notes:         notes,
		CreatedAt:     lostAt,
	}); err != nil {
		return nil, err
	}

	o, err := r.getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mark lost: commit: %w", err)
	}
	return o, nil
}

// MarkWon flips the opportunity to won and, when cascade is non-nil,
// creates the linked follow-on opportunity (with its own "created" history
// row) in the same transaction, so the status change and the cascade can
// never half-apply.
func (r *OpportunityRepository) MarkWon(ctx context.Context, id int64, wonAt time.Time, actorID int64, cascade *models.Opportunity) (*models.Opportunity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mark won: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        UPDATE opportunities
        SET status = 'won', won_at = $1, updated_at = $1
        WHERE id = $2 AND status = 'active'
    `
	res, err := tx.ExecContext(ctx, q, wonAt, id)
	if err != nil {
		return nil, fmt.Errorf("mark won: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("mark won: %w", err)
	}
	if affected == 0 {
		return nil, r.casError(ctx, tx, id)
	}

	if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryWon,
		ActorID:       actorID,
		CreatedAt:     wonAt,
	}); err != nil {
		return nil, err
	}

	if cascade != nil {
		const cq = `
            INSERT INTO opportunities (contact_id, owner_id, current_funnel_id, current_stage_id,
                                       stage_entered_at, status, proposal_value, notes, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
            RETURNING id
        `
		if err := tx.QueryRowContext(ctx, cq,
			cascade.ContactID, cascade.OwnerID, cascade.CurrentFunnelID, cascade.CurrentStageID,
			cascade.StageEnteredAt, cascade.Status, cascade.ProposalValue, cascade.Notes, cascade.CreatedAt,
		).Scan(&cascade.ID); err != nil {
			return nil, fmt.Errorf("mark won: cascade insert: %w", err)
		}
		if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
			OpportunityID: cascade.ID,
			Action:        models.HistoryCreated,
			ActorID:       actorID,
			Notes:         fmt.Sprintf("created from won opportunity %d", id),
			CreatedAt:     wonAt,
		}); err != nil {
			return nil, err
		}
	}

	o, err := r.getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("mark won: commit: %w", err)
	}
	return o, nil
}

// Reactivate returns a lost opportunity to the active state at the given
// stage. Conditional on lost status; lost fields are cleared and the entry
// timestamp restarts.
func (r *OpportunityRepository) Reactivate(ctx context.Context, id, stageID int64, enteredAt time.Time, actorID int64) (*models.Opportunity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reactivate: begin: %w", err)
	}
	defer tx.Rollback()

	const q = `
        UPDATE opportunities
        SET status = 'active', current_stage_id = $1, stage_entered_at = $2,
            lost_reason_id = NULL, lost_at = NULL, updated_at = $2
        WHERE id = $3 AND status = 'lost'
    `
	res, err := tx.ExecContext(ctx, q, stageID, enteredAt, id)
	if err != nil {
		return nil, fmt.Errorf("reactivate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reactivate: %w", err)
	}
	if affected == 0 {
		return nil, r.casError(ctx, tx, id)
	}

	if err := appendHistoryTx(ctx, tx, &models.OpportunityHistoryEntry{
		OpportunityID: id,
		Action:        models.HistoryReactivated,
		ToStageID:     &stageID,
		ActorID:       actorID,
		CreatedAt:     enteredAt,
	}); err != nil {
		return nil, err
	}

	o, err := r.getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reactivate: commit: %w", err)
	}
	return o, nil
}

func (r *OpportunityRepository) getByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Opportunity, error) {
	q := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1`
	o, err := scanOpportunity(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("reread opportunity: %w", err)
	}
	return o, nil
}

// UpdateProposalValue writes the (already validated) proposal value; nil
// clears it. Conditioned on the stage the caller validated against, so a
// concurrent move past the milestone cannot slip a clear through.
func (r *OpportunityRepository) UpdateProposalValue(ctx context.Context, id, fromStageID int64, value *float64, now time.Time) error {
	const q = `
        UPDATE opportunities
        SET proposal_value = $1, updated_at = $2
        WHERE id = $3 AND current_stage_id = $4 AND status = 'active'
    `
	res, err := r.db.ExecContext(ctx, q, value, now, id, fromStageID)
	if err != nil {
		return fmt.Errorf("update proposal value: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proposal value: %w", err)
	}
	if affected == 0 {
		return r.casError(ctx, r.db, id)
	}
	return nil
}

func (r *OpportunityRepository) UpdateNotes(ctx context.Context, id int64, notes string, now time.Time) error {
	const q = `UPDATE opportunities SET notes = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, q, notes, now, id)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// WinLossRow is one aggregate row of the win/loss report.
type WinLossRow struct {
	Status       models.OpportunityStatus `json:"status"`
	LostReasonID *int64                   `json:"lost_reason_id,omitempty"`
	Count        int                      `json:"count"`
	TotalValue   float64                  `json:"total_value"`
}

// WinLoss aggregates opportunities closed within [from, to). The window
// is applied to the closing timestamps (won_at / lost_at), so later edits
// to a closed opportunity cannot shift it between reporting periods.
func (r *OpportunityRepository) WinLoss(ctx context.Context, from, to time.Time) ([]WinLossRow, error) {
	const q = `
        SELECT status, lost_reason_id, COUNT(*), COALESCE(SUM(proposal_value), 0)
        FROM opportunities
        WHERE (status = 'won' AND won_at >= $1 AND won_at < $2)
           OR (status = 'lost' AND lost_at >= $1 AND lost_at < $2)
        GROUP BY status, lost_reason_id
        ORDER BY status, lost_reason_id
    `
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("win/loss report: %w", err)
	}
	defer rows.Close()

	var out []WinLossRow
	for rows.Next() {
		var row WinLossRow
		if err := rows.Scan(&row.Status, &row.LostReasonID, &row.Count, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("scan win/loss row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
