package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"prospera/internal/models"
)

// appendHistoryTx inserts one audit row inside the caller's transaction.
// History is append-only: there is no update or delete anywhere.
func appendHistoryTx(ctx context.Context, tx *sql.Tx, e *models.OpportunityHistoryEntry) error {
	const q = `
        INSERT INTO opportunity_history (opportunity_id, action, from_stage_id, to_stage_id, actor_id, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	if err := tx.QueryRowContext(ctx, q,
		e.OpportunityID, e.Action, e.FromStageID, e.ToStageID, e.ActorID, e.Notes, e.CreatedAt,
	).Scan(&e.ID); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByOpportunity returns the audit trail oldest first.
func (r *HistoryRepository) ListByOpportunity(ctx context.Context, opportunityID int64) ([]models.OpportunityHistoryEntry, error) {
	const q = `
        SELECT id, opportunity_id, action, from_stage_id, to_stage_id, actor_id, notes, created_at
        FROM opportunity_history
        WHERE opportunity_id = $1
        ORDER BY id
    `
	rows, err := r.db.QueryContext(ctx, q, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.OpportunityHistoryEntry
	for rows.Next() {
		var e models.OpportunityHistoryEntry
		if err := rows.Scan(&e.ID, &e.OpportunityID, &e.Action, &e.FromStageID, &e.ToStageID, &e.ActorID, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
