package repositories

import (
	"database/sql"
	"fmt"

	"prospera/internal/models"
)

type LostReasonRepository struct {
	db *sql.DB
}

func NewLostReasonRepository(db *sql.DB) *LostReasonRepository {
	return &LostReasonRepository{db: db}
}

func (r *LostReasonRepository) Create(reason *models.LostReason) (int64, error) {
	const q = `
                INSERT INTO lost_reasons (label, active, created_at)
                VALUES ($1, $2, $3)
                RETURNING id
        `
	var id int64
	if err := r.db.QueryRow(q, reason.Label, reason.Active, reason.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("create lost reason: %w", err)
	}
	return id, nil
}

func (r *LostReasonRepository) GetByID(id int64) (*models.LostReason, error) {
	const q = `SELECT id, label, active, created_at FROM lost_reasons WHERE id=$1`
	var lr models.LostReason
	if err := r.db.QueryRow(q, id).Scan(&lr.ID, &lr.Label, &lr.Active, &lr.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get lost reason: %w", err)
	}
	return &lr, nil
}

func (r *LostReasonRepository) List(activeOnly bool) ([]*models.LostReason, error) {
	q := `SELECT id, label, active, created_at FROM lost_reasons`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY label`

	rows, err := r.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list lost reasons: %w", err)
	}
	defer rows.Close()

	var res []*models.LostReason
	for rows.Next() {
		var lr models.LostReason
		if err := rows.Scan(&lr.ID, &lr.Label, &lr.Active, &lr.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &lr)
	}
	return res, nil
}

func (r *LostReasonRepository) SetActive(id int64, active bool) error {
	res, err := r.db.Exec(`UPDATE lost_reasons SET active=$1 WHERE id=$2`, active, id)
	if err != nil {
		return fmt.Errorf("set lost reason active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set lost reason active: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
