package repositories

import (
	"database/sql"
	"fmt"

	"prospera/internal/models"
)

type DocumentRepository struct{ db *sql.DB }

func NewDocumentRepository(db *sql.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(doc *models.Document) (int64, error) {
	const q = `
		INSERT INTO documents (opportunity_id, kind, file_path, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	if err := r.db.QueryRow(q,
		doc.OpportunityID,
		doc.Kind,
		doc.FilePath,
		doc.CreatedBy,
		doc.CreatedAt,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("create document: %w", err)
	}
	return id, nil
}

func (r *DocumentRepository) GetByID(id int64) (*models.Document, error) {
	const q = `SELECT id, opportunity_id, kind, file_path, created_by, created_at FROM documents WHERE id=$1`
	var d models.Document
	err := r.db.QueryRow(q, id).Scan(&d.ID, &d.OpportunityID, &d.Kind, &d.FilePath, &d.CreatedBy, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (r *DocumentRepository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM documents WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByOpportunity(opportunityID int64) ([]*models.Document, error) {
	const q = `SELECT id, opportunity_id, kind, file_path, created_by, created_at
			   FROM documents WHERE opportunity_id=$1 ORDER BY id DESC`
	rows, err := r.db.Query(q, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list by opportunity: %w", err)
	}
	defer rows.Close()

	var res []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.OpportunityID, &d.Kind, &d.FilePath, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &d)
	}
	return res, nil
}

func (r *DocumentRepository) List(limit, offset int) ([]*models.Document, error) {
	const q = `SELECT id, opportunity_id, kind, file_path, created_by, created_at
			   FROM documents ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var res []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.OpportunityID, &d.Kind, &d.FilePath, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &d)
	}
	return res, nil
}
