package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"prospera/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(contact *models.Contact) (int64, error) {
	const q = `
                INSERT INTO contacts (name, email, phone, profession, income_band, notes, created_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7)
                RETURNING id
        `
	var id int64
	if err := r.db.QueryRow(q, contact.Name, contact.Email, contact.Phone, contact.Profession, contact.IncomeBand, contact.Notes, contact.CreatedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("create contact: %w", err)
	}
	return id, nil
}

func (r *ContactRepository) Update(contact *models.Contact) error {
	const q = `
                UPDATE contacts
                SET name=$1, email=$2, phone=$3, profession=$4, income_band=$5, notes=$6
                WHERE id=$7
        `
	if _, err := r.db.Exec(q, contact.Name, contact.Email, contact.Phone, contact.Profession, contact.IncomeBand, contact.Notes, contact.ID); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetByID(id int64) (*models.Contact, error) {
	const q = `
                SELECT id, name, email, phone, profession, income_band, notes, created_at
                FROM contacts
                WHERE id=$1
        `
	var c models.Contact
	if err := r.db.QueryRow(q, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Profession, &c.IncomeBand, &c.Notes, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &c, nil
}

func (r *ContactRepository) List(limit, offset int) ([]*models.Contact, error) {
	const q = `
                SELECT id, name, email, phone, profession, income_band, notes, created_at
                FROM contacts
                ORDER BY created_at DESC
                LIMIT $1 OFFSET $2
        `
	rows, err := r.db.Query(q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var res []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Profession, &c.IncomeBand, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, nil
}

func (r *ContactRepository) FindByName(name string) ([]*models.Contact, error) {
	const q = `
                SELECT id, name, email, phone, profession, income_band, notes, created_at
                FROM contacts
                WHERE LOWER(name) LIKE $1
                ORDER BY created_at DESC
        `
	rows, err := r.db.Query(q, "%"+strings.ToLower(name)+"%")
	if err != nil {
		return nil, fmt.Errorf("find contacts by name: %w", err)
	}
	defer rows.Close()

	var res []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Profession, &c.IncomeBand, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &c)
	}
	return res, nil
}

func (r *ContactRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
