package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"prospera/internal/models"
)

type TicketRepository interface {
	Store(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id int64) (*models.Ticket, error)
	FindAll(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, to models.TicketStatus) error
	UpdateAssignee(ctx context.Context, id int64, assigneeID int64) error
}

type ticketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Store(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (
			creator_id, assignee_id, contact_id, opportunity_id, subject, body,
			due_date, priority, status, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		ticket.CreatorID, ticket.AssigneeID, ticket.ContactID, ticket.OpportunityID,
		ticket.Subject, ticket.Body, ticket.DueDate, ticket.Priority, ticket.Status,
		ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT id, creator_id, assignee_id, contact_id, opportunity_id, subject, body,
       due_date, priority, status, created_at, updated_at
       FROM tickets WHERE id = $1`
	ticket := &models.Ticket{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID, &ticket.CreatorID, &ticket.AssigneeID, &ticket.ContactID, &ticket.OpportunityID,
		&ticket.Subject, &ticket.Body, &ticket.DueDate, &ticket.Priority, &ticket.Status,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) FindAll(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error) {
	baseQuery := `SELECT id, creator_id, assignee_id, contact_id, opportunity_id, subject, body,
       due_date, priority, status, created_at, updated_at FROM tickets`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argID))
		args = append(args, *filter.AssigneeID)
		argID++
	}
	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", argID))
		args = append(args, *filter.CreatorID)
		argID++
	}
	if filter.ContactID != nil {
		conditions = append(conditions, fmt.Sprintf("contact_id = $%d", argID))
		args = append(args, *filter.ContactID)
		argID++
	}
	if filter.OpportunityID != nil {
		conditions = append(conditions, fmt.Sprintf("opportunity_id = $%d", argID))
		args = append(args, *filter.OpportunityID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(
			&t.ID, &t.CreatorID, &t.AssigneeID, &t.ContactID, &t.OpportunityID,
			&t.Subject, &t.Body, &t.DueDate, &t.Priority, &t.Status,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	query := `
		UPDATE tickets SET
			assignee_id=$1, subject=$2, body=$3, due_date=$4,
			priority=$5, status=$6, updated_at=$7
		WHERE id=$8`
	_, err := r.db.ExecContext(ctx, query,
		ticket.AssigneeID, ticket.Subject, ticket.Body, ticket.DueDate,
		ticket.Priority, ticket.Status, ticket.UpdatedAt, ticket.ID,
	)
	return err
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	return err
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, to models.TicketStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	return err
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, id int64, assigneeID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET assignee_id=$1, updated_at=NOW() WHERE id=$2`, assigneeID, id)
	return err
}
