package services

import (
	"context"
	"time"

	"prospera/internal/models"
	"prospera/internal/repositories"
)

// TicketService defines the interface for ticket-related business logic.
type TicketService interface {
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetAll(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error)
	Update(ctx context.Context, id int64, updateData *models.Ticket) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, to models.TicketStatus) (*models.Ticket, error)
	UpdateAssignee(ctx context.Context, id int64, assigneeID int64) (*models.Ticket, error)
}

type ticketService struct {
	repo repositories.TicketRepository
}

func NewTicketService(repo repositories.TicketRepository) TicketService {
	return &ticketService{repo: repo}
}

func (s *ticketService) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	if ticket.Subject == "" {
		return nil, validationf("subject", "subject is required")
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = models.TicketPriorityNormal
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if err := s.repo.Store(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ticketService) GetAll(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *ticketService) Update(ctx context.Context, id int64, updateData *models.Ticket) (*models.Ticket, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.AssigneeID = updateData.AssigneeID
	existing.Subject = updateData.Subject
	existing.Body = updateData.Body
	existing.DueDate = updateData.DueDate
	existing.Priority = updateData.Priority
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ticketService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *ticketService) UpdateStatus(ctx context.Context, id int64, to models.TicketStatus) (*models.Ticket, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTicketTransition(existing.Status, to) {
		return nil, validationf("status", "invalid transition %s -> %s", existing.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ticketService) UpdateAssignee(ctx context.Context, id int64, assigneeID int64) (*models.Ticket, error) {
	if err := s.repo.UpdateAssignee(ctx, id, assigneeID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}
