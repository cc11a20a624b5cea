package services

import (
	"strings"
	"time"

	"prospera/internal/models"
	"prospera/internal/repositories"
)

type ContactService struct {
	Repo *repositories.ContactRepository
}

func NewContactService(repo *repositories.ContactRepository) *ContactService {
	return &ContactService{Repo: repo}
}

func (s *ContactService) Create(contact *models.Contact) error {
	if strings.TrimSpace(contact.Name) == "" {
		return validationf("name", "contact name is required")
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	id, err := s.Repo.Create(contact)
	if err != nil {
		return err
	}
	contact.ID = id
	return nil
}

func (s *ContactService) Update(contact *models.Contact) error {
	if strings.TrimSpace(contact.Name) == "" {
		return validationf("name", "contact name is required")
	}
	return s.Repo.Update(contact)
}

func (s *ContactService) GetByID(id int64) (*models.Contact, error) {
	return s.Repo.GetByID(id)
}

func (s *ContactService) List(limit, offset int) ([]*models.Contact, error) {
	return s.Repo.List(limit, offset)
}

func (s *ContactService) Search(name string) ([]*models.Contact, error) {
	return s.Repo.FindByName(name)
}

func (s *ContactService) Delete(id int64) error {
	return s.Repo.Delete(id)
}
