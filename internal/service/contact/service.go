package contact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
)

type Service struct {
	repo repository.ContactRepository
}

func NewService(repo repository.ContactRepository) *Service {
	return &Service{repo: repo}
}

// Submit stores a contact message and queues the office notification
// through the outbox.
func (s *Service) Submit(ctx context.Context, req *model.CreateContactRequest) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		ID:      uuid.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	event, err := model.NewContactEvent(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact event: %w", err)
	}
	if err := s.repo.Create(ctx, msg, event); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}
	return msg, nil
}
