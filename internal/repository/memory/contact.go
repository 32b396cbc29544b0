package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

type ContactRepository struct {
	mu       sync.Mutex
	messages []*model.ContactMessage
	events   []*model.OutboxEvent
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (r *ContactRepository) Create(ctx context.Context, msg *model.ContactMessage, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = time.Now()

	stored := *msg
	r.messages = append(r.messages, &stored)
	if event != nil {
		event.ID = uuid.New()
		event.Status = model.OutboxStatusPending
		event.CreatedAt = msg.CreatedAt
		event.UpdatedAt = msg.CreatedAt
		r.events = append(r.events, event)
	}
	return nil
}

func (r *ContactRepository) Messages() []*model.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.ContactMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *ContactRepository) Events() []*model.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.OutboxEvent, len(r.events))
	copy(out, r.events)
	return out
}
