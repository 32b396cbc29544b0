// Package memory provides mutex-guarded in-memory implementations of
// the repository interfaces. They back the service tests and keep the
// same conflict semantics as the postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type AppointmentRepository struct {
	mu     sync.RWMutex
	appts  map[uuid.UUID]*model.Appointment
	slots  map[string]uuid.UUID
	events []*model.OutboxEvent
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		appts: make(map[uuid.UUID]*model.Appointment),
		slots: make(map[string]uuid.UUID),
	}
}

func slotKey(date, timeOfDay time.Time) string {
	return date.Format(model.DateLayout) + " " + timeOfDay.Format(model.TimeLayout)
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(appt.AppointmentDate, appt.AppointmentTime)
	if _, taken := r.slots[key]; taken {
		return apperrors.NewSlotTaken()
	}

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Status = model.AppointmentStatusBooked

	stored := *appt
	r.appts[appt.ID] = &stored
	r.slots[key] = appt.ID
	r.recordEvent(event)
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *appt
	return &copied, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*model.Appointment
	for _, appt := range r.appts {
		if filters.From != nil && appt.AppointmentDate.Before(*filters.From) {
			continue
		}
		if filters.To != nil && appt.AppointmentDate.After(*filters.To) {
			continue
		}
		if filters.Status != "" && appt.Status != filters.Status {
			continue
		}
		if filters.Service != "" && appt.ServiceType != filters.Service {
			continue
		}
		copied := *appt
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].AppointmentDate.Equal(matched[j].AppointmentDate) {
			return matched[i].AppointmentDate.Before(matched[j].AppointmentDate)
		}
		return matched[i].AppointmentTime.Before(matched[j].AppointmentTime)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

func (r *AppointmentRepository) ListBookedTimes(ctx context.Context, date time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(model.DateLayout)
	var times []time.Time
	for _, appt := range r.appts {
		if appt.Status != model.AppointmentStatusBooked {
			continue
		}
		if appt.AppointmentDate.Format(model.DateLayout) != day {
			continue
		}
		times = append(times, appt.AppointmentTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times, nil
}

func (r *AppointmentRepository) SlotTaken(ctx context.Context, slot time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.slots[slotKey(slot, slot)]
	return taken, nil
}

func (r *AppointmentRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time, event *model.OutboxEvent) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok || appt.Status != model.AppointmentStatusBooked {
		return nil, apperrors.NewNotFound("appointment", nil)
	}

	appt.Status = model.AppointmentStatusCancelled
	cancelled := at
	appt.CancelledAt = &cancelled
	appt.UpdatedAt = at
	delete(r.slots, slotKey(appt.AppointmentDate, appt.AppointmentTime))
	r.recordEvent(event)

	copied := *appt
	return &copied, nil
}

// Events returns the outbox events recorded alongside state changes,
// oldest first.
func (r *AppointmentRepository) Events() []*model.OutboxEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.OutboxEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *AppointmentRepository) recordEvent(event *model.OutboxEvent) {
	if event == nil {
		return
	}
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events = append(r.events, event)
}
