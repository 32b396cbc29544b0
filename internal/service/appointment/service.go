package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/internal/schedule"
	"github.com/jwalitptl/booking-api/internal/service/catalog"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/keymutex"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service struct {
	repo    repository.AppointmentRepository
	catalog *catalog.Service
	policy  *schedule.Policy
	locks   *keymutex.KeyMutex
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, catalogSvc *catalog.Service, policy *schedule.Policy, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogSvc,
		policy:  policy,
		locks:   keymutex.New(),
		metrics: m,
		now:     time.Now,
	}
}

// FreeSlots returns the bookable start times for a date: the generated
// slots minus the booked set, minus times already passed when the date
// is today. Order is chronological.
func (s *Service) FreeSlots(ctx context.Context, date time.Time) ([]time.Time, error) {
	now := s.now()
	slots, err := s.policy.Slots(date, now)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.ListBookedTimes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t.Format(model.TimeLayout)] = struct{}{}
	}

	free := make([]time.Time, 0, len(slots))
	for _, slot := range slots {
		if _, ok := taken[slot.Format(model.TimeLayout)]; ok {
			continue
		}
		if slot.Before(now) {
			continue
		}
		free = append(free, slot)
	}

	s.metrics.AvailabilityChecks.Inc()
	return free, nil
}

// IsFree reports whether the slot is valid under the booking policy and
// currently unoccupied.
func (s *Service) IsFree(ctx context.Context, slot time.Time) (bool, error) {
	if err := s.policy.ValidateSlot(slot, s.now()); err != nil {
		return false, err
	}
	taken, err := s.repo.SlotTaken(ctx, slot)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return !taken, nil
}

// Book places an appointment. Requests for the same slot serialize on a
// per-slot lock, so at most one of them can pass the availability check;
// the partial unique index backs this up across processes.
func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := s.policy.ParseDate(req.AppointmentDate)
	if err != nil {
		s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}
	timeOfDay, err := schedule.ParseTimeOfDay(req.AppointmentTime)
	if err != nil {
		s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}
	slot := date.Add(timeOfDay)

	key := slot.Format(model.DateLayout + " " + model.TimeLayout)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.policy.ValidateSlot(slot, s.now()); err != nil {
		s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	svc, err := s.catalog.GetByCode(ctx, req.ServiceType)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, apperrors.NewBadRequest("unknown service type", err)
		}
		return nil, fmt.Errorf("failed to look up service type: %w", err)
	}
	if !svc.Active {
		s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewBadRequest("service is not currently offered", nil)
	}

	taken, err := s.repo.SlotTaken(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	if taken {
		s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeConflict).Inc()
		return nil, apperrors.NewSlotTaken()
	}

	appt := &model.Appointment{
		ID:              uuid.New(),
		ClientName:      req.ClientName,
		ClientEmail:     req.ClientEmail,
		ClientPhone:     req.ClientPhone,
		AppointmentDate: date,
		AppointmentTime: timeOfDayValue(timeOfDay),
		ServiceType:     req.ServiceType,
		Notes:           req.Notes,
	}

	event, err := model.NewAppointmentEvent(model.EventTypeAppointmentBooked, appt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking event: %w", err)
	}

	if err := s.repo.Create(ctx, appt, event); err != nil {
		if apperrors.IsSlotTaken(err) {
			s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeConflict).Inc()
		}
		return nil, err
	}

	s.metrics.BookingAttempts.WithLabelValues(metrics.OutcomeBooked).Inc()
	return appt, nil
}

// Cancel soft-cancels an appointment and frees its slot. Cancelling an
// already-cancelled appointment returns the record unchanged.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return appt, nil
	}

	event, err := model.NewAppointmentEvent(model.EventTypeAppointmentCancelled, appt)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cancellation event: %w", err)
	}

	cancelled, err := s.repo.Cancel(ctx, id, s.now(), event)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Lost a race with a concurrent cancel; report the final state.
			return s.repo.Get(ctx, id)
		}
		return nil, err
	}

	s.metrics.BookingsCancelled.Inc()
	return cancelled, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// ParseDate parses a calendar date in the booking policy's time zone.
func (s *Service) ParseDate(value string) (time.Time, error) {
	return s.policy.ParseDate(value)
}

// List returns appointments matching the filters, ordered by date then
// time ascending.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return nil, apperrors.NewInvalidFilter("from date is after to date")
	}
	if filters.Status != "" &&
		filters.Status != model.AppointmentStatusBooked &&
		filters.Status != model.AppointmentStatusCancelled {
		return nil, apperrors.NewInvalidFilter("unknown status")
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultPageSize
	} else if filters.Limit > maxPageSize {
		filters.Limit = maxPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func timeOfDayValue(d time.Duration) time.Time {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d)
}
