package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository owns the booked-slot state. Create and
	// Cancel write the outbox event in the same transaction as the
	// state change; Create reports an occupied slot as a slot-taken
	// error backed by the partial unique index.
	AppointmentRepository interface {
		Create(ctx context.Context, appt *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListBookedTimes(ctx context.Context, date time.Time) ([]time.Time, error)
		SlotTaken(ctx context.Context, slot time.Time) (bool, error)
		Cancel(ctx context.Context, id uuid.UUID, at time.Time, event *model.OutboxEvent) (*model.Appointment, error)
	}

	AdminRepository interface {
		Create(ctx context.Context, admin *model.Admin) error
		Get(ctx context.Context, id uuid.UUID) (*model.Admin, error)
		GetByEmail(ctx context.Context, email string) (*model.Admin, error)
		UpdateLoginState(ctx context.Context, admin *model.Admin) error
		Count(ctx context.Context) (int, error)
	}

	SessionRepository interface {
		Create(ctx context.Context, session *model.Session) error
		Get(ctx context.Context, id uuid.UUID) (*model.Session, error)
		Rotate(ctx context.Context, id uuid.UUID, refreshTokenHash string, expiresAt time.Time) error
		Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
		DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	ContactRepository interface {
		Create(ctx context.Context, msg *model.ContactMessage, event *model.OutboxEvent) error
	}

	ServiceRepository interface {
		ListActive(ctx context.Context) ([]*model.Service, error)
		GetByCode(ctx context.Context, code string) (*model.Service, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		RecordFailure(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
