package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const appointmentColumns = `
	id, client_name, client_email, client_phone,
	appointment_date, appointment_time, service_type, notes,
	status, created_at, updated_at, cancelled_at
`

// Create inserts the appointment and its outbox event in one
// transaction. A concurrent booking of the same slot trips the partial
// unique index and surfaces as a slot-taken error.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment, event *model.OutboxEvent) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Status = model.AppointmentStatusBooked

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO appointments (
				id, client_name, client_email, client_phone,
				appointment_date, appointment_time, service_type, notes,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, query,
			appt.ID,
			appt.ClientName,
			appt.ClientEmail,
			appt.ClientPhone,
			appt.AppointmentDate.Format(model.DateLayout),
			appt.AppointmentTime.Format(model.TimeLayout),
			appt.ServiceType,
			appt.Notes,
			appt.Status,
			appt.CreatedAt,
			appt.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewSlotTaken()
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		return insertOutboxEventTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.From != nil {
		query += fmt.Sprintf(" AND appointment_date >= $%d", argCount)
		args = append(args, filters.From.Format(model.DateLayout))
		argCount++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND appointment_date <= $%d", argCount)
		args = append(args, filters.To.Format(model.DateLayout))
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, string(filters.Status))
		argCount++
	}
	if filters.Service != "" {
		query += fmt.Sprintf(" AND service_type = $%d", argCount)
		args = append(args, filters.Service)
		argCount++
	}

	query += " ORDER BY appointment_date ASC, appointment_time ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.Limit)
		argCount++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filters.Offset)
		argCount++
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListBookedTimes returns the occupied times of day for a date in
// chronological order.
func (r *appointmentRepository) ListBookedTimes(ctx context.Context, date time.Time) ([]time.Time, error) {
	query := `
		SELECT appointment_time FROM appointments
		WHERE appointment_date = $1 AND status = $2
		ORDER BY appointment_time ASC
	`

	var times []time.Time
	err := r.db.SelectContext(ctx, &times, query, date.Format(model.DateLayout), model.AppointmentStatusBooked)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked times: %w", err)
	}
	return times, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, slot time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE appointment_date = $1
			AND appointment_time = $2
			AND status = $3
		)
	`

	var taken bool
	err := r.db.GetContext(ctx, &taken, query,
		slot.Format(model.DateLayout), slot.Format(model.TimeLayout), model.AppointmentStatusBooked)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

// Cancel flips a booked appointment to cancelled and writes the outbox
// event in the same transaction. It reports not-found when no booked
// row matches, which the caller treats as already-cancelled when the
// row exists.
func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time, event *model.OutboxEvent) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE appointments
			SET status = $1, cancelled_at = $2, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING ` + appointmentColumns

		err := tx.GetContext(ctx, &appt, query,
			model.AppointmentStatusCancelled, at, id, model.AppointmentStatusBooked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFound("appointment", err)
			}
			return fmt.Errorf("failed to cancel appointment: %w", err)
		}

		return insertOutboxEventTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
