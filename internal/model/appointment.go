package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Wire layouts for calendar fields.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimeLayoutShort = "15:04"
)

// Appointment is one booked slot. Rows are soft-cancelled, never
// deleted; a partial unique index over (appointment_date,
// appointment_time) for booked rows keeps a slot single-owner.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	ClientName      string            `db:"client_name" json:"client_name"`
	ClientEmail     string            `db:"client_email" json:"client_email"`
	ClientPhone     string            `db:"client_phone" json:"client_phone"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime time.Time         `db:"appointment_time" json:"appointment_time"`
	ServiceType     string            `db:"service_type" json:"service_type"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
	CancelledAt     *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// SlotStart combines the date and time-of-day columns into one instant.
func (a *Appointment) SlotStart() time.Time {
	d, t := a.AppointmentDate, a.AppointmentTime
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, d.Location())
}

type CreateAppointmentRequest struct {
	ClientName      string `json:"client_name" binding:"required,min=2,max=120"`
	ClientEmail     string `json:"client_email" binding:"required,email"`
	ClientPhone     string `json:"client_phone" binding:"required,phone"`
	AppointmentDate string `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" binding:"required,timeslot"`
	ServiceType     string `json:"service_type" binding:"required,max=100"`
	Notes           string `json:"notes" binding:"omitempty,max=2000"`
}

// AppointmentFilters narrows admin listings. Nil or zero fields match
// everything.
type AppointmentFilters struct {
	From    *time.Time
	To      *time.Time
	Status  AppointmentStatus
	Service string
	Limit   int
	Offset  int
}
