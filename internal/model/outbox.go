package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types relayed through the outbox to the notification worker.
const (
	EventTypeAppointmentBooked    = "appointment.booked"
	EventTypeAppointmentCancelled = "appointment.cancelled"
	EventTypeContactReceived      = "contact.received"
)

// OutboxEvent is written in the same transaction as the state change it
// announces; a poller publishes pending rows to the broker afterwards.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEventPayload is the outbox payload for booking lifecycle
// events; it carries what the notification templates need.
type AppointmentEventPayload struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	ClientName      string    `json:"client_name"`
	ClientEmail     string    `json:"client_email"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	ServiceType     string    `json:"service_type"`
}

// ContactEventPayload is the outbox payload for contact-form events.
type ContactEventPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
}

// NewAppointmentEvent builds the outbox event for a booking lifecycle
// change. Dates and times are serialized as strings so the payload
// survives outside the database.
func NewAppointmentEvent(eventType string, appt *Appointment) (*OutboxEvent, error) {
	payload, err := json.Marshal(AppointmentEventPayload{
		AppointmentID:   appt.ID,
		ClientName:      appt.ClientName,
		ClientEmail:     appt.ClientEmail,
		AppointmentDate: appt.AppointmentDate.Format(DateLayout),
		AppointmentTime: appt.AppointmentTime.Format(TimeLayout),
		ServiceType:     appt.ServiceType,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{EventType: eventType, Payload: payload}, nil
}

// NewContactEvent builds the outbox event for a received contact
// message.
func NewContactEvent(msg *ContactMessage) (*OutboxEvent, error) {
	payload, err := json.Marshal(ContactEventPayload{
		MessageID: msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Message:   msg.Message,
	})
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{EventType: EventTypeContactReceived, Payload: payload}, nil
}
