package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/jwalitptl/booking-api/internal/email"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/messaging"
)

// Service turns booking lifecycle events into emails. Clients receive
// confirmations and cancellation notices; the office inbox receives
// contact form submissions.
type Service struct {
	mailer       email.Service
	services     repository.ServiceRepository
	contactEmail string
	logger       *logger.Logger
}

func NewService(
	mailer email.Service,
	services repository.ServiceRepository,
	contactEmail string,
	logger *logger.Logger,
) *Service {
	return &Service{
		mailer:       mailer,
		services:     services,
		contactEmail: contactEmail,
		logger:       logger,
	}
}

// Register attaches the event handlers to the consumer. Call it before
// Consumer.Run.
func (s *Service) Register(consumer *messaging.Consumer) {
	consumer.Handle(model.EventTypeAppointmentBooked, s.HandleAppointmentBooked)
	consumer.Handle(model.EventTypeAppointmentCancelled, s.HandleAppointmentCancelled)
	consumer.Handle(model.EventTypeContactReceived, s.HandleContactReceived)
}

func (s *Service) HandleAppointmentBooked(ctx context.Context, envelope *messaging.Envelope) error {
	return s.sendAppointmentEmail(ctx, envelope, subjectBooked, bookedTemplate)
}

func (s *Service) HandleAppointmentCancelled(ctx context.Context, envelope *messaging.Envelope) error {
	return s.sendAppointmentEmail(ctx, envelope, subjectCancelled, cancelledTemplate)
}

func (s *Service) HandleContactReceived(ctx context.Context, envelope *messaging.Envelope) error {
	if s.contactEmail == "" {
		s.logger.Warn("No contact recipient configured, dropping contact notification",
			"event_id", envelope.ID.String())
		return nil
	}

	var payload model.ContactEventPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode contact payload: %w", err)
	}

	body, err := renderTemplate(contactTemplate, contactEmailData{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Message: payload.Message,
	})
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, s.contactEmail, subjectContact, body); err != nil {
		return err
	}

	s.logger.Info("Contact notification sent", "message_id", payload.MessageID.String())
	return nil
}

func (s *Service) sendAppointmentEmail(ctx context.Context, envelope *messaging.Envelope, subject string, tmpl *template.Template) error {
	var payload model.AppointmentEventPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode appointment payload: %w", err)
	}

	body, err := renderTemplate(tmpl, appointmentEmailData{
		ClientName: payload.ClientName,
		Date:       displayDate(payload.AppointmentDate),
		Time:       displayTime(payload.AppointmentTime),
		Service:    s.serviceLabel(ctx, payload.ServiceType),
	})
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, payload.ClientEmail, subject, body); err != nil {
		return err
	}

	s.logger.Info("Notification email sent",
		"event_type", envelope.Type,
		"appointment_id", payload.AppointmentID.String())
	return nil
}

// serviceLabel resolves a catalog code to its display name, falling
// back to the raw code when the lookup fails.
func (s *Service) serviceLabel(ctx context.Context, code string) string {
	if s.services == nil {
		return code
	}
	svc, err := s.services.GetByCode(ctx, code)
	if err != nil {
		return code
	}
	return svc.Name
}
