package services

import (
	"context"
	"fmt"
	"log/slog"

	"gatherly/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationConfirmation sends the registration confirmation email
// using the "registration_confirmation" template.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	if err := s.send("registration_confirmation", data.Email, data); err != nil {
		return err
	}
	s.logger.Info("registration confirmation sent", "to", data.Email)
	return nil
}

// SendPaymentConfirmation sends the payment confirmation using the
// "payment_confirmation" template.
func (s *emailService) SendPaymentConfirmation(ctx context.Context, data *domain.PaymentEmailData) error {
	if data == nil {
		return fmt.Errorf("payment email data is nil")
	}
	if err := s.send("payment_confirmation", data.Email, data); err != nil {
		return err
	}
	s.logger.Info("payment confirmation sent", "to", data.Email)
	return nil
}

// SendAnnouncement sends an announcement email using the "announcement" template.
func (s *emailService) SendAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	if data == nil {
		return fmt.Errorf("announcement email data is nil")
	}
	return s.send("announcement", data.Email, data)
}

// SendEventStarted sends the event started notification using the
// "event_started" template.
func (s *emailService) SendEventStarted(ctx context.Context, data *domain.EventStartedEmailData) error {
	if data == nil {
		return fmt.Errorf("event started email data is nil")
	}
	return s.send("event_started", data.Email, data)
}

func (s *emailService) send(templateName, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	return nil
}
