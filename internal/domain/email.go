package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for the registration confirmation
// email. TicketCode is empty for paid events until payment confirms.
type RegistrationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	TicketCode string
	IsPaid     bool
}

// PaymentEmailData holds data for the payment confirmation email.
type PaymentEmailData struct {
	Email      string
	Name       string
	EventTitle string
	TicketCode string
}

// AnnouncementEmailData holds data for an announcement email.
type AnnouncementEmailData struct {
	Email             string
	Name              string
	EventTitle        string
	AnnouncementTitle string
	Message           string
}

// EventStartedEmailData holds data for the event started email.
type EventStartedEmailData struct {
	Email      string
	Name       string
	EventTitle string
	TicketCode string
}

// EmailService defines the contract for sending domain-level emails.
// Implementations must not be called while holding transactional state;
// delivery is always best-effort and decoupled from the mutation that
// triggered it.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendPaymentConfirmation(ctx context.Context, data *PaymentEmailData) error
	SendAnnouncement(ctx context.Context, data *AnnouncementEmailData) error
	SendEventStarted(ctx context.Context, data *EventStartedEmailData) error
}
