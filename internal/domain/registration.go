package domain

import (
	"context"
	"time"
)

// PaymentStatus tracks whether a registration has been paid for. Free
// events are marked paid at creation.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Registration represents an attendee's seat at an event. TicketCode is
// set exactly when PaymentStatus is paid.
// swagger:model Registration
type Registration struct {
	ID            string        `json:"id"`
	EventID       string        `json:"event_id"`
	UserID        string        `json:"user_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TicketCode    string        `json:"ticket_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewRegistration creates a Registration. ID is set by the repository on create.
func NewRegistration(eventID, userID string, status PaymentStatus, ticketCode string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:       eventID,
		UserID:        userID,
		PaymentStatus: status,
		TicketCode:    ticketCode,
		CreatedAt:     createdAt,
	}
}

// RegistrationWithEvent bundles a registration with its event for
// attendee-facing listings.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// Participant is an organizer-facing view of a registration joined with
// the attendee's identity.
// swagger:model Participant
type Participant struct {
	RegistrationID string        `json:"registration_id"`
	UserID         string        `json:"user_id"`
	Name           string        `json:"name"`
	LastName       string        `json:"last_name"`
	Email          string        `json:"email"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TicketCode     string        `json:"ticket_code,omitempty"`
	RegisteredAt   time.Time     `json:"registered_at"`
}

// Recipient identifies one notification target resolved from the
// current registration set of an event.
type Recipient struct {
	UserID     string
	Name       string
	Email      string
	TicketCode string
}

// RegistrationRepository defines storage operations for registrations.
// Create must reject a second registration for the same (event, user)
// pair with ErrAlreadyRegistered. MarkPaid must be conditional on the
// registration still being unpaid so duplicate confirmations are safe.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
	ListParticipantsByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Participant, int, error)
	// MarkPaid sets payment_status to paid and stores the ticket code, only
	// if the registration is currently unpaid. Returns ErrAlreadyPaid when
	// it is not.
	MarkPaid(ctx context.Context, id, ticketCode string) error
	Delete(ctx context.Context, id string) error
	// TicketCodeExists reports whether any registration already holds the
	// given ticket code.
	TicketCodeExists(ctx context.Context, code string) (bool, error)
	// ListRecipients resolves the event's current registrants to
	// notification targets. With paidOnly, unpaid registrants are excluded.
	ListRecipients(ctx context.Context, eventID string, paidOnly bool) ([]*Recipient, error)
}

// TicketIssuer produces globally unique ticket codes. Safe for
// concurrent use.
type TicketIssuer interface {
	Issue(ctx context.Context) (string, error)
}

// RegistrationService is the transactional core of the registration and
// payment lifecycle. Seat reservation happens before any registration
// record is created, so a failed reservation never leaves an orphan.
type RegistrationService interface {
	// Register books a seat for the user. Free events yield a paid
	// registration with a ticket code immediately; paid events yield an
	// unpaid registration without one.
	Register(ctx context.Context, eventID, userID string) (*Registration, error)
	// ConfirmPayment transitions unpaid -> paid and issues the ticket code.
	// At most one code is ever issued per registration.
	ConfirmPayment(ctx context.Context, registrationID, userID string) (*Registration, error)
	// CancelRegistration removes the registration and releases its seat.
	// Only the owning attendee may cancel.
	CancelRegistration(ctx context.Context, registrationID, userID string) error
	GetRegistration(ctx context.Context, registrationID, userID string) (*Registration, error)
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}
