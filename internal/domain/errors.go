package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; services return them unwrapped so errors.Is works.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Registration lifecycle errors.
	ErrEventFull         = errors.New("event is fully booked")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrAlreadyPaid       = errors.New("payment already confirmed")
	ErrEventNotOpen      = errors.New("event is not open for registration")

	// Event lifecycle errors.
	ErrInvalidTransition = errors.New("invalid event status transition")
)
