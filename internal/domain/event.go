package domain

import (
	"context"
	"time"
)

// EventStatus is the coarse-grained lifecycle phase of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Event represents a published event with finite seating.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Location    string      `json:"location"`
	Date        time.Time   `json:"date"`
	IsPaid      bool        `json:"is_paid"`
	Price       float64     `json:"price"`
	MaxSeats    int         `json:"max_seats"`
	BookedSeats int         `json:"booked_seats"`
	Status      EventStatus `json:"status"`
	OrganizerID string      `json:"organizer_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent returns a new upcoming Event. ID is set by the repository on create.
func NewEvent(title, description, category, location string, date time.Time, isPaid bool, price float64, maxSeats int, organizerID string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Category:    category,
		Location:    location,
		Date:        date,
		IsPaid:      isPaid,
		Price:       price,
		MaxSeats:    maxSeats,
		Status:      StatusUpcoming,
		OrganizerID: organizerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// Validate checks the invariants an event must satisfy at creation time.
func (e *Event) Validate() error {
	if e.Title == "" || e.OrganizerID == "" {
		return ErrInvalidInput
	}
	if e.MaxSeats <= 0 {
		return ErrInvalidInput
	}
	if e.IsPaid && e.Price < 0 {
		return ErrInvalidInput
	}
	if e.Date.IsZero() {
		return ErrInvalidInput
	}
	return nil
}

// Open reports whether the event still accepts registrations.
func (e *Event) Open() bool {
	return e.Status == StatusUpcoming || e.Status == StatusOngoing
}

// EventFilter narrows event listings. Search matches title/description
// case-insensitively; Category is an exact match. Empty fields match all.
type EventFilter struct {
	Search   string
	Category string
}

// EventRepository defines storage operations for events. ReserveSeat,
// ReleaseSeat, and UpdateStatus must be atomic per event: they are the
// only serialization point for concurrent registrations and lifecycle
// transitions.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// ReserveSeat atomically increments booked_seats if capacity remains.
	// Returns ErrEventFull when the event is at capacity, ErrNotFound when
	// the event does not exist.
	ReserveSeat(ctx context.Context, id string) error
	// ReleaseSeat atomically decrements booked_seats, floored at zero.
	ReleaseSeat(ctx context.Context, id string) error
	// UpdateStatus transitions the event to the given status only if its
	// current status is one of from. Returns ErrInvalidTransition otherwise.
	UpdateStatus(ctx context.Context, id string, to EventStatus, from ...EventStatus) (*Event, error)
	// CompleteElapsed marks ongoing events whose date has passed as
	// completed and returns how many rows changed.
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management and the event
// lifecycle state machine.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	// StartEvent transitions upcoming -> ongoing and notifies every paid
	// registrant. The returned report covers the notification fan-out.
	StartEvent(ctx context.Context, eventID, organizerID string) (*Event, *DeliveryReport, error)
	// CancelEvent transitions upcoming -> cancelled. Cancelling an ongoing
	// event is a configurable policy, disabled by default.
	CancelEvent(ctx context.Context, eventID, organizerID string) (*Event, error)
	// CompleteElapsedEvents is the periodic sweep that closes out ongoing
	// events whose date has passed.
	CompleteElapsedEvents(ctx context.Context) (int, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	ListParticipants(ctx context.Context, eventID, organizerID string, params PaginationParams) ([]*Participant, int, error)
}
