package domain

import (
	"context"
	"time"
)

// Announcement is a message an organizer broadcasts to an event's
// registrants. Recipients are not stored: they are resolved from the
// registration set current at read time.
// swagger:model Announcement
type Announcement struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAnnouncement creates an Announcement. ID is set by the repository on create.
func NewAnnouncement(eventID, title, message string, createdAt time.Time) *Announcement {
	return &Announcement{
		EventID:   eventID,
		Title:     title,
		Message:   message,
		CreatedAt: createdAt,
	}
}

// AnnouncementWithEvent bundles an announcement with its event title for
// listings.
type AnnouncementWithEvent struct {
	Announcement *Announcement `json:"announcement"`
	EventTitle   string        `json:"event_title"`
}

// DeliveryReport aggregates the outcome of a notification fan-out.
// Partial failure never rolls back the triggering operation; failed
// recipients are reported for retry by the caller.
// swagger:model DeliveryReport
type DeliveryReport struct {
	Attempted int      `json:"attempted"`
	Delivered int      `json:"delivered"`
	Failed    []string `json:"failed,omitempty"`
}

// AnnouncementRepository defines storage operations for announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, ann *Announcement) error
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*AnnouncementWithEvent, error)
	// ListForUser returns announcements for events the user currently holds
	// a registration for. An attendee who cancels stops seeing them.
	ListForUser(ctx context.Context, userID string) ([]*AnnouncementWithEvent, error)
}

// AnnouncementService publishes announcements and fans them out to the
// event's current registrants.
type AnnouncementService interface {
	// Publish persists the announcement once and delivers it to every
	// current registrant, paid or not. Each delivery is best-effort and
	// independent; the report carries per-recipient results.
	Publish(ctx context.Context, eventID, organizerID, title, message string) (*Announcement, *DeliveryReport, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*AnnouncementWithEvent, error)
	ListForAttendee(ctx context.Context, userID string) ([]*AnnouncementWithEvent, error)
}
