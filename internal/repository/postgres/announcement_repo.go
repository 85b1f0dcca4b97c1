package postgres

import (
	"context"
	"database/sql"

	"gatherly/internal/domain"
)

type announcementRepository struct {
	DB *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) domain.AnnouncementRepository {
	return &announcementRepository{
		DB: db,
	}
}

func (r *announcementRepository) Create(ctx context.Context, ann *domain.Announcement) error {
	query := `
		INSERT INTO announcements (event_id, title, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, ann.EventID, ann.Title, ann.Message, ann.CreatedAt).
		Scan(&ann.ID)
}

func (r *announcementRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.AnnouncementWithEvent, error) {
	query := `
		SELECT a.id, a.event_id, a.title, a.message, a.created_at, e.title
		FROM announcements a
		JOIN events e ON e.id = a.event_id
		WHERE e.organizer_id = $1
		ORDER BY a.created_at DESC
	`
	return r.list(ctx, query, organizerID)
}

// ListForUser joins against the user's current registrations, so the
// result always reflects membership at query time: cancelling a
// registration removes past announcements from the view, and a new
// registration brings earlier ones in.
func (r *announcementRepository) ListForUser(ctx context.Context, userID string) ([]*domain.AnnouncementWithEvent, error) {
	query := `
		SELECT a.id, a.event_id, a.title, a.message, a.created_at, e.title
		FROM announcements a
		JOIN events e ON e.id = a.event_id
		JOIN registrations r ON r.event_id = a.event_id
		WHERE r.user_id = $1
		ORDER BY a.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *announcementRepository) list(ctx context.Context, query string, arg any) ([]*domain.AnnouncementWithEvent, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	anns := make([]*domain.AnnouncementWithEvent, 0)
	for rows.Next() {
		ann := &domain.Announcement{}
		var eventTitle string
		if err := rows.Scan(&ann.ID, &ann.EventID, &ann.Title, &ann.Message, &ann.CreatedAt, &eventTitle); err != nil {
			return nil, err
		}
		anns = append(anns, &domain.AnnouncementWithEvent{Announcement: ann, EventTitle: eventTitle})
	}
	return anns, rows.Err()
}
