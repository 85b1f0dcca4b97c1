package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"gatherly/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, description, category, location, date, is_paid, price, max_seats, booked_seats, status, organizer_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.Location, &e.Date,
		&e.IsPaid, &e.Price, &e.MaxSeats, &e.BookedSeats, &status,
		&e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, category, location, date, is_paid, price, max_seats, booked_seats, status, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Category, e.Location, e.Date,
		e.IsPaid, e.Price, e.MaxSeats, string(e.Status),
		e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{"1=1"}
	args := []any{}
	n := 1
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+s+"%")
		n++
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		where = append(where, fmt.Sprintf("category = $%d", n))
		args = append(args, c)
		n++
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events
		WHERE %s
		ORDER BY date ASC
		LIMIT $%d OFFSET $%d
	`, cond, n, n+1)
	args = append(args, params.Limit(), params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReserveSeat is the single point of truth for seat allocation. The
// conditional UPDATE checks capacity and increments in one statement;
// Postgres row locking serializes concurrent reservers, so exactly one
// caller wins the last seat.
func (r *eventRepository) ReserveSeat(ctx context.Context, id string) error {
	query := `
		UPDATE events
		SET booked_seats = booked_seats + 1, updated_at = NOW()
		WHERE id = $1 AND booked_seats < max_seats
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrEventFull
	}
	return nil
}

func (r *eventRepository) ReleaseSeat(ctx context.Context, id string) error {
	query := `
		UPDATE events
		SET booked_seats = booked_seats - 1, updated_at = NOW()
		WHERE id = $1 AND booked_seats > 0
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the event is gone or booked_seats is already zero. The
		// former is an error for the caller to judge; the latter is a no-op.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, to domain.EventStatus, from ...domain.EventStatus) (*domain.Event, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	query := `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + eventColumns + `
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, string(to), pq.Array(statuses)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := r.GetByID(ctx, id); err != nil {
				return nil, err
			}
			return nil, domain.ErrInvalidTransition
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND date < $3
	`
	result, err := r.DB.ExecContext(ctx, query, string(domain.StatusCompleted), string(domain.StatusOngoing), now)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
