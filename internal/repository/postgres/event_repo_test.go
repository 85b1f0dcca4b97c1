package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"gatherly/internal/domain"
)

var eventRowColumns = []string{
	"id", "title", "description", "category", "location", "date", "is_paid",
	"price", "max_seats", "booked_seats", "status", "organizer_id",
	"created_at", "updated_at",
}

func eventRow(id string, status domain.EventStatus, maxSeats, bookedSeats int) *sqlmock.Rows {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(eventRowColumns).AddRow(
		id, "GopherCon", "talks", "tech", "Berlin", now.Add(72*time.Hour),
		true, 99.5, maxSeats, bookedSeats, string(status), "org-uuid-1", now, now,
	)
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Title:       "GopherCon",
				Date:        now.Add(72 * time.Hour),
				IsPaid:      true,
				Price:       99.5,
				MaxSeats:    200,
				Status:      domain.StatusUpcoming,
				OrganizerID: "org-uuid-1",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("GopherCon", "", "", "", now.Add(72*time.Hour), true, 99.5, 200, "upcoming", "org-uuid-1", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "db error",
			event: &domain.Event{
				Title:       "GopherCon",
				Date:        now,
				MaxSeats:    10,
				Status:      domain.StatusUpcoming,
				OrganizerID: "org-uuid-1",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		mock       func(mock sqlmock.Sqlmock)
		wantErr    error
		wantStatus domain.EventStatus
	}{
		{
			name: "success",
			id:   "ev-uuid-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
					WithArgs("ev-uuid-1").
					WillReturnRows(eventRow("ev-uuid-1", domain.StatusUpcoming, 200, 5))
			},
			wantStatus: domain.StatusUpcoming,
		},
		{
			name: "not found",
			id:   "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			event, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.id, event.ID)
			require.Equal(t, tt.wantStatus, event.Status)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ReserveSeat(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "seat reserved",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-uuid-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "event full",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-uuid-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
					WithArgs("ev-uuid-1").
					WillReturnRows(eventRow("ev-uuid-1", domain.StatusUpcoming, 200, 200))
			},
			wantErr: domain.ErrEventFull,
		},
		{
			name: "event gone",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-uuid-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
					WithArgs("ev-uuid-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.ReserveSeat(ctx, "ev-uuid-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ReleaseSeat(t *testing.T) {
	ctx := context.Background()

	t.Run("seat released", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WithArgs("ev-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.ReleaseSeat(ctx, "ev-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already at zero is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events`).
			WithArgs("ev-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-uuid-1").
			WillReturnRows(eventRow("ev-uuid-1", domain.StatusUpcoming, 200, 0))

		repo := NewEventRepository(db)
		require.NoError(t, repo.ReleaseSeat(ctx, "ev-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("upcoming to ongoing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-uuid-1", "ongoing", pq.Array([]string{"upcoming"})).
			WillReturnRows(eventRow("ev-uuid-1", domain.StatusOngoing, 200, 5))

		repo := NewEventRepository(db)
		event, err := repo.UpdateStatus(ctx, "ev-uuid-1", domain.StatusOngoing, domain.StatusUpcoming)
		require.NoError(t, err)
		require.Equal(t, domain.StatusOngoing, event.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong current status", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-uuid-1", "ongoing", pq.Array([]string{"upcoming"})).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-uuid-1").
			WillReturnRows(eventRow("ev-uuid-1", domain.StatusCompleted, 200, 5))

		repo := NewEventRepository(db)
		_, err = repo.UpdateStatus(ctx, "ev-uuid-1", domain.StatusOngoing, domain.StatusUpcoming)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("event gone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events`).
			WithArgs("missing", "cancelled", pq.Array([]string{"upcoming"})).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.UpdateStatus(ctx, "missing", domain.StatusCancelled, domain.StatusUpcoming)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_CompleteElapsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE events`).
		WithArgs("completed", "ongoing", now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewEventRepository(db)
	n, err := repo.CompleteElapsed(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
		WithArgs("%go%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM events`).
		WithArgs("%go%", 20, 0).
		WillReturnRows(eventRow("ev-uuid-1", domain.StatusUpcoming, 200, 5))

	repo := NewEventRepository(db)
	events, total, err := repo.List(ctx, domain.EventFilter{Search: "go"}, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
