package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"gatherly/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, user_id, payment_status, ticket_code, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var code sql.NullString
	if reg.TicketCode != "" {
		code = sql.NullString{String: reg.TicketCode, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.UserID, string(reg.PaymentStatus), code, reg.CreatedAt,
	).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// The (event_id, user_id) unique index backs the one-registration-
			// per-attendee invariant under concurrent inserts.
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var status string
	var code sql.NullString
	if err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &status, &code, &reg.CreatedAt); err != nil {
		return nil, err
	}
	reg.PaymentStatus = domain.PaymentStatus(status)
	if code.Valid {
		reg.TicketCode = code.String
	}
	return reg, nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, payment_status, ticket_code, created_at
		FROM registrations
		WHERE id = $1
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, payment_status, ticket_code, created_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, payment_status, ticket_code, created_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) ListParticipantsByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT r.id, r.user_id, u.name, u.last_name, u.email, r.payment_status, r.ticket_code, r.created_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p := &domain.Participant{}
		var status string
		var code sql.NullString
		if err := rows.Scan(&p.RegistrationID, &p.UserID, &p.Name, &p.LastName, &p.Email, &status, &code, &p.RegisteredAt); err != nil {
			return nil, 0, err
		}
		p.PaymentStatus = domain.PaymentStatus(status)
		if code.Valid {
			p.TicketCode = code.String
		}
		participants = append(participants, p)
	}
	return participants, total, rows.Err()
}

// MarkPaid is conditional on the registration still being unpaid, so a
// duplicate confirmation can never issue a second ticket code.
func (r *registrationRepository) MarkPaid(ctx context.Context, id, ticketCode string) error {
	query := `
		UPDATE registrations
		SET payment_status = $2, ticket_code = $3
		WHERE id = $1 AND payment_status = $4
	`
	result, err := r.DB.ExecContext(ctx, query, id, string(domain.PaymentPaid), ticketCode, string(domain.PaymentUnpaid))
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
		return domain.ErrAlreadyPaid
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM registrations WHERE id = $1`
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

func (r *registrationRepository) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM registrations WHERE ticket_code = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *registrationRepository) ListRecipients(ctx context.Context, eventID string, paidOnly bool) ([]*domain.Recipient, error) {
	query := `
		SELECT r.user_id, u.name, u.email, r.ticket_code
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
	`
	args := []any{eventID}
	if paidOnly {
		query += ` AND r.payment_status = $2`
		args = append(args, string(domain.PaymentPaid))
	}
	query += ` ORDER BY r.created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]*domain.Recipient, 0)
	for rows.Next() {
		rec := &domain.Recipient{}
		var code sql.NullString
		if err := rows.Scan(&rec.UserID, &rec.Name, &rec.Email, &code); err != nil {
			return nil, err
		}
		if code.Valid {
			rec.TicketCode = code.String
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}
