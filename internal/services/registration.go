package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	issuer           domain.TicketIssuer
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates the registration/payment lifecycle
// engine with the given repositories and ports.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	issuer domain.TicketIssuer,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		issuer:           issuer,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// Register books a seat via reserve-then-create: the seat reservation is
// the single point of truth and is attempted before any registration
// row is materialized, so a failed reservation never leaves an orphan.
func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.Open() {
		return nil, domain.ErrEventNotOpen
	}

	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, domain.ErrAlreadyRegistered
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	if err := s.eventRepo.ReserveSeat(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrEventFull) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve seat: %w", err)
	}

	status := domain.PaymentUnpaid
	ticketCode := ""
	if !event.IsPaid {
		// Free events are paid by definition; the ticket is issued
		// immediately.
		code, err := s.issuer.Issue(ctx)
		if err != nil {
			s.rollbackSeat(ctx, eventID)
			return nil, fmt.Errorf("issue ticket: %w", err)
		}
		status = domain.PaymentPaid
		ticketCode = code
	}

	reg := domain.NewRegistration(eventID, userID, status, ticketCode, time.Now())
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		s.rollbackSeat(ctx, eventID)
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	// Notification happens strictly after the mutation has committed and
	// never fails the registration.
	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		data := &domain.RegistrationEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			TicketCode: reg.TicketCode,
			IsPaid:     event.IsPaid,
		}
		if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
			s.logger.Warn("registration confirmation not delivered", "user_id", userID, "event_id", eventID, "err", err)
		}
	}

	return reg, nil
}

func (s *registrationService) rollbackSeat(ctx context.Context, eventID string) {
	if err := s.eventRepo.ReleaseSeat(ctx, eventID); err != nil {
		s.logger.Error("seat rollback failed", "event_id", eventID, "err", err)
	}
}

// ConfirmPayment transitions unpaid -> paid. The conditional MarkPaid
// makes duplicate confirmations race-safe: at most one ticket code is
// ever stored per registration.
func (s *registrationService) ConfirmPayment(ctx context.Context, registrationID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if reg.PaymentStatus == domain.PaymentPaid {
		return nil, domain.ErrAlreadyPaid
	}

	code, err := s.issuer.Issue(ctx)
	if err != nil {
		return nil, fmt.Errorf("issue ticket: %w", err)
	}
	if err := s.registrationRepo.MarkPaid(ctx, registrationID, code); err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	reg.PaymentStatus = domain.PaymentPaid
	reg.TicketCode = code

	event, eventErr := s.eventRepo.GetByID(ctx, reg.EventID)
	user, userErr := s.userRepo.GetByID(ctx, userID)
	if eventErr == nil && userErr == nil {
		data := &domain.PaymentEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			TicketCode: code,
		}
		if err := s.emailService.SendPaymentConfirmation(ctx, data); err != nil {
			s.logger.Warn("payment confirmation not delivered", "registration_id", registrationID, "err", err)
		}
	}

	return reg, nil
}

// CancelRegistration removes the registration and releases its seat.
// Deletion takes priority: a missing event record never blocks the
// cancellation.
func (s *registrationService) CancelRegistration(ctx context.Context, registrationID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.registrationRepo.Delete(ctx, registrationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}

	if err := s.eventRepo.ReleaseSeat(ctx, reg.EventID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		// The registration is already gone; surface the seat release
		// problem in the logs only.
		s.logger.Error("seat release failed after cancellation", "event_id", reg.EventID, "registration_id", registrationID, "err", err)
	}
	return nil
}

func (s *registrationService) GetRegistration(ctx context.Context, registrationID, userID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return reg, nil
}

func (s *registrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but registration remains; skip the entry.
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, nil
}
