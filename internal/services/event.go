package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type eventService struct {
	eventRepo          domain.EventRepository
	registrationRepo   domain.RegistrationRepository
	emailService       domain.EmailService
	logger             *slog.Logger
	allowCancelOngoing bool
	contextTimeout     time.Duration
}

// NewEventService creates an EventService. allowCancelOngoing permits
// cancelling an event that has already started; it is a policy switch,
// off by default.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	allowCancelOngoing bool,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:          eventRepo,
		registrationRepo:   registrationRepo,
		emailService:       emailService,
		logger:             logger,
		allowCancelOngoing: allowCancelOngoing,
		contextTimeout:     timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Status = domain.StatusUpcoming
	event.BookedSeats = 0
	if !event.IsPaid {
		event.Price = 0
	}
	if err := event.Validate(); err != nil {
		return err
	}
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOrganizerID(ctx, organizerID)
}

// StartEvent drives upcoming -> ongoing and notifies paid registrants.
// Unpaid registrants hold no ticket yet and are excluded from the
// notification. The status transition commits before any delivery is
// attempted.
func (s *eventService) StartEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, *domain.DeliveryReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, nil, domain.ErrForbidden
	}

	updated, err := s.eventRepo.UpdateStatus(ctx, eventID, domain.StatusOngoing, domain.StatusUpcoming)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("update event status: %w", err)
	}

	recipients, err := s.registrationRepo.ListRecipients(ctx, eventID, true)
	if err != nil {
		// The event has started regardless; report an empty fan-out.
		s.logger.Error("could not resolve start notification recipients", "event_id", eventID, "err", err)
		return updated, &domain.DeliveryReport{}, nil
	}

	report := broadcast(recipients, func(rec *domain.Recipient) error {
		err := s.emailService.SendEventStarted(ctx, &domain.EventStartedEmailData{
			Email:      rec.Email,
			Name:       rec.Name,
			EventTitle: updated.Title,
			TicketCode: rec.TicketCode,
		})
		if err != nil {
			s.logger.Warn("event started notification not delivered", "event_id", eventID, "to", rec.Email, "err", err)
		}
		return err
	})
	return updated, report, nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}

	from := []domain.EventStatus{domain.StatusUpcoming}
	if s.allowCancelOngoing {
		from = append(from, domain.StatusOngoing)
	}
	updated, err := s.eventRepo.UpdateStatus(ctx, eventID, domain.StatusCancelled, from...)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return updated, nil
}

func (s *eventService) CompleteElapsedEvents(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	n, err := s.eventRepo.CompleteElapsed(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("complete elapsed events: %w", err)
	}
	if n > 0 {
		s.logger.Info("events completed by sweep", "count", n)
	}
	return n, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID, organizerID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, 0, domain.ErrForbidden
	}

	participants, total, err := s.registrationRepo.ListParticipantsByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}
	return participants, total, nil
}
