package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gatherly/internal/domain"
)

type announcementService struct {
	announcementRepo domain.AnnouncementRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewAnnouncementService creates an AnnouncementService with the given
// repositories and the email port used for fan-out.
func NewAnnouncementService(
	announcementRepo domain.AnnouncementRepository,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AnnouncementService {
	return &announcementService{
		announcementRepo: announcementRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// Publish persists the announcement once and fans it out to every
// current registrant, paid or not. The recipient set is resolved at
// publish time but never stored: later reads recompute it, so the view
// always tracks current registrations.
func (s *announcementService) Publish(ctx context.Context, eventID, organizerID, title, message string) (*domain.Announcement, *domain.DeliveryReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return nil, nil, domain.ErrInvalidInput
	}

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

	ann := domain.NewAnnouncement(eventID, title, message, time.Now())
	if err := s.announcementRepo.Create(ctx, ann); err != nil {
		return nil, nil, fmt.Errorf("create announcement: %w", err)
	}

	recipients, err := s.registrationRepo.ListRecipients(ctx, eventID, false)
	if err != nil {
		// The announcement is persisted; deliveries can be retried later.
		s.logger.Error("could not resolve announcement recipients", "event_id", eventID, "err", err)
		return ann, &domain.DeliveryReport{}, nil
	}

	report := broadcast(recipients, func(rec *domain.Recipient) error {
		err := s.emailService.SendAnnouncement(ctx, &domain.AnnouncementEmailData{
			Email:             rec.Email,
			Name:              rec.Name,
			EventTitle:        event.Title,
			AnnouncementTitle: title,
			Message:           message,
		})
		if err != nil {
			s.logger.Warn("announcement not delivered", "event_id", eventID, "to", rec.Email, "err", err)
		}
		return err
	})
	return ann, report, nil
}

func (s *announcementService) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.AnnouncementWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	anns, err := s.announcementRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return anns, nil
}

func (s *announcementService) ListForAttendee(ctx context.Context, userID string) ([]*domain.AnnouncementWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	anns, err := s.announcementRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return anns, nil
}
