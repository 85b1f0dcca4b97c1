package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatherly/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockEventRepository is an in-memory EventRepository. The mutex makes
// ReserveSeat, ReleaseSeat, and UpdateStatus atomic the way the real
// conditional UPDATEs are, so concurrency tests exercise the same
// serialization point.
type mockEventRepository struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	err    error
}

func newMockEventRepository(events ...*domain.Event) *mockEventRepository {
	m := &mockEventRepository{events: make(map[string]*domain.Event)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = fmt.Sprintf("ev-%d", len(m.events)+1)
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *mockEventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for _, ev := range m.events {
		out = append(out, ev)
	}
	return out, len(out), nil
}

func (m *mockEventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.OrganizerID == organizerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) ReserveSeat(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ev.BookedSeats >= ev.MaxSeats {
		return domain.ErrEventFull
	}
	ev.BookedSeats++
	return nil
}

func (m *mockEventRepository) ReleaseSeat(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ev.BookedSeats > 0 {
		ev.BookedSeats--
	}
	return nil
}

func (m *mockEventRepository) UpdateStatus(ctx context.Context, id string, to domain.EventStatus, from ...domain.EventStatus) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, f := range from {
		if ev.Status == f {
			ev.Status = to
			cp := *ev
			return &cp, nil
		}
	}
	return nil, domain.ErrInvalidTransition
}

func (m *mockEventRepository) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Status == domain.StatusOngoing && ev.Date.Before(now) {
			ev.Status = domain.StatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepository) bookedSeats(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id].BookedSeats
}

// mockRegistrationRepository is an in-memory RegistrationRepository
// enforcing the same uniqueness rules as the Postgres constraints.
type mockRegistrationRepository struct {
	mu          sync.Mutex
	regs        map[string]*domain.Registration
	byEventUser map[string]string
	codes       map[string]bool
	nextID      int

	participants      []*domain.Participant
	recipients        []*domain.Recipient
	paidRecipients    []*domain.Recipient
	listRecipientsErr error
	createErr         error
	markPaidErr       error
}

func newMockRegistrationRepository() *mockRegistrationRepository {
	return &mockRegistrationRepository{
		regs:        make(map[string]*domain.Registration),
		byEventUser: make(map[string]string),
		codes:       make(map[string]bool),
	}
}

func regKey(eventID, userID string) string { return eventID + ":" + userID }

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := regKey(reg.EventID, reg.UserID)
	if _, ok := m.byEventUser[key]; ok {
		return domain.ErrAlreadyRegistered
	}
	m.nextID++
	reg.ID = fmt.Sprintf("reg-%d", m.nextID)
	m.regs[reg.ID] = reg
	m.byEventUser[key] = reg.ID
	if reg.TicketCode != "" {
		m.codes[reg.TicketCode] = true
	}
	return nil
}

func (m *mockRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (m *mockRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEventUser[regKey(eventID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.regs[id]
	return &cp, nil
}

func (m *mockRegistrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Registration
	for _, reg := range m.regs {
		if reg.UserID == userID {
			cp := *reg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRegistrationRepository) ListParticipantsByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	return m.participants, len(m.participants), nil
}

func (m *mockRegistrationRepository) MarkPaid(ctx context.Context, id, ticketCode string) error {
	if m.markPaidErr != nil {
		return m.markPaidErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if reg.PaymentStatus != domain.PaymentUnpaid {
		return domain.ErrAlreadyPaid
	}
	reg.PaymentStatus = domain.PaymentPaid
	reg.TicketCode = ticketCode
	m.codes[ticketCode] = true
	return nil
}

func (m *mockRegistrationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byEventUser, regKey(reg.EventID, reg.UserID))
	delete(m.regs, id)
	return nil
}

func (m *mockRegistrationRepository) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[code], nil
}

func (m *mockRegistrationRepository) ListRecipients(ctx context.Context, eventID string, paidOnly bool) ([]*domain.Recipient, error) {
	if m.listRecipientsErr != nil {
		return nil, m.listRecipientsErr
	}
	if paidOnly {
		return m.paidRecipients, nil
	}
	return m.recipients, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("u-%d", len(m.users)+1)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// mockEmailService records sends and fails deliveries to addresses in
// failFor. Safe for concurrent use.
type mockEmailService struct {
	mu            sync.Mutex
	failFor       map[string]bool
	registrations []*domain.RegistrationEmailData
	payments      []*domain.PaymentEmailData
	announcements []*domain.AnnouncementEmailData
	started       []*domain.EventStartedEmailData
}

func newMockEmailService(failFor ...string) *mockEmailService {
	m := &mockEmailService{failFor: make(map[string]bool)}
	for _, email := range failFor {
		m.failFor[email] = true
	}
	return m
}

func (m *mockEmailService) deliver(email string) error {
	if m.failFor[email] {
		return fmt.Errorf("delivery to %s failed", email)
	}
	return nil
}

func (m *mockEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deliver(data.Email); err != nil {
		return err
	}
	m.registrations = append(m.registrations, data)
	return nil
}

func (m *mockEmailService) SendPaymentConfirmation(ctx context.Context, data *domain.PaymentEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deliver(data.Email); err != nil {
		return err
	}
	m.payments = append(m.payments, data)
	return nil
}

func (m *mockEmailService) SendAnnouncement(ctx context.Context, data *domain.AnnouncementEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deliver(data.Email); err != nil {
		return err
	}
	m.announcements = append(m.announcements, data)
	return nil
}

func (m *mockEmailService) SendEventStarted(ctx context.Context, data *domain.EventStartedEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deliver(data.Email); err != nil {
		return err
	}
	m.started = append(m.started, data)
	return nil
}

func (m *mockEmailService) startedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.started)
}

func (m *mockEmailService) announcementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.announcements)
}

type mockTicketIssuer struct {
	mu    sync.Mutex
	next  int
	err   error
	codes []string
}

func (m *mockTicketIssuer) Issue(ctx context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	code := fmt.Sprintf("TKT-%06d", m.next)
	m.codes = append(m.codes, code)
	return code, nil
}

type mockAnnouncementRepository struct {
	mu        sync.Mutex
	anns      []*domain.Announcement
	createErr error
	listed    []*domain.AnnouncementWithEvent
	listErr   error
}

func (m *mockAnnouncementRepository) Create(ctx context.Context, ann *domain.Announcement) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ann.ID = fmt.Sprintf("ann-%d", len(m.anns)+1)
	m.anns = append(m.anns, ann)
	return nil
}

func (m *mockAnnouncementRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.AnnouncementWithEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

func (m *mockAnnouncementRepository) ListForUser(ctx context.Context, userID string) ([]*domain.AnnouncementWithEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}
