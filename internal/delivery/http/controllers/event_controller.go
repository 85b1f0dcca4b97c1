package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	h "gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	IsPaid      bool      `json:"is_paid"`
	Price       float64   `json:"price"`
	MaxSeats    int       `json:"max_seats"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if c.MaxSeats <= 0 {
		errs = append(errs, "max_seats must be positive")
	}
	if c.IsPaid && c.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// EventListResponse is the paginated payload for GET /events.
type EventListResponse struct {
	Events     []*domain.Event   `json:"events"`
	Pagination h.PaginationMeta  `json:"pagination"`
}

// StartEventResponse carries the started event and the notification
// delivery report for PUT /events/{eventID}/start.
type StartEventResponse struct {
	Event  *domain.Event          `json:"event"`
	Report *domain.DeliveryReport `json:"report"`
}

// ParticipantListResponse is the paginated payload for GET /events/{eventID}/participants.
type ParticipantListResponse struct {
	Participants []*domain.Participant `json:"participants"`
	Pagination   h.PaginationMeta      `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// eventIDFromPath validates the eventID path segment. Writes a 400 and
// returns false on malformed IDs.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid event id")
		return "", false
	}
	return eventID, true
}

// requireUserID pulls the authenticated user from the context. Writes a
// 401 and returns false if the middleware did not set one.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
// Unrecognized errors are logged and become 500s.
func (c *EventController) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new event with finite seating. The authenticated organizer becomes the owner. New events start in status "upcoming".
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event := domain.NewEvent(
		strings.TrimSpace(req.Title), req.Description, req.Category, req.Location,
		req.Date, req.IsPaid, req.Price, req.MaxSeats, userID, time.Now(),
	)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description List public events with optional search (matches title and description) and category filter. Paginated.
// @Tags events
// @Produce json
// @Param search query string false "Search term"
// @Param category query string false "Category filter"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	filter := domain.EventFilter{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     events,
		Pagination: h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyEvents godoc
// @Summary List my events
// @Description List events created by the authenticated organizer.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the organizer's events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListEventsByOrganizer(r.Context(), userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// StartEvent godoc
// @Summary Start an event
// @Description Transition an upcoming event to ongoing and notify every paid registrant by email. Only the owning organizer may start an event. The report lists attempted, delivered, and failed recipients; delivery failures do not block the transition.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event and the delivery report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not in a startable status)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/start [put]
func (c *EventController) StartEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, report, err := c.Service.StartEvent(r.Context(), eventID, userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, StartEventResponse{Event: event, Report: report})
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Transition an upcoming event to cancelled. Only the owning organizer may cancel. Cancelling an ongoing event is allowed only when the server is configured for it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not in a cancellable status)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/cancel [put]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.CancelEvent(r.Context(), eventID, userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and its registrations and announcements. Only the owning organizer may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, nil)
}

// ListParticipants godoc
// @Summary List event participants
// @Description List registrants of an event with their payment status and ticket codes. Only the owning organizer may view participants. Paginated.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains participants and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants [get]
func (c *EventController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := h.ParsePagination(r)
	participants, total, err := c.Service.ListParticipants(r.Context(), eventID, userID, params)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ParticipantListResponse{
		Participants: participants,
		Pagination:   h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
