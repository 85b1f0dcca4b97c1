package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// PublishAnnouncementRequest is the request body for POST /announcements.
type PublishAnnouncementRequest struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Validate implements Validator.
func (p PublishAnnouncementRequest) Validate() []string {
	var errs []string
	if !uuidRegex.MatchString(p.EventID) {
		errs = append(errs, "event_id must be a valid UUID")
	}
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(p.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// PublishAnnouncementResponse carries the stored announcement and the
// delivery report for its fan-out.
type PublishAnnouncementResponse struct {
	Announcement *domain.Announcement   `json:"announcement"`
	Report       *domain.DeliveryReport `json:"report"`
}

type AnnouncementController struct {
	Logger  *slog.Logger
	Service domain.AnnouncementService
}

func NewAnnouncementController(logger *slog.Logger, svc domain.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *AnnouncementController) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Publish godoc
// @Summary Publish an announcement
// @Description Store an announcement for an event and email it to every current registrant, paid or not. Only the owning organizer may publish. The announcement is stored exactly once regardless of delivery failures; the report carries per-recipient results.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PublishAnnouncementRequest true "Announcement data"
// @Success 201 {object} helpers.APIResponse "data contains the announcement and the delivery report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /announcements [post]
func (c *AnnouncementController) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishAnnouncementRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ann, report, err := c.Service.Publish(r.Context(), req.EventID, userID, req.Title, req.Message)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, PublishAnnouncementResponse{Announcement: ann, Report: report})
}

// ListMine godoc
// @Summary List announcements I published
// @Description List announcements across all events owned by the authenticated organizer, newest first.
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains announcements with their event titles"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/announcements [get]
func (c *AnnouncementController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	anns, err := c.Service.ListByOrganizer(r.Context(), userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, anns)
}

// ListForAttendee godoc
// @Summary List announcements for my registrations
// @Description List announcements for events the authenticated user currently holds a registration for. Cancelling a registration removes that event's announcements from the list.
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains announcements with their event titles"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/announcements [get]
func (c *AnnouncementController) ListForAttendee(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	anns, err := c.Service.ListForAttendee(r.Context(), userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, anns)
}
