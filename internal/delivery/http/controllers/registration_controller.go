package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// QRRenderer renders a ticket code as a PNG image.
type QRRenderer interface {
	RenderPNG(code string) ([]byte, error)
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
	QR      QRRenderer
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, qr QRRenderer) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
		QR:      qr,
	}
}

func registrationIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("registrationID")
	if !uuidRegex.MatchString(id) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid registration id")
		return "", false
	}
	return id, true
}

func (c *RegistrationController) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrEventFull):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is full")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "already registered for this event")
	case errors.Is(err, domain.ErrEventNotOpen):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is not open for registration")
	case errors.Is(err, domain.ErrAlreadyPaid):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "registration is already paid")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}

// Register godoc
// @Summary Register for an event
// @Description Book a seat at an open event for the authenticated user. Free events return a paid registration with a ticket code; paid events return an unpaid registration to be confirmed via the payment endpoint. A user may hold at most one registration per event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, closed, or already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.Register(r.Context(), eventID, userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ConfirmPayment godoc
// @Summary Confirm payment for a registration
// @Description Mark an unpaid registration as paid and issue its ticket code. Only the owning attendee may confirm. Confirming twice returns a conflict; at most one ticket code is ever issued.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the paid registration with its ticket code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already paid)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/payment [post]
func (c *RegistrationController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := registrationIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.ConfirmPayment(r.Context(), registrationID, userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, reg)
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Remove the registration and release its seat for others. Only the owning attendee may cancel. The freed seat is immediately available to new registrants.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is null"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID} [delete]
func (c *RegistrationController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := registrationIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.CancelRegistration(r.Context(), registrationID, userID); err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, nil)
}

// ListMyRegistrations godoc
// @Summary List my registrations
// @Description List the authenticated user's registrations, each with its event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains registrations with their events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	regs, err := c.Service.ListMyRegistrations(r.Context(), userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, regs)
}

// TicketQR godoc
// @Summary Get a ticket QR image
// @Description Render the registration's ticket code as a PNG QR image for check-in. Only available once the registration is paid.
// @Tags registrations
// @Produce png
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 200 {file} file "PNG image"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID}/ticket.png [get]
func (c *RegistrationController) TicketQR(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := registrationIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.GetRegistration(r.Context(), registrationID, userID)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	if reg.TicketCode == "" {
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "no ticket issued for this registration")
		return
	}
	png, err := c.QR.RenderPNG(reg.TicketCode)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "qr render failed", "registration_id", registrationID, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not render ticket")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
