// Package http wires controllers, middleware, and routes into the
// application's HTTP surface.
package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	announcementController *controllers.AnnouncementController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	organizer := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleOrganizer)(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events (public reads)
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)

	// Events (organizer)
	mux.HandleFunc("POST /events", organizer(eventController.CreateEvent))
	mux.HandleFunc("GET /organizer/events", organizer(eventController.ListMyEvents))
	mux.HandleFunc("PUT /events/{eventID}/start", organizer(eventController.StartEvent))
	mux.HandleFunc("PUT /events/{eventID}/cancel", organizer(eventController.CancelEvent))
	mux.HandleFunc("DELETE /events/{eventID}", organizer(eventController.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/participants", organizer(eventController.ListParticipants))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrationController.Register))
	mux.HandleFunc("POST /registrations/{registrationID}/payment", auth(registrationController.ConfirmPayment))
	mux.HandleFunc("DELETE /registrations/{registrationID}", auth(registrationController.CancelRegistration))
	mux.HandleFunc("GET /attendee/registrations", auth(registrationController.ListMyRegistrations))
	mux.HandleFunc("GET /registrations/{registrationID}/ticket.png", auth(registrationController.TicketQR))

	// Announcements
	mux.HandleFunc("POST /announcements", organizer(announcementController.Publish))
	mux.HandleFunc("GET /organizer/announcements", organizer(announcementController.ListMine))
	mux.HandleFunc("GET /attendee/announcements", auth(announcementController.ListForAttendee))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
