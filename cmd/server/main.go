// @title Gatherly API
// @version 1.0
// @description Event registration and ticketing service: capacity-safe seat booking, payment confirmation, event lifecycle, and attendee notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"gatherly/config"
	_ "gatherly/docs"
	"gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/email"
	"gatherly/internal/adapters/ticket"
	delivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	announcementRepo := postgres.NewAnnouncementRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureTLS,
		},
	}, logger)
	if err != nil {
		logger.Error("create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	qr := ticket.NewQRRenderer()

	// Services
	emailService := services.NewEmailService(mailer, renderer, logger)
	issuer := services.NewTicketIssuer(registrationRepo)
	authService := services.NewAuthService(userRepo, hasher, jwtCodec, cfg.TokenExpiry)
	eventService := services.NewEventService(eventRepo, registrationRepo, emailService, logger, cfg.AllowCancelOngoing, serviceTimeout)
	registrationService := services.NewRegistrationService(eventRepo, registrationRepo, userRepo, issuer, emailService, logger, serviceTimeout)
	announcementService := services.NewAnnouncementService(announcementRepo, eventRepo, registrationRepo, emailService, logger, serviceTimeout)

	// Controllers and routes
	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService, qr)
	announcementController := controllers.NewAnnouncementController(logger, announcementService)

	mux := delivery.NewRouter(logger, jwtCodec, authController, eventController, registrationController, announcementController)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Periodic sweep: ongoing events whose date has passed become completed.
	go func() {
		ticker := time.NewTicker(cfg.CompleteSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := eventService.CompleteElapsedEvents(ctx)
				if err != nil {
					logger.Error("complete elapsed events", "err", err)
					continue
				}
				if n > 0 {
					logger.Info("completed elapsed events", "count", n)
				}
			}
		}
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
