package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "clubhub-backend/internal/api/http"
	"clubhub-backend/internal/config"
	"clubhub-backend/internal/events"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/payment"
	"clubhub-backend/internal/repository/postgres"
	"clubhub-backend/internal/security"
	"clubhub-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ClubHub Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Payment gateway configuration", "base_url", cfg.PayOS.BaseURL, "return_url", cfg.PayOS.ReturnURL)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Event Publisher
	publisher, err := events.New(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Error("Failed to connect to message broker", "error", err)
		log.Fatalf("Failed to connect to message broker: %v", err)
	}
	defer publisher.Close()

	// Initialize Payment Gateway
	signer, err := payment.NewSigner(cfg.PayOS.ChecksumKey)
	if err != nil {
		logger.Error("Failed to initialize payment signer", "error", err)
		log.Fatalf("Failed to initialize payment signer: %v", err)
	}
	gateway := payment.NewClient(payment.ClientConfig{
		BaseURL:  cfg.PayOS.BaseURL,
		ClientID: cfg.PayOS.ClientID,
		APIKey:   cfg.PayOS.APIKey,
		Timeout:  cfg.PayOS.HTTPTimeout(),
	}, signer)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	notifier := service.NewNotifier(
		store.UserRepository,
		store.ClubRepository,
		store.NotificationRepository,
		emailSvc,
		publisher,
	)
	registrationSvc := service.NewRegistrationService(
		store.TxManager,
		store.RegistrationRepository,
		store.MembershipPackageRepository,
		notifier,
		service.RegistrationConfig{DefaultTermMonths: cfg.Membership.DefaultTermMonths},
	)
	paymentSvc := service.NewPaymentService(
		registrationSvc,
		gateway,
		signer,
		payment.NewOrderCodeGenerator(),
		service.PaymentConfig{
			ReturnURL:  cfg.PayOS.ReturnURL,
			CancelURL:  cfg.PayOS.CancelURL,
			LinkExpiry: cfg.PayOS.LinkExpiry(),
		},
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	if cfg.PayOS.ConfirmWebhookOnStartup {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PayOS.HTTPTimeout())
		if err := paymentSvc.ConfirmWebhookURL(ctx, cfg.PayOS.WebhookURL); err != nil {
			// The gateway keeps the previously confirmed URL, so startup continues.
			logger.Error("Failed to confirm webhook URL", "url", cfg.PayOS.WebhookURL, "error", err)
		} else {
			logger.Info("Webhook URL confirmed", "url", cfg.PayOS.WebhookURL)
		}
		cancel()
	}

	// Initialize HTTP handlers
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	router := httpapi.NewRouter(httpapi.Handlers{
		Health:        httpapi.NewHealthHandler(db),
		Registrations: httpapi.NewRegistrationHandler(registrationSvc),
		Leader:        httpapi.NewLeaderHandler(registrationSvc),
		Payments:      httpapi.NewPaymentHandler(paymentSvc),
		Notifications: httpapi.NewNotificationHandler(noteSvc),
	}, httpapi.NewAuthMiddleware(tokenManager, store.ClubRoleRepository))

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
