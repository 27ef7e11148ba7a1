package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"eventdesk/config"
	_ "eventdesk/docs"
	"eventdesk/internal/adapters/auth"
	"eventdesk/internal/adapters/email"
	"eventdesk/internal/adapters/qr"
	"eventdesk/internal/adapters/storage"
	httpdelivery "eventdesk/internal/delivery/http"
	"eventdesk/internal/delivery/http/controllers"
	"eventdesk/internal/delivery/http/middleware"
	"eventdesk/internal/delivery/http/pages"
	"eventdesk/internal/domain"
	"eventdesk/internal/repository/postgres"
	"eventdesk/internal/repository/redis"
	"eventdesk/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title eventdesk API
// @version 1.0
// @description Event registration and admin management service.
// @BasePath /
func main() {
	cfg := config.MustLoad()
	logger := config.NewLogger()
	logger.Info("starting eventdesk", "env", cfg.Environment, "port", cfg.Port)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)

	var sessions domain.SessionStore
	if cfg.SessionStoreKind == "redis" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to ping redis", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer client.Close()
		sessions = redis.NewSessionStore(client)
	} else {
		sessions = postgres.NewSessionRepository(db)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	imageStoreConfig := storage.ImageStoreConfig{
		Provider:      cfg.ImageStoreKind,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
		S3: storage.S3Config{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}
	images, err := storage.NewImageStore(imageStoreConfig)
	if err != nil {
		logger.Error("failed to create image store", "err", err)
		os.Exit(1)
	}

	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	ticketIssuer, ticketVerifier := auth.NewJWTTicketSigner(cfg.TicketSecret)
	qrGenerator := qr.NewGenerator()

	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	userService := services.NewUserService(userRepo, hasher, serviceTimeout)
	eventService := services.NewEventService(eventRepo, userRepo, images, serviceTimeout)
	authService := services.NewAuthService(userRepo, sessions, hasher, cfg.SessionTTL, serviceTimeout)
	registrationService := services.NewRegistrationService(
		registrationRepo,
		eventRepo,
		userRepo,
		emailService,
		ticketIssuer,
		ticketVerifier,
		qrGenerator,
		cfg.TicketTTL,
		serviceTimeout,
	)

	authController := controllers.NewAuthController(logger, authService, userService, config.SessionCookieName, cfg.SessionCookieSecure)
	userController := controllers.NewUserController(logger, userService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	site := pages.NewPages(
		logger,
		authService,
		userService,
		eventService,
		registrationService,
		config.SessionCookieName,
		cfg.SessionCookieSecure,
		storage.PublicBaseURL(imageStoreConfig),
	)

	router := httpdelivery.NewRouter(
		logger,
		sessions,
		userRepo,
		config.SessionCookieName,
		authController,
		userController,
		eventController,
		registrationController,
		site,
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepSessions(sweepCtx, logger, sessions)

	var handler http.Handler = router
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errChan:
		logger.Error("server failed", "err", err)
		os.Exit(1)
	case sig := <-stopChan:
		logger.Info("stopping eventdesk", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
		os.Exit(1)
	}
	logger.Info("eventdesk stopped")
}

// sweepSessions deletes expired sessions every hour. The Redis store expires
// keys itself, so its sweep is a no-op.
func sweepSessions(ctx context.Context, logger *slog.Logger, sessions domain.SessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				logger.Info("session sweep", "deleted", n)
			}
		}
	}
}
