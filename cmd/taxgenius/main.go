package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/app"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/auth"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/appointments"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/documents"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/observability"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/cache"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/db"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/returns"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/users"
	"github.com/iradwatkins/taxgeniusprov1-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "taxgenius_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)
	resolver := permissions.NewResolver(logger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, resolver, auditLogger, logger)
	guard := permissions.Middleware{Source: usersService, Logger: logger}

	permissionsHandler := permissions.NewHandler(logger, resolver, usersService)
	usersHandler := users.NewHandler(logger, usersService, guard)

	contactsRepo := contacts.NewRepository(dbpool)
	contactsService := contacts.NewService(contactsRepo)
	contactsHandler := contacts.NewHandler(logger, contactsService, usersService, guard)

	appointmentsRepo := appointments.NewRepository(dbpool)
	appointmentsService := appointments.NewService(appointmentsRepo)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService, usersService, guard)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("build job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	documentsRepo := documents.NewRepository(dbpool)
	documentsService := documents.NewService(documentsRepo, jobClient, logger)
	documentsHandler := documents.NewHandler(logger, documentsService, usersService, guard)

	referralsRepo := referrals.NewRepository(dbpool)
	clicks := referrals.NewClickStore(redisClient)
	referralsService := referrals.NewService(referralsRepo, clicks, cfg.ReferralBaseURL)
	referralsHandler := referrals.NewHandler(logger, referralsService, usersService, guard)

	returnsRepo := returns.NewRepository(dbpool)
	returnsService := returns.NewService(returnsRepo)
	returnsHandler := returns.NewHandler(logger, returnsService, usersService, guard)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		PermissionsHandler:  permissionsHandler,
		UsersHandler:        usersHandler,
		ContactsHandler:     contactsHandler,
		AppointmentsHandler: appointmentsHandler,
		DocumentsHandler:    documentsHandler,
		ReferralsHandler:    referralsHandler,
		ReturnsHandler:      returnsHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
