package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/app"
	jobmetrics "github.com/iradwatkins/taxgeniusprov1-sub000/internal/jobs"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/cache"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/platform/db"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/users"
	"github.com/iradwatkins/taxgeniusprov1-sub000/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	metrics := jobmetrics.NewMetrics(prometheus.DefaultRegisterer)
	mailer := jobs.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	usersRepo := users.NewRepository(pool)

	referralsRepo := referrals.NewRepository(pool)
	clicks := referrals.NewClickStore(redisClient)
	referralsService := referrals.NewService(referralsRepo, clicks, cfg.ReferralBaseURL)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: jobs.NewSendEmailHandler(mailer, metrics, logger)},
			{Type: jobs.TaskTypeDocumentUploaded, Handler: jobs.NewDocumentUploadedHandler(usersRepo, mailer, metrics, logger)},
			{Type: jobs.TaskTypeCommissionRollup, Handler: jobs.NewCommissionRollupHandler(referralsService, metrics, logger)},
			{Type: jobs.TaskTypeLeadFollowup, Handler: jobs.NewLeadFollowupHandler(usersRepo, mailer, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: jobs.NewCommissionRollupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 14 * * *", Task: jobs.NewLeadFollowupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
