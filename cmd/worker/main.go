package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/farmledger/farmledger/internal/app"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/notifications"
	"github.com/farmledger/farmledger/internal/observability"
	"github.com/farmledger/farmledger/internal/platform/db"
	"github.com/farmledger/farmledger/jobs"
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

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("load timezone", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	inbox := notifications.NewService(notifications.NewRepository(pool), nil, logger)
	reminderJob := jobs.NewHarvestReminderJob(
		farmdb.New(pool),
		jobs.MultiNotifier{
			jobs.LogNotifier{Logger: logger},
			jobs.InboxNotifier{Inbox: inbox, Logger: logger},
		},
		logger,
		metrics.Jobs(),
		cfg.HarvestReminderDays,
		loc,
	)

	sweepTask, err := jobs.NewHarvestSweepTask(jobs.HarvestSweepPayload{DaysAhead: cfg.HarvestReminderDays})
	if err != nil {
		logger.Error("build harvest sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Location:    loc,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskHarvestReminderSweep, Handler: reminderJob.HandleSweep},
			{Type: jobs.TaskHarvestReminder, Handler: reminderJob.HandleReminder},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.HarvestReminderCron, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting worker", slog.String("cron", cfg.HarvestReminderCron), slog.Int("days_ahead", cfg.HarvestReminderDays))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
