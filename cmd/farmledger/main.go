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

	"github.com/farmledger/farmledger/cmd/farmledger/cli"
	"github.com/farmledger/farmledger/internal/analytics"
	analyticsdb "github.com/farmledger/farmledger/internal/analytics/db"
	analytichttp "github.com/farmledger/farmledger/internal/analytics/http"
	"github.com/farmledger/farmledger/internal/app"
	"github.com/farmledger/farmledger/internal/auth"
	"github.com/farmledger/farmledger/internal/crops"
	"github.com/farmledger/farmledger/internal/diagnoses"
	"github.com/farmledger/farmledger/internal/diseases"
	"github.com/farmledger/farmledger/internal/expenditures"
	farmdb "github.com/farmledger/farmledger/internal/farm/db"
	"github.com/farmledger/farmledger/internal/notifications"
	"github.com/farmledger/farmledger/internal/observability"
	"github.com/farmledger/farmledger/internal/platform/cache"
	"github.com/farmledger/farmledger/internal/platform/db"
	"github.com/farmledger/farmledger/internal/sales"
	"github.com/farmledger/farmledger/internal/shared"
	"github.com/farmledger/farmledger/jobs"
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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(redisOpts)
		defer jobsCLI.Close()
		if err := cli.RunJobs(ctx, jobsCLI, os.Args[2:], os.Stdout); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(2)
		}
		return
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("load timezone", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessions := shared.NewSessionStore(redisClient, cfg.SessionTTL)
	authService := auth.NewService(auth.NewRepository(dbpool), sessions, logger)
	authHandler := auth.NewHandler(logger, authService)

	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	cropService := crops.NewService(crops.NewRepository(dbpool), jobClient, logger, loc)
	saleService := sales.NewService(sales.NewRepository(dbpool), logger, loc)
	expenditureService := expenditures.NewService(expenditures.NewRepository(dbpool), logger, loc)
	diagnosisService := diagnoses.NewService(diagnoses.NewRepository(dbpool), logger)
	notificationService := notifications.NewService(notifications.NewRepository(dbpool), jobClient, logger)
	diseaseService := diseases.NewService(farmdb.New(dbpool))

	analyticsService := analytics.NewService(analyticsdb.NewStore(dbpool), loc)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthService:         authService,
		AuthHandler:         authHandler,
		CropsHandler:        crops.NewHandler(logger, cropService),
		SalesHandler:        sales.NewHandler(logger, saleService),
		ExpendituresHandler: expenditures.NewHandler(logger, expenditureService),
		DiagnosesHandler:    diagnoses.NewHandler(logger, diagnosisService),
		NotificationHandler: notifications.NewHandler(logger, notificationService),
		DiseasesHandler:     diseases.NewHandler(logger, diseaseService),
		AnalyticsHandler:    analyticsHandler,
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
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("timezone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
