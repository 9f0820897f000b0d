package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecotrackth/ecotrack-backend/internal/cron"
	"github.com/ecotrackth/ecotrack-backend/internal/notify"
	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/internal/toast"
	"github.com/ecotrackth/ecotrack-backend/internal/waste"
	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/db"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/metrics"
	"github.com/ecotrackth/ecotrack-backend/pkg/migrate"
	"github.com/ecotrackth/ecotrack-backend/pkg/redis"
)

const lockKeyFormat = "et:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	location := cfg.App.Location()

	prefsRepo := preferences.NewRepository(dbClient.DB())
	prefsService, err := preferences.NewService(prefsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create preferences service", err)
		os.Exit(1)
	}

	// This binary serves no HTTP traffic; toasts it produces cross to the
	// API process through the shared Redis feed.
	toastRelay, err := toast.NewRelay(redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create toast relay", err)
		os.Exit(1)
	}

	notifyRepo := notify.NewRepository(dbClient.DB())
	wasteRepo := waste.NewRepository(dbClient.DB())
	sender := notify.NewLogSender(logg)
	notifyMetrics := metrics.NewNotifyMetrics(prometheus.DefaultRegisterer)

	dispatcher, err := notify.NewDispatcher(notify.DispatcherParams{
		Repo:     notifyRepo,
		Prefs:    prefsService,
		Entries:  wasteRepo,
		Sender:   sender,
		Toasts:   toastRelay,
		Counter:  redisClient,
		Metrics:  notifyMetrics,
		Logger:   logg,
		Config:   cfg.Notify,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	notifyService, err := notify.NewService(notify.ServiceParams{
		Repo:     notifyRepo,
		Prefs:    prefsService,
		Sender:   sender,
		Toasts:   toastRelay,
		Counter:  redisClient,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	dispatchJob, err := cron.NewDispatchJob(cron.DispatchJobParams{
		Logger:     logg,
		Dispatcher: dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch job", err)
		os.Exit(1)
	}

	rebuildJob, err := cron.NewScheduleRebuildJob(cron.ScheduleRebuildJobParams{
		Logger:    logg,
		Prefs:     prefsRepo,
		Rebuilder: notifyService,
		BatchSize: cfg.Notify.RebuildBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create schedule rebuild job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewRetentionJob(cron.RetentionJobParams{
		Logger:        logg,
		Purger:        notifyRepo,
		RetentionDays: cfg.Retention.DeliveryLogDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(dispatchJob, rebuildJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Notify.DispatchInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")


	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
