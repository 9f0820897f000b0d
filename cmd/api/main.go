package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecotrackth/ecotrack-backend/api/routes"
	"github.com/ecotrackth/ecotrack-backend/internal/classifier"
	"github.com/ecotrackth/ecotrack-backend/internal/gamification"
	"github.com/ecotrackth/ecotrack-backend/internal/notify"
	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/internal/questionnaire"
	"github.com/ecotrackth/ecotrack-backend/internal/toast"
	"github.com/ecotrackth/ecotrack-backend/internal/waste"
	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/db"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/migrate"
	"github.com/ecotrackth/ecotrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	prefsService, err := preferences.NewService(preferences.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create preferences service", err)
		os.Exit(1)
	}

	toastManager, err := toast.NewManager(cfg.Toast, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create toast manager", err)
		os.Exit(1)
	}

	sender := notify.NewLogSender(logg)

	notifyService, err := notify.NewService(notify.ServiceParams{
		Repo:     notify.NewRepository(dbClient.DB()),
		Prefs:    prefsService,
		Sender:   sender,
		Toasts:   toastManager,
		Counter:  redisClient,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	catalog, err := waste.LoadCatalog(cfg.Data.WasteCategoriesPath)
	if err != nil {
		logg.Error(context.Background(), "failed to load waste catalog", err)
		os.Exit(1)
	}

	wasteRepo := waste.NewRepository(dbClient.DB())

	gamificationService, err := gamification.NewService(gamification.ServiceParams{
		Repo:     gamification.NewRepository(dbClient.DB()),
		Prefs:    prefsService,
		Variety:  wasteRepo,
		Toasts:   toastManager,
		Sender:   sender,
		Logger:   logg,
		Location: location,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create gamification service", err)
		os.Exit(1)
	}

	wasteService, err := waste.NewService(waste.ServiceParams{
		Repo:     wasteRepo,
		Catalog:  catalog,
		Recorder: gamificationService,
		Recent:   redisClient,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create waste service", err)
		os.Exit(1)
	}

	wasteClassifier, err := classifier.NewKeyword(catalog.ClassifierCandidates())
	if err != nil {
		logg.Error(context.Background(), "failed to create classifier", err)
		os.Exit(1)
	}

	wasteSimulator, err := classifier.NewRandom(catalog.ClassifierCandidates(), time.Now().UnixNano())
	if err != nil {
		logg.Error(context.Background(), "failed to create demo classifier", err)
		os.Exit(1)
	}

	dataset, err := questionnaire.Load(cfg.Data.QuestionnairePath)
	if err != nil {
		logg.Error(context.Background(), "failed to load questionnaire", err)
		os.Exit(1)
	}
	questionnaireService, err := questionnaire.NewService(dataset)
	if err != nil {
		logg.Error(context.Background(), "failed to create questionnaire service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	toastManager.AttachPending(redisClient)
	go toastManager.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			redisClient,
			prefsService,
			notifyService,
			toastManager,
			wasteService,
			wasteClassifier,
			wasteSimulator,
			gamificationService,
			questionnaireService,
		),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
