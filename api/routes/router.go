package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ecotrackth/ecotrack-backend/api/controllers"
	"github.com/ecotrackth/ecotrack-backend/api/middleware"
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
	"github.com/ecotrackth/ecotrack-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idemStore redis.IdempotencyStore,
	rateLimiter redis.RateLimiter,
	preferencesService preferences.Service,
	notifyService notify.Service,
	toastManager *toast.Manager,
	wasteService waste.Service,
	wasteClassifier classifier.Classifier,
	wasteSimulator classifier.Classifier,
	gamificationService gamification.Service,
	questionnaireService questionnaire.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Onboarding questionnaire stays public: it runs before the app has a
	// device identity to present.
	r.Route("/api/questions", func(r chi.Router) {
		r.Get("/", controllers.GetQuestionnaire(questionnaireService, logg))
		r.Post("/", controllers.ScoreQuestionnaire(questionnaireService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.DeviceContext(logg))
		r.Use(middleware.RateLimit(
			middleware.NewRateLimitPolicy(cfg.RateLimit.Window, cfg.RateLimit.Limit),
			rateLimiter, logg,
		))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", controllers.GetPreferences(preferencesService, logg))
			r.Put("/", controllers.UpdatePreferences(preferencesService, notifyService, logg))
			r.Post("/reset", controllers.ResetPreferences(preferencesService, notifyService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/schedule", controllers.GetSchedule(notifyService, logg))
			r.Post("/test", controllers.SendTestNotification(notifyService, logg))
			r.Get("/history", controllers.GetNotificationHistory(notifyService, logg))
		})

		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", controllers.ListToasts(toastManager, logg))
			r.Post("/", controllers.CreateToast(toastManager, logg))
			r.Delete("/{toastId}", controllers.DismissToast(toastManager, logg))
		})

		r.Route("/waste", func(r chi.Router) {
			r.Get("/categories", controllers.ListWasteCategories(wasteService, logg))
			r.Get("/recent", controllers.RecentWasteCategories(wasteService, logg))
			r.Get("/entries", controllers.ListWasteEntries(wasteService, logg))
			r.Post("/entries", controllers.CreateWasteEntry(wasteService, logg))
			r.Post("/classify", controllers.ClassifyWaste(wasteService, wasteClassifier, wasteSimulator, logg))
		})

		r.Get("/gamification/summary", controllers.GetGamificationSummary(gamificationService, logg))
	})

	return r
}
