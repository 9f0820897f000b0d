package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/db"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-EcoTrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}

		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
			checks["redis"] = "ok"
		}

		w.Header().Set("X-EcoTrack-Env", cfg.App.Env)
		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
