package controllers

import (
	"net/http"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/internal/gamification"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// GetGamificationSummary returns the device's credits, level, streak, and
// unlocked achievements in one document.
func GetGamificationSummary(svc gamification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gamification service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
