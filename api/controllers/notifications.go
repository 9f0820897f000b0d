package controllers

import (
	"net/http"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/api/validators"
	"github.com/ecotrackth/ecotrack-backend/internal/notify"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// GetSchedule returns the device's pending scheduled notifications.
func GetSchedule(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		schedule, err := svc.Schedule(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": schedule})
	}
}

// SendTestNotification pushes an immediate test notification through the
// same gate real deliveries pass, reporting whether it was suppressed.
func SendTestNotification(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendTest(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetNotificationHistory returns recent delivery log entries for the device.
func GetNotificationHistory(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), deviceID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": history})
	}
}
