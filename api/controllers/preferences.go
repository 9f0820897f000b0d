package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/api/middleware"
	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/api/validators"
	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// scheduleRebuilder regenerates the notification schedule after a
// preference change so stale fire times never linger.
type scheduleRebuilder interface {
	Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
}

// GetPreferences returns the device's preference document, creating
// defaults on first read.
func GetPreferences(svc preferences.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.Get(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

// UpdatePreferences replaces the preference document whole and rebuilds the
// device's schedule from the new settings.
func UpdatePreferences(svc preferences.Service, rebuilder scheduleRebuilder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body models.NotificationPreference
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.Update(r.Context(), deviceID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rebuildSchedule(r.Context(), rebuilder, deviceID, logg)
		responses.WriteSuccess(w, prefs)
	}
}

// ResetPreferences restores defaults and rebuilds the schedule.
func ResetPreferences(svc preferences.Service, rebuilder scheduleRebuilder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preferences service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.Reset(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rebuildSchedule(r.Context(), rebuilder, deviceID, logg)
		responses.WriteSuccess(w, prefs)
	}
}

// rebuildSchedule is best-effort: the preference write already landed, so a
// rebuild failure is logged and left for the periodic rebuild job.
func rebuildSchedule(ctx context.Context, rebuilder scheduleRebuilder, deviceID uuid.UUID, logg *logger.Logger) {
	if rebuilder == nil {
		return
	}
	if _, err := rebuilder.Rebuild(ctx, deviceID); err != nil && logg != nil {
		logg.Error(ctx, "preferences.schedule_rebuild_failed", err)
	}
}

func requestDeviceID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.DeviceIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "device context missing")
	}
	deviceID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid device id")
	}
	return deviceID, nil
}
