package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/api/validators"
	"github.com/ecotrackth/ecotrack-backend/internal/toast"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// toastQueue is the slice of toast.Manager the HTTP surface needs.
type toastQueue interface {
	Enqueue(deviceID uuid.UUID, kind enums.ToastType, title, message string, opts toast.Options) uuid.UUID
	Visible(deviceID uuid.UUID) []toast.Toast
	Queued(deviceID uuid.UUID) []toast.Toast
	Dismiss(deviceID, toastID uuid.UUID) bool
}

type createToastRequest struct {
	Type        string         `json:"type" validate:"required"`
	Title       string         `json:"title" validate:"required,max=120"`
	Message     string         `json:"message" validate:"required,max=500"`
	DurationMs  int64          `json:"durationMs" validate:"omitempty,min=100,max=60000"`
	AutoClose   *bool          `json:"autoClose"`
	SoundEffect *string        `json:"soundEffect"`
	Actions     []toast.Action `json:"actions" validate:"omitempty,max=3"`
}

// ListToasts returns the device's visible window plus everything queued.
func ListToasts(queue toastQueue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if queue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast queue unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"visible": queue.Visible(deviceID),
			"queued":  queue.Queued(deviceID),
		})
	}
}

// CreateToast enqueues a client-originated toast.
func CreateToast(queue toastQueue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if queue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast queue unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createToastRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseToastType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid toast type"))
			return
		}

		opts := toast.Options{
			AutoClose:   body.AutoClose,
			SoundEffect: body.SoundEffect,
			Actions:     body.Actions,
		}
		if body.DurationMs > 0 {
			opts.Duration = time.Duration(body.DurationMs) * time.Millisecond
		}

		id := queue.Enqueue(deviceID, kind, body.Title, body.Message, opts)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// DismissToast starts the exit animation for one toast. Dismissing a toast
// that is already exiting or unknown reports dismissed=false.
func DismissToast(queue toastQueue, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if queue == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "toast queue unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		toastID, err := uuid.Parse(chi.URLParam(r, "toastId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid toast id"))
			return
		}

		responses.WriteSuccess(w, map[string]any{"dismissed": queue.Dismiss(deviceID, toastID)})
	}
}
