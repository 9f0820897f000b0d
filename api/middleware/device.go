package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

const deviceIDHeader = "X-Device-Id"

// DeviceContext requires a valid X-Device-Id header and threads the device
// identifier through the request context and log fields.
func DeviceContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(deviceIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "device id header required"))
				return
			}

			deviceID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid device id"))
				return
			}

			ctx := WithDeviceID(r.Context(), deviceID.String())
			if logg != nil {
				ctx = logg.WithDeviceID(ctx, deviceID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
