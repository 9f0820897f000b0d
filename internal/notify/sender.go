package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// Sender delivers a notification to the device's platform channel. The wire
// to an actual push provider lives behind this interface; dispatch logic
// only cares that Send either succeeds or returns an error to retry.
type Sender interface {
	Send(ctx context.Context, deviceID uuid.UUID, notification models.ScheduledNotification) error
}

// LogSender writes deliveries to the structured log instead of a push
// provider. It backs local development and the demo deployment.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender returns a Sender that only logs.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, deviceID uuid.UUID, notification models.ScheduledNotification) error {
	fields := map[string]any{
		"device_id": deviceID.String(),
		"kind":      string(notification.Kind),
		"tag":       notification.Tag,
		"title":     notification.Title,
	}
	if notification.SoundEffect != nil {
		if path, ok := ResolveSound(*notification.SoundEffect); ok {
			fields["sound"] = path
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "notification delivered")
	return nil
}
