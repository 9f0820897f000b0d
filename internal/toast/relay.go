package toast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// relayRecord is the wire form of a toast crossing process boundaries. The
// cron worker pushes records, the API process's Manager drains them.
type relayRecord struct {
	DeviceID    string  `json:"deviceId"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
	SoundEffect *string `json:"soundEffect,omitempty"`
}

const relayPushTimeout = 2 * time.Second

type pendingStore interface {
	PushPendingToast(ctx context.Context, payload string) error
}

// Relay forwards toast pushes through the shared feed so the API process's
// Manager can surface them. It stands in for a local Manager in binaries
// that have no HTTP surface of their own.
type Relay struct {
	store pendingStore
	logg  *logger.Logger
}

// NewRelay wires the relay to its feed.
func NewRelay(store pendingStore, logg *logger.Logger) (*Relay, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pending toast store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Relay{store: store, logg: logg}, nil
}

// Push serializes the toast into the feed. Failures are logged and dropped;
// a toast is never worth failing a dispatch over.
func (r *Relay) Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string) {
	payload, err := json.Marshal(relayRecord{
		DeviceID:    deviceID.String(),
		Type:        string(kind),
		Title:       title,
		Message:     message,
		SoundEffect: soundEffect,
	})
	if err != nil {
		r.logg.Error(context.Background(), "toast relay marshal failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayPushTimeout)
	defer cancel()
	if err := r.store.PushPendingToast(ctx, string(payload)); err != nil {
		r.logg.Error(ctx, "toast relay push failed", err)
	}
}
