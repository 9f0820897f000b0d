package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
)

// Service exposes schedule reads and on-demand sends to the API layer.
type Service interface {
	Schedule(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
	Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
	SendTest(ctx context.Context, deviceID uuid.UUID) (*TestResult, error)
	History(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error)
}

// TestResult reports what happened to a requested test notification.
type TestResult struct {
	Delivered        bool   `json:"delivered"`
	SuppressedReason string `json:"suppressedReason,omitempty"`
}

type service struct {
	repo    Repository
	prefs   preferences.Service
	sender  Sender
	toasts  toastSink
	counter sentCounter
	loc     *time.Location

	now func() time.Time
}

// ServiceParams bundles the dependencies required to build a notify service.
type ServiceParams struct {
	Repo     Repository
	Prefs    preferences.Service
	Sender   Sender
	Toasts   toastSink
	Counter  sentCounter
	Location *time.Location
	Now      func() time.Time
}

// NewService wires notify dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notify repository required")
	case params.Prefs == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences service required")
	case params.Sender == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sender required")
	case params.Counter == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sent counter required")
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:    params.Repo,
		prefs:   params.Prefs,
		sender:  params.Sender,
		toasts:  params.Toasts,
		counter: params.Counter,
		loc:     params.Location,
		now:     params.Now,
	}, nil
}

func (s *service) Schedule(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	rows, err := s.repo.ForDevice(ctx, deviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	return rows, nil
}

// Rebuild recomputes the device's whole schedule from current preferences
// and swaps it in. Called after every preference write; also run
// periodically so drifted schedules self-heal.
func (s *service) Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	prefs, err := s.prefs.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	items := BuildSchedule(s.now().In(s.loc), *prefs)
	if err := s.repo.ReplaceDeviceSchedule(ctx, deviceID, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace schedule")
	}
	return items, nil
}

// SendTest pushes a one-off test notification through the same gate as
// scheduled sends and reports the outcome instead of burying it in the log.
func (s *service) SendTest(ctx context.Context, deviceID uuid.UUID) (*TestResult, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	prefs, err := s.prefs.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	day := now.Format(localDayFormat)
	sent, err := s.counter.SentToday(ctx, deviceID.String(), day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read sent counter")
	}

	item := models.ScheduledNotification{
		ID:           uuid.New(),
		DeviceID:     deviceID,
		Kind:         enums.NotificationKindTest,
		Title:        "Test notification 🔔",
		Body:         "Notifications are working. This is how reminders will look.",
		ScheduledFor: now,
		Recurring:    enums.RecurrenceNone,
		Tag:          "test-notification",
		SoundEffect:  reminderSound(*prefs),
		CreatedAt:    now,
	}

	allowed, reason := CanSend(now, *prefs, sent)
	result := &TestResult{Delivered: allowed, SuppressedReason: reason}
	if err := s.repo.LogDelivery(ctx, &models.DeliveryLog{
		ID:               uuid.New(),
		DeviceID:         deviceID,
		Kind:             item.Kind,
		Tag:              item.Tag,
		Title:            item.Title,
		Delivered:        allowed,
		SuppressedReason: reason,
		CreatedAt:        s.now(),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write delivery log")
	}
	if !allowed {
		return result, nil
	}

	if err := s.sender.Send(ctx, deviceID, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send test notification")
	}
	if _, err := s.counter.IncrSentToday(ctx, deviceID.String(), day); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump sent counter")
	}
	if s.toasts != nil {
		s.toasts.Push(deviceID, enums.ToastTypeInfo, item.Title, item.Body, item.SoundEffect)
	}
	return result, nil
}

func (s *service) History(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	rows, err := s.repo.DeliveryHistory(ctx, deviceID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery history")
	}
	return rows, nil
}
