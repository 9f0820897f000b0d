package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/metrics"
)

// localDayFormat keys the per-day delivered counter. Days roll at local
// midnight in the configured timezone, so the counter resets implicitly.
const localDayFormat = "2006-01-02"

// sentCounter tracks per-device delivered counts for the local calendar day.
type sentCounter interface {
	SentToday(ctx context.Context, deviceID, day string) (int, error)
	IncrSentToday(ctx context.Context, deviceID, day string) (int64, error)
}

// entryChecker reports whether a device logged any waste entry on the given
// local day. Backing implementation is the waste repository.
type entryChecker interface {
	HasEntryOn(ctx context.Context, deviceID uuid.UUID, day time.Time) (bool, error)
}

// toastSink mirrors delivered notifications into the device's in-app toast
// queue.
type toastSink interface {
	Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string)
}

// Dispatcher drains due notifications, consults the gate and writes the
// delivery log. One instance runs inside the cron worker.
type Dispatcher struct {
	repo    Repository
	prefs   preferences.Service
	entries entryChecker
	sender  Sender
	toasts  toastSink
	counter sentCounter
	metrics *metrics.NotifyMetrics
	logg    *logger.Logger
	cfg     config.NotifyConfig
	loc     *time.Location

	now func() time.Time
}

// DispatcherParams bundles the dependencies required to build a Dispatcher.
type DispatcherParams struct {
	Repo     Repository
	Prefs    preferences.Service
	Entries  entryChecker
	Sender   Sender
	Toasts   toastSink
	Counter  sentCounter
	Metrics  *metrics.NotifyMetrics
	Logger   *logger.Logger
	Config   config.NotifyConfig
	Location *time.Location
	Now      func() time.Time
}

// NewDispatcher wires dispatch dependencies.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notify repository required")
	case params.Prefs == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences service required")
	case params.Entries == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "entry checker required")
	case params.Sender == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sender required")
	case params.Counter == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sent counter required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Dispatcher{
		repo:    params.Repo,
		prefs:   params.Prefs,
		entries: params.Entries,
		sender:  params.Sender,
		toasts:  params.Toasts,
		counter: params.Counter,
		metrics: params.Metrics,
		logg:    params.Logger,
		cfg:     params.Config,
		loc:     params.Location,
		now:     params.Now,
	}, nil
}

// DispatchDue processes every notification whose fire time has arrived.
// Individual failures never stop the batch; they are collected and returned
// once the batch is drained.
func (d *Dispatcher) DispatchDue(ctx context.Context, batchSize int) (int, error) {
	now := d.now().In(d.loc)

	due, err := d.repo.Due(ctx, now, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load due notifications")
	}

	delivered := 0
	var errs error
	for _, item := range due {
		ok, err := d.dispatchOne(ctx, now, item)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			delivered++
		}
	}
	return delivered, errs
}

func (d *Dispatcher) dispatchOne(ctx context.Context, now time.Time, item models.ScheduledNotification) (bool, error) {
	ctx = d.logg.WithDeviceID(ctx, item.DeviceID.String())

	prefs, err := d.prefs.Get(ctx, item.DeviceID)
	if err != nil {
		return false, err
	}

	// Preferences may have flipped since the schedule was built; a disabled
	// kind is dropped from the cycle without a delivery log entry.
	if !kindEnabled(*prefs, item.Kind) {
		return false, d.advance(ctx, item)
	}

	day := now.Format(localDayFormat)
	sent, err := d.counter.SentToday(ctx, item.DeviceID.String(), day)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read sent counter")
	}

	if allowed, reason := CanSend(now, *prefs, sent); !allowed {
		return false, d.suppress(ctx, item, reason)
	}

	if item.RequiresNoEntryToday {
		hasEntry, err := d.entries.HasEntryOn(ctx, item.DeviceID, now)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check today's entries")
		}
		if hasEntry {
			return false, d.suppress(ctx, item, ReasonEntryExists)
		}
	}

	if err := d.send(ctx, item); err != nil {
		d.logg.Error(ctx, "notification send failed", err)
		return false, d.suppress(ctx, item, ReasonSendFailed)
	}

	if _, err := d.counter.IncrSentToday(ctx, item.DeviceID.String(), day); err != nil {
		d.logg.Error(ctx, "sent counter increment failed", err)
	}
	if d.toasts != nil {
		d.toasts.Push(item.DeviceID, toastKindFor(item.Kind), item.Title, item.Body, item.SoundEffect)
	}
	if d.metrics != nil {
		d.metrics.IncDelivered(string(item.Kind))
	}

	if err := d.repo.LogDelivery(ctx, &models.DeliveryLog{
		ID:        uuid.New(),
		DeviceID:  item.DeviceID,
		Kind:      item.Kind,
		Tag:       item.Tag,
		Title:     item.Title,
		Delivered: true,
		CreatedAt: d.now(),
	}); err != nil {
		d.logg.Error(ctx, "delivery log write failed", err)
	}

	return true, d.advance(ctx, item)
}

func (d *Dispatcher) send(ctx context.Context, item models.ScheduledNotification) error {
	backoff := retry.WithMaxRetries(uint64(d.cfg.SendMaxRetries), retry.NewConstant(d.cfg.SendBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.sender.Send(ctx, item.DeviceID, item); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// suppress records the gate decision and still advances the recurrence so a
// blocked slot does not refire every dispatch cycle.
func (d *Dispatcher) suppress(ctx context.Context, item models.ScheduledNotification, reason string) error {
	if d.metrics != nil {
		d.metrics.IncSuppressed(reason)
	}
	if err := d.repo.LogDelivery(ctx, &models.DeliveryLog{
		ID:               uuid.New(),
		DeviceID:         item.DeviceID,
		Kind:             item.Kind,
		Tag:              item.Tag,
		Title:            item.Title,
		Delivered:        false,
		SuppressedReason: reason,
		CreatedAt:        d.now(),
	}); err != nil {
		d.logg.Error(ctx, "delivery log write failed", err)
	}
	return d.advance(ctx, item)
}

// advance moves a recurring slot to its next occurrence or drops a one-shot.
func (d *Dispatcher) advance(ctx context.Context, item models.ScheduledNotification) error {
	switch item.Recurring {
	case enums.RecurrenceDaily:
		return d.repo.Reschedule(ctx, item.ID, item.ScheduledFor.AddDate(0, 0, 1))
	case enums.RecurrenceWeekly:
		return d.repo.Reschedule(ctx, item.ID, item.ScheduledFor.AddDate(0, 0, 7))
	default:
		return d.repo.Delete(ctx, item.ID)
	}
}

// kindEnabled re-checks the per-kind toggles against current preferences.
func kindEnabled(prefs models.NotificationPreference, kind enums.NotificationKind) bool {
	switch kind {
	case enums.NotificationKindDailyReminder:
		return prefs.DailyReminders
	case enums.NotificationKindWeeklyReport:
		return prefs.WeeklyReports
	case enums.NotificationKindDailyChallenge:
		return prefs.ChallengeNotifications
	case enums.NotificationKindAchievement:
		return prefs.AchievementNotifications
	case enums.NotificationKindMilestone:
		return prefs.MilestoneAlerts
	case enums.NotificationKindStreak:
		return prefs.StreakReminders
	case enums.NotificationKindLevelUp:
		return prefs.LevelUpNotifications
	default:
		return true
	}
}

func toastKindFor(kind enums.NotificationKind) enums.ToastType {
	switch kind {
	case enums.NotificationKindAchievement, enums.NotificationKindMilestone, enums.NotificationKindLevelUp:
		return enums.ToastTypeAchievement
	case enums.NotificationKindStreak:
		return enums.ToastTypeStreak
	default:
		return enums.ToastTypeInfo
	}
}
