package notify

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type fakeRepo struct {
	due         []models.ScheduledNotification
	logs        []models.DeliveryLog
	rescheduled map[uuid.UUID]time.Time
	deleted     []uuid.UUID
	replaced    map[uuid.UUID][]models.ScheduledNotification
	forDevice   []models.ScheduledNotification
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rescheduled: map[uuid.UUID]time.Time{},
		replaced:    map[uuid.UUID][]models.ScheduledNotification{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) ForDevice(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	return f.forDevice, nil
}

func (f *fakeRepo) Due(ctx context.Context, now time.Time, limit int) ([]models.ScheduledNotification, error) {
	return f.due, nil
}

func (f *fakeRepo) ReplaceDeviceSchedule(ctx context.Context, deviceID uuid.UUID, items []models.ScheduledNotification) error {
	f.replaced[deviceID] = items
	return nil
}

func (f *fakeRepo) Reschedule(ctx context.Context, id uuid.UUID, next time.Time) error {
	f.rescheduled[id] = next
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) LogDelivery(ctx context.Context, entry *models.DeliveryLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeRepo) DeliveryHistory(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error) {
	return f.logs, nil
}

func (f *fakeRepo) PurgeDeliveryLogs(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakePrefs struct {
	record models.NotificationPreference
}

func (f *fakePrefs) Get(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	record := f.record
	record.DeviceID = deviceID
	return &record, nil
}

func (f *fakePrefs) Update(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference) (*models.NotificationPreference, error) {
	f.record = prefs
	return &prefs, nil
}

func (f *fakePrefs) Reset(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	f.record = preferences.Defaults(deviceID)
	return &f.record, nil
}

type fakeEntries struct {
	hasEntry bool
}

func (f *fakeEntries) HasEntryOn(ctx context.Context, deviceID uuid.UUID, day time.Time) (bool, error) {
	return f.hasEntry, nil
}

type fakeSender struct {
	sent     []models.ScheduledNotification
	failures int
}

func (f *fakeSender) Send(ctx context.Context, deviceID uuid.UUID, n models.ScheduledNotification) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("push channel unavailable")
	}
	f.sent = append(f.sent, n)
	return nil
}

type pushedToast struct {
	DeviceID uuid.UUID
	Kind     enums.ToastType
	Title    string
}

type fakeToasts struct {
	pushed []pushedToast
}

func (f *fakeToasts) Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string) {
	f.pushed = append(f.pushed, pushedToast{DeviceID: deviceID, Kind: kind, Title: title})
}

type fakeCounter struct {
	counts map[string]int
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int{}}
}

func (f *fakeCounter) SentToday(ctx context.Context, deviceID, day string) (int, error) {
	return f.counts[deviceID+"|"+day], nil
}

func (f *fakeCounter) IncrSentToday(ctx context.Context, deviceID, day string) (int64, error) {
	f.counts[deviceID+"|"+day]++
	return int64(f.counts[deviceID+"|"+day]), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

type dispatchFixture struct {
	repo    *fakeRepo
	prefs   *fakePrefs
	entries *fakeEntries
	sender  *fakeSender
	toasts  *fakeToasts
	counter *fakeCounter
}

func newDispatcher(t *testing.T, now time.Time, fx *dispatchFixture) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Repo:     fx.repo,
		Prefs:    fx.prefs,
		Entries:  fx.entries,
		Sender:   fx.sender,
		Toasts:   fx.toasts,
		Counter:  fx.counter,
		Logger:   testLogger(),
		Config:   config.NotifyConfig{SendMaxRetries: 2, SendBackoff: time.Millisecond},
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func dueReminder(deviceID uuid.UUID, at time.Time) models.ScheduledNotification {
	return models.ScheduledNotification{
		ID:                   uuid.New(),
		DeviceID:             deviceID,
		Kind:                 enums.NotificationKindDailyReminder,
		Title:                "Evening check-in",
		Body:                 "Log your waste before the day ends.",
		ScheduledFor:         at,
		Recurring:            enums.RecurrenceDaily,
		Tag:                  "daily-reminder-19:00",
		RequiresNoEntryToday: true,
	}
}

func TestDispatchDueDeliversAndAdvances(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 0, 30, 0, time.UTC)
	deviceID := uuid.New()
	item := dueReminder(deviceID, now.Add(-30*time.Second))

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: basePrefs()},
		entries: &fakeEntries{},
		sender:  &fakeSender{},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	delivered, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	if len(fx.sender.sent) != 1 {
		t.Fatalf("sender called %d times", len(fx.sender.sent))
	}
	if len(fx.toasts.pushed) != 1 || fx.toasts.pushed[0].Kind != enums.ToastTypeInfo {
		t.Fatalf("expected one info toast, got %+v", fx.toasts.pushed)
	}

	next, ok := fx.repo.rescheduled[item.ID]
	if !ok {
		t.Fatal("daily item must be rescheduled")
	}
	if want := item.ScheduledFor.AddDate(0, 0, 1); !next.Equal(want) {
		t.Fatalf("rescheduled to %s, want %s", next, want)
	}
	if len(fx.repo.logs) != 1 || !fx.repo.logs[0].Delivered {
		t.Fatalf("expected one delivered log, got %+v", fx.repo.logs)
	}
	if got := fx.counter.counts[deviceID.String()+"|2026-03-10"]; got != 1 {
		t.Fatalf("sent counter = %d", got)
	}
}

func TestDispatchDueSuppressesInQuietHours(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 0, 0, 0, time.UTC)
	deviceID := uuid.New()
	item := dueReminder(deviceID, now.Add(-time.Minute))

	prefs := basePrefs()
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = "22:00"
	prefs.QuietHoursEnd = "08:00"

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: prefs},
		entries: &fakeEntries{},
		sender:  &fakeSender{},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	delivered, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 0 || len(fx.sender.sent) != 0 {
		t.Fatal("quiet hours must block the send")
	}
	if len(fx.repo.logs) != 1 || fx.repo.logs[0].SuppressedReason != ReasonQuietHours {
		t.Fatalf("expected quiet_hours log, got %+v", fx.repo.logs)
	}
	if _, ok := fx.repo.rescheduled[item.ID]; !ok {
		t.Fatal("suppressed recurring item must still advance")
	}
}

func TestDispatchDueSuppressesWhenEntryLogged(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 1, 0, 0, time.UTC)
	item := dueReminder(uuid.New(), now.Add(-time.Minute))

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: basePrefs()},
		entries: &fakeEntries{hasEntry: true},
		sender:  &fakeSender{},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	if _, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.sender.sent) != 0 {
		t.Fatal("reminder must not fire after an entry was logged")
	}
	if len(fx.repo.logs) != 1 || fx.repo.logs[0].SuppressedReason != ReasonEntryExists {
		t.Fatalf("expected entry_exists log, got %+v", fx.repo.logs)
	}
}

func TestDispatchDueRetriesThenSucceeds(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 1, 0, 0, time.UTC)
	item := dueReminder(uuid.New(), now.Add(-time.Minute))

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: basePrefs()},
		entries: &fakeEntries{},
		sender:  &fakeSender{failures: 1},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	delivered, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 1 {
		t.Fatal("one transient failure must be retried into a delivery")
	}
}

func TestDispatchDueRecordsSendFailure(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 1, 0, 0, time.UTC)
	item := dueReminder(uuid.New(), now.Add(-time.Minute))

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: basePrefs()},
		entries: &fakeEntries{},
		sender:  &fakeSender{failures: 10},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	delivered, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50)
	if err != nil {
		t.Fatalf("batch must swallow per-item send failures, got %v", err)
	}
	if delivered != 0 {
		t.Fatal("exhausted retries must not count as delivered")
	}
	if len(fx.repo.logs) != 1 || fx.repo.logs[0].SuppressedReason != ReasonSendFailed {
		t.Fatalf("expected send_failed log, got %+v", fx.repo.logs)
	}
	if _, ok := fx.repo.rescheduled[item.ID]; !ok {
		t.Fatal("failed recurring item must still advance")
	}
}

func TestDispatchDueDropsDisabledKindSilently(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 1, 0, 0, time.UTC)
	item := dueReminder(uuid.New(), now.Add(-time.Minute))

	prefs := basePrefs()
	prefs.DailyReminders = false

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: prefs},
		entries: &fakeEntries{},
		sender:  &fakeSender{},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	if _, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.repo.logs) != 0 {
		t.Fatal("a disabled kind leaves no delivery log")
	}
	if _, ok := fx.repo.rescheduled[item.ID]; !ok {
		t.Fatal("disabled recurring item still advances")
	}
}

func TestDispatchDueDeletesOneShot(t *testing.T) {
	now := time.Date(2026, time.March, 10, 19, 1, 0, 0, time.UTC)
	item := dueReminder(uuid.New(), now.Add(-time.Minute))
	item.Recurring = enums.RecurrenceNone
	item.RequiresNoEntryToday = false

	fx := &dispatchFixture{
		repo:    newFakeRepo(),
		prefs:   &fakePrefs{record: basePrefs()},
		entries: &fakeEntries{},
		sender:  &fakeSender{},
		toasts:  &fakeToasts{},
		counter: newFakeCounter(),
	}
	fx.repo.due = []models.ScheduledNotification{item}

	if _, err := newDispatcher(t, now, fx).DispatchDue(context.Background(), 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.repo.deleted) != 1 || fx.repo.deleted[0] != item.ID {
		t.Fatalf("one-shot must be deleted, got %+v", fx.repo.deleted)
	}
}
