package gamification

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type fakeGamificationRepo struct {
	state   *models.GamificationState
	unlocks map[string]bool
}

func newFakeGamificationRepo() *fakeGamificationRepo {
	return &fakeGamificationRepo{unlocks: map[string]bool{}}
}

func (f *fakeGamificationRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeGamificationRepo) FindState(ctx context.Context, deviceID uuid.UUID) (*models.GamificationState, error) {
	if f.state == nil {
		return nil, nil
	}
	copied := *f.state
	return &copied, nil
}

func (f *fakeGamificationRepo) SaveState(ctx context.Context, state *models.GamificationState) error {
	copied := *state
	f.state = &copied
	return nil
}

func (f *fakeGamificationRepo) Unlock(ctx context.Context, unlock *models.AchievementUnlock) (bool, error) {
	if f.unlocks[unlock.AchievementID] {
		return false, nil
	}
	f.unlocks[unlock.AchievementID] = true
	return true, nil
}

func (f *fakeGamificationRepo) Unlocks(ctx context.Context, deviceID uuid.UUID) ([]models.AchievementUnlock, error) {
	var rows []models.AchievementUnlock
	for id := range f.unlocks {
		rows = append(rows, models.AchievementUnlock{DeviceID: deviceID, AchievementID: id})
	}
	return rows, nil
}

type fakePrefsService struct {
	record models.NotificationPreference
}

func (f *fakePrefsService) Get(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	record := f.record
	record.DeviceID = deviceID
	return &record, nil
}

func (f *fakePrefsService) Update(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference) (*models.NotificationPreference, error) {
	f.record = prefs
	return &prefs, nil
}

func (f *fakePrefsService) Reset(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	f.record = preferences.Defaults(deviceID)
	return &f.record, nil
}

type fakeVariety struct {
	count int64
}

func (f *fakeVariety) DistinctCategories(ctx context.Context, deviceID uuid.UUID) (int64, error) {
	return f.count, nil
}

type pushedToast struct {
	Kind  enums.ToastType
	Title string
}

type fakeToasts struct {
	pushed []pushedToast
}

func (f *fakeToasts) Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string) {
	f.pushed = append(f.pushed, pushedToast{Kind: kind, Title: title})
}

type fakeSender struct {
	sent []models.ScheduledNotification
}

func (f *fakeSender) Send(ctx context.Context, deviceID uuid.UUID, n models.ScheduledNotification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fixture struct {
	repo   *fakeGamificationRepo
	prefs  *fakePrefsService
	toasts *fakeToasts
	sender *fakeSender
}

func newService(t *testing.T, fx *fixture, variety int64) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     fx.repo,
		Prefs:    fx.prefs,
		Variety:  &fakeVariety{count: variety},
		Toasts:   fx.toasts,
		Sender:   fx.sender,
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard}),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func defaultFixture() *fixture {
	return &fixture{
		repo:   newFakeGamificationRepo(),
		prefs:  &fakePrefsService{record: preferences.Defaults(uuid.New())},
		toasts: &fakeToasts{},
		sender: &fakeSender{},
	}
}

func entryOn(day time.Time, credits int64) models.WasteEntry {
	return models.WasteEntry{
		ID:        uuid.New(),
		Credits:   credits,
		CreatedAt: day,
	}
}

func TestRecordEntryFirstEntryUnlocks(t *testing.T) {
	fx := defaultFixture()
	svc := newService(t, fx, 1)
	deviceID := uuid.New()

	day := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	if err := svc.RecordEntry(context.Background(), deviceID, entryOn(day, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !fx.repo.unlocks["first_entry"] {
		t.Fatal("first entry must unlock first_entry")
	}
	if fx.repo.state.CurrentStreak != 1 || fx.repo.state.LifetimeCredits != 10 {
		t.Fatalf("unexpected state %+v", fx.repo.state)
	}
	if len(fx.toasts.pushed) == 0 || fx.toasts.pushed[0].Kind != enums.ToastTypeAchievement {
		t.Fatalf("expected achievement toast, got %+v", fx.toasts.pushed)
	}
	if len(fx.sender.sent) == 0 {
		t.Fatal("unlock must also reach the platform channel")
	}
}

func TestRecordEntryStreakRules(t *testing.T) {
	fx := defaultFixture()
	svc := newService(t, fx, 1)
	deviceID := uuid.New()

	day1 := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	day1Later := day1.Add(6 * time.Hour)
	day2 := day1.AddDate(0, 0, 1)
	day5 := day1.AddDate(0, 0, 4)

	steps := []struct {
		at   time.Time
		want int
	}{
		{day1, 1},
		{day1Later, 1}, // same local day keeps the streak
		{day2, 2},      // next day extends it
		{day5, 1},      // a gap resets
	}
	for _, step := range steps {
		if err := svc.RecordEntry(context.Background(), deviceID, entryOn(step.at, 5)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fx.repo.state.CurrentStreak != step.want {
			t.Fatalf("streak after %s = %d, want %d", step.at, fx.repo.state.CurrentStreak, step.want)
		}
	}
	if fx.repo.state.LongestStreak != 2 {
		t.Fatalf("longest streak = %d, want 2", fx.repo.state.LongestStreak)
	}
}

func TestNextStreakSurvivesDSTTransitions(t *testing.T) {
	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// Spring forward: 2026-03-08 is a 23-hour day in the US.
	springBefore := time.Date(2026, time.March, 7, 20, 0, 0, 0, eastern)
	state := &models.GamificationState{CurrentStreak: 3, LastEntryDate: &springBefore}
	if got := nextStreak(state, time.Date(2026, time.March, 8, 20, 0, 0, 0, eastern)); got != 4 {
		t.Fatalf("spring-forward next day: streak = %d, want 4", got)
	}

	// Fall back: 2026-11-01 is a 25-hour day.
	fallBefore := time.Date(2026, time.October, 31, 20, 0, 0, 0, eastern)
	state = &models.GamificationState{CurrentStreak: 3, LastEntryDate: &fallBefore}
	if got := nextStreak(state, time.Date(2026, time.November, 1, 20, 0, 0, 0, eastern)); got != 4 {
		t.Fatalf("fall-back next day: streak = %d, want 4", got)
	}

	// A real gap still resets regardless of clock shifts.
	state = &models.GamificationState{CurrentStreak: 3, LastEntryDate: &springBefore}
	if got := nextStreak(state, time.Date(2026, time.March, 9, 20, 0, 0, 0, eastern)); got != 1 {
		t.Fatalf("two days later: streak = %d, want 1", got)
	}
}

func TestRecordEntryLevelUpAnnounced(t *testing.T) {
	fx := defaultFixture()
	fx.repo.state = &models.GamificationState{
		DeviceID:        uuid.New(),
		LifetimeCredits: 45,
		CurrentStreak:   1,
		Level:           1,
		LastEntryDate:   timePtr(time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)),
	}
	svc := newService(t, fx, 1)
	deviceID := uuid.New()

	day := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	if err := svc.RecordEntry(context.Background(), deviceID, entryOn(day, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.repo.state.Level != 2 {
		t.Fatalf("55 credits should be level 2, got %d", fx.repo.state.Level)
	}
	found := false
	for _, item := range fx.toasts.pushed {
		if item.Title == "Level up! ⭐" {
			found = true
		}
	}
	if !found {
		t.Fatalf("level-up toast missing: %+v", fx.toasts.pushed)
	}
}

func TestRecordEntryUnlocksOnlyOnce(t *testing.T) {
	fx := defaultFixture()
	svc := newService(t, fx, 1)
	deviceID := uuid.New()

	day := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := svc.RecordEntry(context.Background(), deviceID, entryOn(day.Add(time.Duration(i)*time.Hour), 5)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	firstEntryToasts := 0
	for _, item := range fx.toasts.pushed {
		if item.Title == "First step 🌱" {
			firstEntryToasts++
		}
	}
	if firstEntryToasts != 1 {
		t.Fatalf("first_entry announced %d times", firstEntryToasts)
	}
}

func TestRecordEntryRespectsAchievementToggle(t *testing.T) {
	fx := defaultFixture()
	fx.prefs.record.AchievementNotifications = false
	svc := newService(t, fx, 1)

	day := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	if err := svc.RecordEntry(context.Background(), uuid.New(), entryOn(day, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fx.repo.unlocks["first_entry"] {
		t.Fatal("the unlock itself must still be recorded")
	}
	if len(fx.toasts.pushed) != 0 || len(fx.sender.sent) != 0 {
		t.Fatal("disabled achievement notifications must stay silent")
	}
}

func TestLevelForCredits(t *testing.T) {
	cases := []struct {
		credits int64
		want    int
	}{
		{-50, 1},
		{0, 1},
		{49, 1},
		{50, 2},
		{150, 3},
		{2600, 10},
		{99999, 10},
	}
	for _, tc := range cases {
		if got := LevelForCredits(tc.credits); got != tc.want {
			t.Fatalf("LevelForCredits(%d) = %d, want %d", tc.credits, got, tc.want)
		}
	}
}

func TestSummaryForFreshDevice(t *testing.T) {
	fx := defaultFixture()
	svc := newService(t, fx, 0)

	summary, err := svc.Summary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Level != 1 || summary.LifetimeCredits != 0 || len(summary.Achievements) != 0 {
		t.Fatalf("unexpected fresh summary %+v", summary)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
