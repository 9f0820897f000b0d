package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/internal/preferences"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

// toastSink surfaces unlock and level-up events as in-app toasts.
type toastSink interface {
	Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string)
}

// platformSender mirrors events to the device's platform channel.
type platformSender interface {
	Send(ctx context.Context, deviceID uuid.UUID, notification models.ScheduledNotification) error
}

// varietyCounter reports how many distinct categories a device has logged.
type varietyCounter interface {
	DistinctCategories(ctx context.Context, deviceID uuid.UUID) (int64, error)
}

// Service defines gamification operations.
type Service interface {
	RecordEntry(ctx context.Context, deviceID uuid.UUID, entry models.WasteEntry) error
	Summary(ctx context.Context, deviceID uuid.UUID) (*Summary, error)
}

// Summary is the device's full gamification standing.
type Summary struct {
	LifetimeCredits int64         `json:"lifetimeCredits"`
	Level           int           `json:"level"`
	MaxLevel        int           `json:"maxLevel"`
	CurrentStreak   int           `json:"currentStreak"`
	LongestStreak   int           `json:"longestStreak"`
	Achievements    []Achievement `json:"achievements"`
}

type service struct {
	repo    Repository
	prefs   preferences.Service
	variety varietyCounter
	toasts  toastSink
	sender  platformSender
	logg    *logger.Logger
	loc     *time.Location

	now func() time.Time
}

// ServiceParams bundles the dependencies required to build a gamification
// service.
type ServiceParams struct {
	Repo     Repository
	Prefs    preferences.Service
	Variety  varietyCounter
	Toasts   toastSink
	Sender   platformSender
	Logger   *logger.Logger
	Location *time.Location
	Now      func() time.Time
}

// NewService wires gamification dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gamification repository required")
	case params.Prefs == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences service required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
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
		variety: params.Variety,
		toasts:  params.Toasts,
		sender:  params.Sender,
		logg:    params.Logger,
		loc:     params.Location,
		now:     params.Now,
	}, nil
}

// RecordEntry folds one stored waste entry into the device's state: credit
// balance, streak, level, and any achievement unlocks it triggers.
func (s *service) RecordEntry(ctx context.Context, deviceID uuid.UUID, entry models.WasteEntry) error {
	if deviceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	state, err := s.repo.FindState(ctx, deviceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gamification state")
	}
	firstEntry := state == nil
	if state == nil {
		state = &models.GamificationState{DeviceID: deviceID, Level: 1}
	}

	entryDay := entry.CreatedAt.In(s.loc)
	state.CurrentStreak = nextStreak(state, entryDay)
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	state.LifetimeCredits += entry.Credits

	previousLevel := state.Level
	state.Level = LevelForCredits(state.LifetimeCredits)
	state.LastEntryDate = &entryDay
	state.UpdatedAt = s.now()

	if err := s.repo.SaveState(ctx, state); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gamification state")
	}

	prefs, err := s.prefs.Get(ctx, deviceID)
	if err != nil {
		return err
	}

	if state.Level > previousLevel && !firstEntry {
		s.announce(ctx, deviceID, *prefs, enums.NotificationKindLevelUp, enums.ToastTypeAchievement,
			"Level up! ⭐", levelUpMessage(state.Level))
	}

	return s.evaluateUnlocks(ctx, deviceID, *prefs, progress{
		FirstEntry:         firstEntry,
		LifetimeCredits:    state.LifetimeCredits,
		CurrentStreak:      state.CurrentStreak,
		DistinctCategories: s.distinctCategories(ctx, deviceID),
	})
}

func (s *service) Summary(ctx context.Context, deviceID uuid.UUID) (*Summary, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	state, err := s.repo.FindState(ctx, deviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gamification state")
	}
	if state == nil {
		state = &models.GamificationState{DeviceID: deviceID, Level: 1}
	}

	unlocks, err := s.repo.Unlocks(ctx, deviceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load achievement unlocks")
	}

	byID := map[string]Achievement{}
	for _, achievement := range CatalogAchievements() {
		byID[achievement.ID] = achievement
	}
	achievements := make([]Achievement, 0, len(unlocks))
	for _, unlock := range unlocks {
		if achievement, ok := byID[unlock.AchievementID]; ok {
			achievements = append(achievements, achievement)
		}
	}

	return &Summary{
		LifetimeCredits: state.LifetimeCredits,
		Level:           state.Level,
		MaxLevel:        MaxLevel(),
		CurrentStreak:   state.CurrentStreak,
		LongestStreak:   state.LongestStreak,
		Achievements:    achievements,
	}, nil
}

func (s *service) evaluateUnlocks(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference, p progress) error {
	for _, candidate := range achievementCatalog {
		if !candidate.unlocked(p) {
			continue
		}
		inserted, err := s.repo.Unlock(ctx, &models.AchievementUnlock{
			ID:            uuid.New(),
			DeviceID:      deviceID,
			AchievementID: candidate.ID,
			UnlockedAt:    s.now(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record achievement unlock")
		}
		if !inserted {
			continue
		}
		s.announce(ctx, deviceID, prefs, enums.NotificationKindAchievement, enums.ToastTypeAchievement,
			candidate.Title, candidate.Message)
	}
	return nil
}

// announce surfaces an event as a toast and a platform notification, subject
// to the per-kind preference toggles. Delivery failures are logged and
// swallowed; gamification state is already committed.
func (s *service) announce(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference, kind enums.NotificationKind, toastType enums.ToastType, title, message string) {
	if !eventEnabled(prefs, kind) {
		return
	}

	sound := achievementSound(prefs)
	if s.toasts != nil {
		s.toasts.Push(deviceID, toastType, title, message, sound)
	}
	if s.sender != nil {
		notification := models.ScheduledNotification{
			ID:           uuid.New(),
			DeviceID:     deviceID,
			Kind:         kind,
			Title:        title,
			Body:         message,
			ScheduledFor: s.now(),
			Recurring:    enums.RecurrenceNone,
			Tag:          string(kind),
			SoundEffect:  sound,
			CreatedAt:    s.now(),
		}
		if err := s.sender.Send(ctx, deviceID, notification); err != nil {
			s.logg.Error(ctx, "event notification send failed", err)
		}
	}
}

func (s *service) distinctCategories(ctx context.Context, deviceID uuid.UUID) int64 {
	if s.variety == nil {
		return 0
	}
	count, err := s.variety.DistinctCategories(ctx, deviceID)
	if err != nil {
		s.logg.Error(ctx, "distinct category count failed", err)
		return 0
	}
	return count
}

// nextStreak applies the consecutive-local-day rule: same day keeps the
// streak, the day after extends it, any gap resets to one.
func nextStreak(state *models.GamificationState, entryDay time.Time) int {
	if state.LastEntryDate == nil {
		return 1
	}
	last := state.LastEntryDate.In(entryDay.Location())
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, entryDay.Location())
	today := time.Date(entryDay.Year(), entryDay.Month(), entryDay.Day(), 0, 0, 0, 0, entryDay.Location())

	// Calendar-date comparison, not duration: a DST transition day is not
	// 24h long and must still count as consecutive.
	switch {
	case today.Equal(lastDay):
		return state.CurrentStreak
	case today.Equal(lastDay.AddDate(0, 0, 1)):
		return state.CurrentStreak + 1
	default:
		return 1
	}
}

func levelUpMessage(level int) string {
	return fmt.Sprintf("You reached level %d. Keep the planet winning!", level)
}

func achievementSound(prefs models.NotificationPreference) *string {
	if !prefs.SoundEnabled || !prefs.AchievementSounds {
		return nil
	}
	name := "achievement-fanfare"
	return &name
}

func eventEnabled(prefs models.NotificationPreference, kind enums.NotificationKind) bool {
	switch kind {
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
