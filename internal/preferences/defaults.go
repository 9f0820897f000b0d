package preferences

import (
	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	dbtypes "github.com/ecotrackth/ecotrack-backend/pkg/db/types"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// Defaults returns the total default preference record for a device. Every
// field carries a value; a freshly created record behaves identically to one
// the user saved without touching anything.
func Defaults(deviceID uuid.UUID) models.NotificationPreference {
	return models.NotificationPreference{
		DeviceID:          deviceID,
		DailyReminders:    true,
		MorningTime:       "08:00",
		EveningTime:       "19:00",
		CustomTimes:       dbtypes.StringList{},
		ReminderFrequency: enums.ReminderFrequencyTwice,

		AchievementNotifications: true,
		MilestoneAlerts:          true,
		StreakReminders:          true,
		LevelUpNotifications:     true,

		WeeklyReports:    true,
		WeeklyReportDay:  "sunday",
		WeeklyReportTime: "18:00",

		ChallengeNotifications: true,
		ChallengeReminders:     true,

		SoundEnabled:      true,
		AchievementSounds: true,
		ReminderSounds:    true,

		QuietHoursEnabled: false,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "08:00",

		MaxNotificationsPerDay: 5,
	}
}
