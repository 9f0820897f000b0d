package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/ecotrackth/ecotrack-backend/pkg/db/types"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// NotificationPreference stores the single active preference record per
// device. Rows are created with defaults on first read and replaced whole on
// update; they are reset, never deleted.
type NotificationPreference struct {
	DeviceID uuid.UUID `gorm:"type:uuid;primaryKey" json:"deviceId"`

	DailyReminders    bool                    `gorm:"not null" json:"dailyReminders"`
	MorningTime       string                  `gorm:"type:text;not null" json:"morningTime"`
	EveningTime       string                  `gorm:"type:text;not null" json:"eveningTime"`
	CustomTimes       dbtypes.StringList      `gorm:"type:text;not null" json:"customTimes"`
	ReminderFrequency enums.ReminderFrequency `gorm:"type:text;not null" json:"reminderFrequency"`

	AchievementNotifications bool `gorm:"not null" json:"achievementNotifications"`
	MilestoneAlerts          bool `gorm:"not null" json:"milestoneAlerts"`
	StreakReminders          bool `gorm:"not null" json:"streakReminders"`
	LevelUpNotifications     bool `gorm:"not null" json:"levelUpNotifications"`

	WeeklyReports    bool   `gorm:"not null" json:"weeklyReports"`
	WeeklyReportDay  string `gorm:"type:text;not null" json:"weeklyReportDay"`
	WeeklyReportTime string `gorm:"type:text;not null" json:"weeklyReportTime"`

	ChallengeNotifications bool `gorm:"not null" json:"challengeNotifications"`
	ChallengeReminders     bool `gorm:"not null" json:"challengeReminders"`

	SoundEnabled      bool `gorm:"not null" json:"soundEnabled"`
	AchievementSounds bool `gorm:"not null" json:"achievementSounds"`
	ReminderSounds    bool `gorm:"not null" json:"reminderSounds"`

	QuietHoursEnabled bool   `gorm:"not null" json:"quietHoursEnabled"`
	QuietHoursStart   string `gorm:"type:text;not null" json:"quietHoursStart"`
	QuietHoursEnd     string `gorm:"type:text;not null" json:"quietHoursEnd"`

	MaxNotificationsPerDay int `gorm:"not null" json:"maxNotificationsPerDay"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
