package models

import (
	"time"

	"github.com/google/uuid"
)

// GamificationState tracks per-device lifetime credits, streaks and level.
// Updated transactionally alongside waste entry creation.
type GamificationState struct {
	DeviceID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"deviceId"`
	LifetimeCredits int64      `gorm:"not null" json:"lifetimeCredits"`
	CurrentStreak   int        `gorm:"not null" json:"currentStreak"`
	LongestStreak   int        `gorm:"not null" json:"longestStreak"`
	Level           int        `gorm:"not null" json:"level"`
	LastEntryDate   *time.Time `json:"lastEntryDate,omitempty"`
	UpdatedAt       time.Time  `gorm:"not null" json:"-"`
}

// AchievementUnlock records a single unlock; one row per device/achievement.
type AchievementUnlock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_achievement_unlocks_device_achievement" json:"deviceId"`
	AchievementID string    `gorm:"type:text;not null;uniqueIndex:idx_achievement_unlocks_device_achievement" json:"achievementId"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlockedAt"`
}
