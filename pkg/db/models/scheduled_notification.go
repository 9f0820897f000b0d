package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// ScheduledNotification is one computed future fire time for a device.
// Whole sets are replaced when preferences change; ScheduledFor is strictly
// in the future at creation time.
type ScheduledNotification struct {
	ID           uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID     uuid.UUID              `gorm:"type:uuid;not null;index" json:"deviceId"`
	Kind         enums.NotificationKind `gorm:"type:text;not null" json:"kind"`
	Title        string                 `gorm:"type:text;not null" json:"title"`
	Body         string                 `gorm:"type:text;not null" json:"body"`
	ScheduledFor time.Time              `gorm:"not null;index" json:"scheduledFor"`
	Recurring    enums.Recurrence       `gorm:"type:text;not null" json:"recurring"`

	RequiresPermission bool   `gorm:"not null" json:"requiresPermission"`
	Tag                string `gorm:"type:text;not null" json:"tag"`

	// Fire only when the device has no waste entry logged that day.
	RequiresNoEntryToday bool `gorm:"not null" json:"requiresNoEntryToday"`

	SoundEffect *string `gorm:"type:text" json:"soundEffect,omitempty"`
	URL         *string `gorm:"type:text" json:"url,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"-"`
}
