package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// DeliveryLog records every dispatch attempt, delivered or suppressed.
type DeliveryLog struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID  uuid.UUID              `gorm:"type:uuid;not null;index" json:"deviceId"`
	Kind      enums.NotificationKind `gorm:"type:text;not null" json:"kind"`
	Tag       string                 `gorm:"type:text;not null" json:"tag"`
	Title     string                 `gorm:"type:text;not null" json:"title"`
	Delivered bool                   `gorm:"not null" json:"delivered"`
	// Empty when delivered; otherwise quiet_hours, daily_cap, entry_exists or send_failed.
	SuppressedReason string    `gorm:"type:text;not null;default:''" json:"suppressedReason,omitempty"`
	CreatedAt        time.Time `gorm:"not null;index" json:"createdAt"`
}
