package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// WasteEntry records one disposal event and the credits it earned.
type WasteEntry struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"deviceId"`
	CategoryID string               `gorm:"type:text;not null" json:"categoryId"`
	Method     enums.DisposalMethod `gorm:"type:text;not null" json:"method"`
	WeightKg   decimal.Decimal      `gorm:"type:numeric(10,3);not null" json:"weightKg"`
	Credits    int64                `gorm:"not null" json:"credits"`
	CreatedAt  time.Time            `gorm:"not null;index" json:"createdAt"`
}
