package preferences

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
)

// Repository exposes persistence helpers for notification preferences.
type Repository interface {
	Find(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error)
	Upsert(ctx context.Context, prefs *models.NotificationPreference) error
	UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.NotificationPreference, error)
}

// ErrNotFound signals a device without a stored preference record.
var ErrNotFound = errors.New("preferences not found")

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a preferences repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Find(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.WithContext(ctx).First(&prefs, "device_id = ?", deviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *repositoryImpl) Upsert(ctx context.Context, prefs *models.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			UpdateAll: true,
		}).
		Create(prefs).Error
}

func (r *repositoryImpl) UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.NotificationPreference, error) {
	var rows []models.NotificationPreference
	query := r.db.WithContext(ctx).
		Model(&models.NotificationPreference{}).
		Where("updated_at > ?", since).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
