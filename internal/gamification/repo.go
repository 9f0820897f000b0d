package gamification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
)

// Repository exposes persistence helpers for gamification state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindState(ctx context.Context, deviceID uuid.UUID) (*models.GamificationState, error)
	SaveState(ctx context.Context, state *models.GamificationState) error
	Unlock(ctx context.Context, unlock *models.AchievementUnlock) (bool, error)
	Unlocks(ctx context.Context, deviceID uuid.UUID) ([]models.AchievementUnlock, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gamification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// FindState returns nil without error when the device has no state yet.
func (r *repositoryImpl) FindState(ctx context.Context, deviceID uuid.UUID) (*models.GamificationState, error) {
	var state models.GamificationState
	err := r.db.WithContext(ctx).First(&state, "device_id = ?", deviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *repositoryImpl) SaveState(ctx context.Context, state *models.GamificationState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
}

// Unlock inserts the row if absent and reports whether it was new.
func (r *repositoryImpl) Unlock(ctx context.Context, unlock *models.AchievementUnlock) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(unlock)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Unlocks(ctx context.Context, deviceID uuid.UUID) ([]models.AchievementUnlock, error) {
	var rows []models.AchievementUnlock
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("unlocked_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
