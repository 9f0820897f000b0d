package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
)

// Repository exposes persistence helpers for schedules and delivery logs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ForDevice(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
	Due(ctx context.Context, now time.Time, limit int) ([]models.ScheduledNotification, error)
	ReplaceDeviceSchedule(ctx context.Context, deviceID uuid.UUID, items []models.ScheduledNotification) error
	Reschedule(ctx context.Context, id uuid.UUID, next time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	LogDelivery(ctx context.Context, entry *models.DeliveryLog) error
	DeliveryHistory(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error)
	PurgeDeliveryLogs(ctx context.Context, before time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notify repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ForDevice(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	var rows []models.ScheduledNotification
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("scheduled_for ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Due(ctx context.Context, now time.Time, limit int) ([]models.ScheduledNotification, error) {
	var rows []models.ScheduledNotification
	query := r.db.WithContext(ctx).
		Where("scheduled_for <= ?", now).
		Order("scheduled_for ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceDeviceSchedule swaps the device's whole set in one transaction.
// Last write wins; there is no per-item merging.
func (r *repositoryImpl) ReplaceDeviceSchedule(ctx context.Context, deviceID uuid.UUID, items []models.ScheduledNotification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).
			Delete(&models.ScheduledNotification{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *repositoryImpl) Reschedule(ctx context.Context, id uuid.UUID, next time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduledNotification{}).
		Where("id = ?", id).
		Update("scheduled_for", next).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.ScheduledNotification{}).Error
}

func (r *repositoryImpl) LogDelivery(ctx context.Context, entry *models.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) DeliveryHistory(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error) {
	var rows []models.DeliveryLog
	query := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) PurgeDeliveryLogs(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.DeliveryLog{})
	return result.RowsAffected, result.Error
}
