package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type deliveryLogPurger interface {
	PurgeDeliveryLogs(ctx context.Context, before time.Time) (int64, error)
}

// RetentionJobParams configure the delivery log retention job.
type RetentionJobParams struct {
	Logger        *logger.Logger
	Purger        deliveryLogPurger
	RetentionDays int
}

const defaultDeliveryLogRetentionDays = 30

// NewRetentionJob prunes delivery log rows past the retention window.
func NewRetentionJob(params RetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Purger == nil {
		return nil, fmt.Errorf("purger required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultDeliveryLogRetentionDays
	}
	return &retentionJob{
		logg:      params.Logger,
		purger:    params.Purger,
		retention: retention,
		now:       time.Now,
	}, nil
}

type retentionJob struct {
	logg      *logger.Logger
	purger    deliveryLogPurger
	retention int
	now       func() time.Time
}

func (j *retentionJob) Name() string { return "delivery-retention" }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.purger.PurgeDeliveryLogs(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge delivery logs: %w", err)
	}
	if deleted > 0 {
		j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "delivery logs pruned")
	}
	return nil
}
