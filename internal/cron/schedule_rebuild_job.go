package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type preferenceLister interface {
	UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.NotificationPreference, error)
}

type scheduleRebuilder interface {
	Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
}

// ScheduleRebuildJobParams configure the schedule self-heal job.
type ScheduleRebuildJobParams struct {
	Logger    *logger.Logger
	Prefs     preferenceLister
	Rebuilder scheduleRebuilder
	BatchSize int
}

const defaultRebuildBatch = 200

// NewScheduleRebuildJob rebuilds schedules for devices whose preferences
// changed since the previous cycle. The API rebuilds synchronously on every
// preference write; this job catches anything that slipped through and, on
// the first cycle after start, sweeps the whole table in bounded batches.
func NewScheduleRebuildJob(params ScheduleRebuildJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Prefs == nil {
		return nil, fmt.Errorf("preference lister required")
	}
	if params.Rebuilder == nil {
		return nil, fmt.Errorf("rebuilder required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultRebuildBatch
	}
	return &scheduleRebuildJob{
		logg:      params.Logger,
		prefs:     params.Prefs,
		rebuilder: params.Rebuilder,
		batch:     batch,
		now:       time.Now,
	}, nil
}

type scheduleRebuildJob struct {
	logg      *logger.Logger
	prefs     preferenceLister
	rebuilder scheduleRebuilder
	batch     int
	lastRun   time.Time
	now       func() time.Time
}

func (j *scheduleRebuildJob) Name() string { return "schedule-rebuild" }

func (j *scheduleRebuildJob) Run(ctx context.Context) error {
	cycleStart := j.now().UTC()

	changed, err := j.prefs.UpdatedSince(ctx, j.lastRun, j.batch)
	if err != nil {
		return fmt.Errorf("list changed preferences: %w", err)
	}

	var errs error
	rebuilt := 0
	for _, prefs := range changed {
		if _, err := j.rebuilder.Rebuild(ctx, prefs.DeviceID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rebuild %s: %w", prefs.DeviceID, err))
			continue
		}
		rebuilt++
	}

	if rebuilt > 0 {
		j.logg.Info(j.logg.WithField(ctx, "rebuilt", rebuilt), "schedules rebuilt")
	}
	// Only move the watermark when the whole batch succeeded; failed devices
	// are retried next cycle.
	if errs == nil {
		j.lastRun = cycleStart
	}
	return errs
}
