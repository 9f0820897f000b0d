package cron

import (
	"context"
	"fmt"

	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type dispatcher interface {
	DispatchDue(ctx context.Context, batchSize int) (int, error)
}

// DispatchJobParams configure the notification dispatch job.
type DispatchJobParams struct {
	Logger     *logger.Logger
	Dispatcher dispatcher
	BatchSize  int
}

const defaultDispatchBatch = 500

// NewDispatchJob drains due scheduled notifications each cycle.
func NewDispatchJob(params DispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultDispatchBatch
	}
	return &dispatchJob{
		logg:       params.Logger,
		dispatcher: params.Dispatcher,
		batch:      batch,
	}, nil
}

type dispatchJob struct {
	logg       *logger.Logger
	dispatcher dispatcher
	batch      int
}

func (j *dispatchJob) Name() string { return "notification-dispatch" }

func (j *dispatchJob) Run(ctx context.Context) error {
	delivered, err := j.dispatcher.DispatchDue(ctx, j.batch)
	if delivered > 0 {
		j.logg.Info(j.logg.WithField(ctx, "delivered", delivered), "notifications dispatched")
	}
	if err != nil {
		return fmt.Errorf("dispatch due notifications: %w", err)
	}
	return nil
}
