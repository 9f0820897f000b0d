package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type fakeDispatcher struct {
	delivered  int
	err        error
	lastBatch  int
	callsCount int
}

func (f *fakeDispatcher) DispatchDue(ctx context.Context, batchSize int) (int, error) {
	f.callsCount++
	f.lastBatch = batchSize
	return f.delivered, f.err
}

func TestDispatchJobPassesBatchSize(t *testing.T) {
	dispatcher := &fakeDispatcher{delivered: 3}
	job, err := NewDispatchJob(DispatchJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Dispatcher: dispatcher,
		BatchSize:  7,
	})
	if err != nil {
		t.Fatalf("NewDispatchJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dispatcher.lastBatch != 7 {
		t.Fatalf("batch = %d, want 7", dispatcher.lastBatch)
	}
}

func TestDispatchJobPropagatesErrors(t *testing.T) {
	job, _ := NewDispatchJob(DispatchJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Dispatcher: &fakeDispatcher{err: errors.New("boom")},
	})

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakePrefsLister struct {
	rows      []models.NotificationPreference
	lastSince time.Time
}

func (f *fakePrefsLister) UpdatedSince(ctx context.Context, since time.Time, limit int) ([]models.NotificationPreference, error) {
	f.lastSince = since
	return f.rows, nil
}

type fakeRebuilder struct {
	rebuilt []uuid.UUID
	failFor map[uuid.UUID]error
}

func (f *fakeRebuilder) Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	if err := f.failFor[deviceID]; err != nil {
		return nil, err
	}
	f.rebuilt = append(f.rebuilt, deviceID)
	return nil, nil
}

func newRebuildJob(t *testing.T, prefs *fakePrefsLister, rebuilder *fakeRebuilder) *scheduleRebuildJob {
	t.Helper()
	jobIface, err := NewScheduleRebuildJob(ScheduleRebuildJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Prefs:     prefs,
		Rebuilder: rebuilder,
	})
	if err != nil {
		t.Fatalf("NewScheduleRebuildJob: %v", err)
	}
	job, ok := jobIface.(*scheduleRebuildJob)
	if !ok {
		t.Fatalf("expected scheduleRebuildJob, got %T", jobIface)
	}
	return job
}

func TestScheduleRebuildJobAdvancesWatermark(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	prefs := &fakePrefsLister{rows: []models.NotificationPreference{
		{DeviceID: uuid.New()},
		{DeviceID: uuid.New()},
	}}
	rebuilder := &fakeRebuilder{}
	job := newRebuildJob(t, prefs, rebuilder)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !prefs.lastSince.IsZero() {
		t.Fatal("first cycle must sweep from the zero watermark")
	}
	if len(rebuilder.rebuilt) != 2 {
		t.Fatalf("rebuilt %d devices, want 2", len(rebuilder.rebuilt))
	}
	if !job.lastRun.Equal(now) {
		t.Fatalf("watermark = %s, want %s", job.lastRun, now)
	}

	// Second cycle queries from the new watermark.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !prefs.lastSince.Equal(now) {
		t.Fatalf("second cycle since = %s, want %s", prefs.lastSince, now)
	}
}

func TestScheduleRebuildJobHoldsWatermarkOnFailure(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	broken := uuid.New()
	prefs := &fakePrefsLister{rows: []models.NotificationPreference{
		{DeviceID: broken},
		{DeviceID: uuid.New()},
	}}
	rebuilder := &fakeRebuilder{failFor: map[uuid.UUID]error{broken: errors.New("boom")}}
	job := newRebuildJob(t, prefs, rebuilder)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(rebuilder.rebuilt) != 1 {
		t.Fatal("healthy devices still rebuild")
	}
	if !job.lastRun.IsZero() {
		t.Fatal("failed cycle must not advance the watermark")
	}
}

type fakePurger struct {
	deleted    int64
	err        error
	lastCutoff time.Time
}

func (f *fakePurger) PurgeDeliveryLogs(ctx context.Context, before time.Time) (int64, error) {
	f.lastCutoff = before
	return f.deleted, f.err
}

func TestRetentionJobUsesCutoff(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	purger := &fakePurger{deleted: 5}
	jobIface, err := NewRetentionJob(RetentionJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Purger:        purger,
		RetentionDays: 14,
	})
	if err != nil {
		t.Fatalf("NewRetentionJob: %v", err)
	}
	job := jobIface.(*retentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := now.Add(-14 * 24 * time.Hour)
	if !purger.lastCutoff.Equal(want) {
		t.Fatalf("cutoff = %s, want %s", purger.lastCutoff, want)
	}
}

func TestRetentionJobPropagatesErrors(t *testing.T) {
	jobIface, _ := NewRetentionJob(RetentionJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Purger: &fakePurger{err: errors.New("boom")},
	})

	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
