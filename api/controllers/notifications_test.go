package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/internal/notify"
	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

type testNotifyService struct {
	scheduleFn func(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
	rebuildFn  func(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error)
	sendTestFn func(ctx context.Context, deviceID uuid.UUID) (*notify.TestResult, error)
	historyFn  func(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error)
}

func (s *testNotifyService) Schedule(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	if s.scheduleFn != nil {
		return s.scheduleFn(ctx, deviceID)
	}
	return nil, nil
}

func (s *testNotifyService) Rebuild(ctx context.Context, deviceID uuid.UUID) ([]models.ScheduledNotification, error) {
	if s.rebuildFn != nil {
		return s.rebuildFn(ctx, deviceID)
	}
	return nil, nil
}

func (s *testNotifyService) SendTest(ctx context.Context, deviceID uuid.UUID) (*notify.TestResult, error) {
	if s.sendTestFn != nil {
		return s.sendTestFn(ctx, deviceID)
	}
	return nil, nil
}

func (s *testNotifyService) History(ctx context.Context, deviceID uuid.UUID, limit int) ([]models.DeliveryLog, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, deviceID, limit)
	}
	return nil, nil
}

func TestGetScheduleReturnsItems(t *testing.T) {
	deviceID := uuid.New()
	svc := &testNotifyService{
		scheduleFn: func(_ context.Context, id uuid.UUID) ([]models.ScheduledNotification, error) {
			return []models.ScheduledNotification{{
				ID:       uuid.New(),
				DeviceID: id,
				Kind:     enums.NotificationKindDailyReminder,
				ScheduledFor: time.Now().Add(time.Hour),
			}}, nil
		},
	}

	req := withDevice(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/schedule", nil), deviceID)
	resp := httptest.NewRecorder()
	GetSchedule(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Items []models.ScheduledNotification `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one scheduled item, got %d", len(envelope.Data.Items))
	}
}

func TestSendTestNotificationReportsSuppression(t *testing.T) {
	deviceID := uuid.New()
	svc := &testNotifyService{
		sendTestFn: func(_ context.Context, _ uuid.UUID) (*notify.TestResult, error) {
			return &notify.TestResult{Delivered: false, SuppressedReason: "quiet_hours"}, nil
		},
	}

	req := withDevice(httptest.NewRequest(http.MethodPost, "/api/v1/notifications/test", nil), deviceID)
	resp := httptest.NewRecorder()
	SendTestNotification(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data notify.TestResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Delivered || envelope.Data.SuppressedReason != "quiet_hours" {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestGetNotificationHistoryForwardsLimit(t *testing.T) {
	deviceID := uuid.New()
	var gotLimit int
	svc := &testNotifyService{
		historyFn: func(_ context.Context, _ uuid.UUID, limit int) ([]models.DeliveryLog, error) {
			gotLimit = limit
			return nil, nil
		},
	}

	req := withDevice(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/history?limit=10", nil), deviceID)
	resp := httptest.NewRecorder()
	GetNotificationHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotLimit != 10 {
		t.Fatalf("expected limit 10 got %d", gotLimit)
	}
}

func TestGetNotificationHistoryRejectsBadLimit(t *testing.T) {
	deviceID := uuid.New()
	req := withDevice(httptest.NewRequest(http.MethodGet, "/api/v1/notifications/history?limit=9999", nil), deviceID)
	resp := httptest.NewRecorder()
	GetNotificationHistory(&testNotifyService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
