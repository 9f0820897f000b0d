package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type fakeLimiterStore struct {
	count     int64
	err       error
	lastScope string
}

func (f *fakeLimiterStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.lastScope = scope
	if f.err != nil {
		return false, 0, f.err
	}
	f.count++
	return f.count <= limit, f.count, nil
}

func TestRateLimitAllowsUnderBudget(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := &fakeLimiterStore{}
	handler := RateLimit(NewRateLimitPolicy(time.Minute, 2), store, logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	deviceID := uuid.NewString()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
		req = req.WithContext(WithDeviceID(req.Context(), deviceID))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204 got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	req = req.WithContext(WithDeviceID(req.Context(), deviceID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over budget, got %d", resp.Code)
	}

	if store.lastScope != "device:"+deviceID {
		t.Fatalf("unexpected limiter scope %q", store.lastScope)
	}
}

func TestRateLimitSkipsWithoutDeviceContext(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := &fakeLimiterStore{}
	handler := RateLimit(NewRateLimitPolicy(time.Minute, 1), store, logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through without device context, got %d", resp.Code)
	}
	if store.lastScope != "" {
		t.Fatalf("limiter should not be consulted, saw scope %q", store.lastScope)
	}
}

func TestRateLimitStoreFailureIsDependencyError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	store := &fakeLimiterStore{err: errors.New("redis down")}
	handler := RateLimit(NewRateLimitPolicy(time.Minute, 1), store, logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	req = req.WithContext(WithDeviceID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on limiter failure, got %d", resp.Code)
	}
}

func TestRateLimitDisabledPolicyIsNoop(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := RateLimit(NewRateLimitPolicy(0, 0), nil, logg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil)
	req = req.WithContext(WithDeviceID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through for disabled policy, got %d", resp.Code)
	}
}
