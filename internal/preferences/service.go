package preferences

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
)

// Service defines preference read/replace operations.
type Service interface {
	Get(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error)
	Update(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference) (*models.NotificationPreference, error)
	Reset(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error)
}

type service struct {
	repo Repository
}

// NewService wires preferences dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preferences repository required")
	}
	return &service{repo: repo}, nil
}

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClock reports whether value is an HH:MM wall-clock string.
func ValidClock(value string) bool {
	return clockRe.MatchString(value)
}

// Get returns the device's record, creating defaults on first read.
func (s *service) Get(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	prefs, err := s.repo.Find(ctx, deviceID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preferences")
	}

	created := Defaults(deviceID)
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	if err := s.repo.Upsert(ctx, &created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default preferences")
	}
	return &created, nil
}

// Update replaces the whole record after validation. Partial updates are not
// supported; callers send the full preference set.
func (s *service) Update(ctx context.Context, deviceID uuid.UUID, prefs models.NotificationPreference) (*models.NotificationPreference, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	if err := validate(prefs); err != nil {
		return nil, err
	}

	prefs.DeviceID = deviceID
	prefs.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, &prefs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save preferences")
	}
	return &prefs, nil
}

// Reset overwrites the record with defaults. Records are never deleted.
func (s *service) Reset(ctx context.Context, deviceID uuid.UUID) (*models.NotificationPreference, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	prefs := Defaults(deviceID)
	prefs.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, &prefs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset preferences")
	}
	return &prefs, nil
}

func validate(prefs models.NotificationPreference) error {
	details := map[string]string{}

	for field, value := range map[string]string{
		"morningTime":      prefs.MorningTime,
		"eveningTime":      prefs.EveningTime,
		"weeklyReportTime": prefs.WeeklyReportTime,
		"quietHoursStart":  prefs.QuietHoursStart,
		"quietHoursEnd":    prefs.QuietHoursEnd,
	} {
		if !ValidClock(value) {
			details[field] = "must be HH:MM"
		}
	}
	for _, value := range prefs.CustomTimes {
		if !ValidClock(value) {
			details["customTimes"] = "every entry must be HH:MM"
			break
		}
	}
	if !prefs.ReminderFrequency.IsValid() {
		details["reminderFrequency"] = "must be once, twice or custom"
	}
	if prefs.ReminderFrequency == enums.ReminderFrequencyCustom && len(prefs.CustomTimes) == 0 {
		details["customTimes"] = "at least one time required for custom frequency"
	}
	if !enums.IsValidWeekday(prefs.WeeklyReportDay) {
		details["weeklyReportDay"] = "must be a weekday name"
	}
	if prefs.MaxNotificationsPerDay < 1 {
		details["maxNotificationsPerDay"] = "must be at least 1"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid preferences").WithDetails(details)
	}
	return nil
}
