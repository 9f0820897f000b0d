package waste

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/pagination"
)

// maxWeightKg bounds a single entry; heavier loads are data-entry mistakes.
var maxWeightKg = decimal.NewFromInt(1000)

// entryRecorder feeds each stored entry into the gamification pipeline.
type entryRecorder interface {
	RecordEntry(ctx context.Context, deviceID uuid.UUID, entry models.WasteEntry) error
}

// recencyStore keeps the per-device recently-used category list.
type recencyStore interface {
	PushRecentCategory(ctx context.Context, deviceID, categoryID string) error
	RecentCategories(ctx context.Context, deviceID string) ([]string, error)
}

// Service defines waste entry operations.
type Service interface {
	CreateEntry(ctx context.Context, input CreateEntryInput) (*models.WasteEntry, error)
	ListEntries(ctx context.Context, deviceID uuid.UUID, params pagination.Params) (*ListResult, error)
	RecentCategories(ctx context.Context, deviceID uuid.UUID) ([]string, error)
	Catalog() *Catalog
}

// CreateEntryInput captures one disposal event from the API.
type CreateEntryInput struct {
	DeviceID   uuid.UUID
	CategoryID string
	Method     enums.DisposalMethod
	WeightKg   decimal.Decimal
}

// ListResult wraps returned entries and the cursor for the next page.
type ListResult struct {
	Items  []models.WasteEntry `json:"items"`
	Cursor string              `json:"cursor"`
}

type service struct {
	repo     Repository
	catalog  *Catalog
	recorder entryRecorder
	recent   recencyStore
	logg     *logger.Logger

	now func() time.Time
}

// ServiceParams bundles the dependencies required to build a waste service.
type ServiceParams struct {
	Repo     Repository
	Catalog  *Catalog
	Recorder entryRecorder
	Recent   recencyStore
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService wires waste dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "waste repository required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "category catalog required")
	case params.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:     params.Repo,
		catalog:  params.Catalog,
		recorder: params.Recorder,
		recent:   params.Recent,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Catalog() *Catalog {
	return s.catalog
}

func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.WasteEntry, error) {
	if input.DeviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	category, ok := s.catalog.Lookup(input.CategoryID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown waste category").
			WithDetails(map[string]string{"categoryId": input.CategoryID})
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid disposal method")
	}
	if input.WeightKg.LessThanOrEqual(decimal.Zero) || input.WeightKg.GreaterThan(maxWeightKg) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be between 0 and 1000 kg")
	}

	credits, err := Credits(category, input.Method, input.WeightKg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute credits")
	}

	entry := &models.WasteEntry{
		ID:         uuid.New(),
		DeviceID:   input.DeviceID,
		CategoryID: category.ID,
		Method:     input.Method,
		WeightKg:   input.WeightKg,
		Credits:    credits,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store waste entry")
	}

	if s.recorder != nil {
		if err := s.recorder.RecordEntry(ctx, input.DeviceID, *entry); err != nil {
			return nil, err
		}
	}

	// Recency is a convenience list; losing a push never fails the entry.
	if s.recent != nil {
		if err := s.recent.PushRecentCategory(ctx, input.DeviceID.String(), category.ID); err != nil {
			s.logg.Error(ctx, "recent category push failed", err)
		}
	}

	return entry, nil
}

func (s *service) ListEntries(ctx context.Context, deviceID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}

	query := listEntriesParams{
		DeviceID: deviceID,
		Limit:    params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list waste entries")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) RecentCategories(ctx context.Context, deviceID uuid.UUID) ([]string, error) {
	if deviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id required")
	}
	if s.recent == nil {
		return nil, nil
	}
	recent, err := s.recent.RecentCategories(ctx, deviceID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent categories")
	}
	return recent, nil
}
