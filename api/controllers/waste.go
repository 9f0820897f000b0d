package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/api/validators"
	"github.com/ecotrackth/ecotrack-backend/internal/classifier"
	"github.com/ecotrackth/ecotrack-backend/internal/waste"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/ecotrackth/ecotrack-backend/pkg/pagination"
)

const (
	defaultEntriesLimit = 20
	maxEntriesLimit     = 100
	maxTranscriptLen    = 500
)

type createEntryRequest struct {
	CategoryID string          `json:"categoryId" validate:"required"`
	Method     string          `json:"method" validate:"required"`
	WeightKg   decimal.Decimal `json:"weightKg" validate:"required"`
}

type classifyRequest struct {
	Transcript string `json:"transcript" validate:"required_without=Simulate"`
	Simulate   bool   `json:"simulate"`
}

// ListWasteCategories exposes the active category catalog.
func ListWasteCategories(svc waste.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waste service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": svc.Catalog().Categories()})
	}
}

// CreateWasteEntry records one disposal event and awards credits for it.
func CreateWasteEntry(svc waste.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waste service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createEntryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseDisposalMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid disposal method"))
			return
		}

		entry, err := svc.CreateEntry(r.Context(), waste.CreateEntryInput{
			DeviceID:   deviceID,
			CategoryID: body.CategoryID,
			Method:     method,
			WeightKg:   body.WeightKg,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// ListWasteEntries pages through the device's disposal history.
func ListWasteEntries(svc waste.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waste service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultEntriesLimit, 1, maxEntriesLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		result, err := svc.ListEntries(r.Context(), deviceID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// RecentWasteCategories returns the device's most recently used categories.
func RecentWasteCategories(svc waste.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "waste service unavailable"))
			return
		}

		deviceID, err := requestDeviceID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recent, err := svc.RecentCategories(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": recent})
	}
}

// ClassifyWaste maps a voice transcript to the best-matching category. The
// simulate flag routes to the demo scanner instead of the transcript matcher.
func ClassifyWaste(svc waste.Service, clf classifier.Classifier, sim classifier.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || clf == nil || sim == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "classifier unavailable"))
			return
		}

		if _, err := requestDeviceID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body classifyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		engine := clf
		if body.Simulate {
			engine = sim
		}
		transcript := validators.SanitizeString(body.Transcript, maxTranscriptLen)
		result, err := engine.Classify(r.Context(), transcript)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"categoryId": result.CategoryID,
			"confidence": result.Confidence,
		}
		if category, ok := svc.Catalog().Lookup(result.CategoryID); ok {
			payload["categoryNameEn"] = category.NameEN
			payload["categoryNameTh"] = category.NameTH
		}
		responses.WriteSuccess(w, payload)
	}
}
