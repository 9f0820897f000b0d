package controllers

import (
	"net/http"

	"github.com/ecotrackth/ecotrack-backend/api/responses"
	"github.com/ecotrackth/ecotrack-backend/api/validators"
	"github.com/ecotrackth/ecotrack-backend/internal/questionnaire"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
)

type scoreRequest struct {
	Answers []questionnaire.AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

// GetQuestionnaire serves the carbon footprint questionnaire document.
// Public: onboarding runs before a device identity exists.
func GetQuestionnaire(svc questionnaire.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "questionnaire service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Document(r.Context()))
	}
}

// ScoreQuestionnaire computes the footprint score for a full answer set.
func ScoreQuestionnaire(svc questionnaire.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "questionnaire service unavailable"))
			return
		}

		var body scoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Score(r.Context(), body.Answers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
