package questionnaire

import (
	"context"

	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
)

// Service defines questionnaire operations.
type Service interface {
	Document(ctx context.Context) *Dataset
	Score(ctx context.Context, answers []AnswerInput) (*ScoreResult, error)
}

// AnswerInput is one submitted question/answer pair.
type AnswerInput struct {
	QuestionID string `json:"questionId" validate:"required"`
	AnswerID   string `json:"answerId" validate:"required"`
}

// ScoreResult is the computed breakdown returned to the caller.
type ScoreResult struct {
	TotalScore     int              `json:"totalScore"`
	ScoreCategory  string           `json:"scoreCategory"`
	Recommendation string           `json:"recommendation"`
	Breakdown      []AnswerBreakdown `json:"breakdown"`
}

// AnswerBreakdown echoes each answer's contribution.
type AnswerBreakdown struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId"`
	Value      int    `json:"value"`
}

type service struct {
	dataset *Dataset
}

// NewService wires questionnaire dependencies.
func NewService(dataset *Dataset) (Service, error) {
	if dataset == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "questionnaire dataset required")
	}
	return &service{dataset: dataset}, nil
}

func (s *service) Document(_ context.Context) *Dataset {
	return s.dataset
}

// Score sums the submitted answers' values and buckets the total. Unknown
// question or answer ids reject the whole submission.
func (s *service) Score(_ context.Context, answers []AnswerInput) (*ScoreResult, error) {
	if len(answers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "answers required")
	}

	seen := map[string]struct{}{}
	total := 0
	breakdown := make([]AnswerBreakdown, 0, len(answers))
	for _, input := range answers {
		if _, dup := seen[input.QuestionID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate answer for question").
				WithDetails(map[string]string{"questionId": input.QuestionID})
		}
		seen[input.QuestionID] = struct{}{}

		answer, ok := s.dataset.Answer(input.QuestionID, input.AnswerID)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown question or answer").
				WithDetails(map[string]string{"questionId": input.QuestionID, "answerId": input.AnswerID})
		}
		total += answer.Value
		breakdown = append(breakdown, AnswerBreakdown{
			QuestionID: input.QuestionID,
			AnswerID:   input.AnswerID,
			Value:      answer.Value,
		})
	}

	bucket := s.dataset.BucketFor(total)
	return &ScoreResult{
		TotalScore:     total,
		ScoreCategory:  bucket.Category,
		Recommendation: bucket.Recommendation,
		Breakdown:      breakdown,
	}, nil
}
