package questionnaire

import (
	"encoding/json"
	"fmt"
	"os"
)

// Answer is one selectable option with its score contribution.
type Answer struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Question is one calculator item.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Bucket maps a contiguous score range to a category and its advice text.
type Bucket struct {
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
}

// Dataset is the validated questionnaire document served as-is by the API.
type Dataset struct {
	Questions []Question `json:"questions"`
	Buckets   []Bucket   `json:"buckets"`

	answersByQuestion map[string]map[string]Answer
}

// defaultDataset ships with the binary; a JSON file can override it.
var defaultDataset = Dataset{
	Questions: []Question{
		{
			ID:   "q1",
			Text: "How do you usually get to work or school?",
			Answers: []Answer{
				{ID: "a1", Text: "Private car, alone", Value: 5},
				{ID: "a2", Text: "Motorbike", Value: 4},
				{ID: "a3", Text: "BTS/MRT or bus", Value: 2},
				{ID: "a4", Text: "Walk or bicycle", Value: 0},
			},
		},
		{
			ID:   "q2",
			Text: "How often do you eat imported or beef-based meals?",
			Answers: []Answer{
				{ID: "a1", Text: "Most days", Value: 5},
				{ID: "a2", Text: "A few times a week", Value: 3},
				{ID: "a3", Text: "Rarely, mostly local food", Value: 1},
			},
		},
		{
			ID:   "q3",
			Text: "How do you handle recyclables at home?",
			Answers: []Answer{
				{ID: "a1", Text: "Everything goes in one bin", Value: 5},
				{ID: "a2", Text: "I separate sometimes", Value: 3},
				{ID: "a3", Text: "I separate and drop off regularly", Value: 0},
			},
		},
		{
			ID:   "q4",
			Text: "How do you cool your home in the hot season?",
			Answers: []Answer{
				{ID: "a1", Text: "Air conditioning most of the day", Value: 5},
				{ID: "a2", Text: "Air conditioning at night only", Value: 3},
				{ID: "a3", Text: "Fans and shade", Value: 1},
			},
		},
	},
	Buckets: []Bucket{
		{Min: 0, Max: 5, Category: "low", Recommendation: "Excellent! Your footprint is already light. Keep logging your waste to hold the line."},
		{Min: 6, Max: 12, Category: "moderate", Recommendation: "A solid base. Try swapping one car trip a week for the BTS and separating recyclables."},
		{Min: 13, Max: 20, Category: "high", Recommendation: "There is real room to improve. Start with waste separation; the app will track your credits."},
	},
}

// Load builds the dataset from the JSON file at path, or from the built-in
// document when path is empty. Validation failures stop startup.
func Load(path string) (*Dataset, error) {
	dataset := defaultDataset
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read questionnaire file: %w", err)
		}
		var loaded Dataset
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse questionnaire file: %w", err)
		}
		dataset = loaded
	}
	if err := dataset.validate(); err != nil {
		return nil, err
	}
	dataset.index()
	return &dataset, nil
}

// validate enforces the closed-document rules: unique IDs, non-empty
// answers, buckets covering the whole reachable score range with no gaps.
func (d *Dataset) validate() error {
	if len(d.Questions) == 0 {
		return fmt.Errorf("questionnaire has no questions")
	}

	maxScore := 0
	questionIDs := map[string]struct{}{}
	for _, question := range d.Questions {
		if question.ID == "" {
			return fmt.Errorf("question with empty id")
		}
		if _, dup := questionIDs[question.ID]; dup {
			return fmt.Errorf("duplicate question id %q", question.ID)
		}
		questionIDs[question.ID] = struct{}{}

		if len(question.Answers) == 0 {
			return fmt.Errorf("question %q has no answers", question.ID)
		}
		answerIDs := map[string]struct{}{}
		best := 0
		for _, answer := range question.Answers {
			if answer.ID == "" {
				return fmt.Errorf("question %q has an answer with empty id", question.ID)
			}
			if _, dup := answerIDs[answer.ID]; dup {
				return fmt.Errorf("question %q has duplicate answer id %q", question.ID, answer.ID)
			}
			answerIDs[answer.ID] = struct{}{}
			if answer.Value < 0 {
				return fmt.Errorf("question %q answer %q has negative value", question.ID, answer.ID)
			}
			if answer.Value > best {
				best = answer.Value
			}
		}
		maxScore += best
	}

	if len(d.Buckets) == 0 {
		return fmt.Errorf("questionnaire has no score buckets")
	}
	expected := 0
	for _, bucket := range d.Buckets {
		if bucket.Min != expected {
			return fmt.Errorf("bucket %q starts at %d, expected %d", bucket.Category, bucket.Min, expected)
		}
		if bucket.Max < bucket.Min {
			return fmt.Errorf("bucket %q has max below min", bucket.Category)
		}
		if bucket.Category == "" || bucket.Recommendation == "" {
			return fmt.Errorf("bucket starting at %d missing category or recommendation", bucket.Min)
		}
		expected = bucket.Max + 1
	}
	if expected <= maxScore {
		return fmt.Errorf("buckets cover scores up to %d but %d is reachable", expected-1, maxScore)
	}
	return nil
}

func (d *Dataset) index() {
	d.answersByQuestion = make(map[string]map[string]Answer, len(d.Questions))
	for _, question := range d.Questions {
		answers := make(map[string]Answer, len(question.Answers))
		for _, answer := range question.Answers {
			answers[answer.ID] = answer
		}
		d.answersByQuestion[question.ID] = answers
	}
}

// Answer resolves a question/answer pair against the document.
func (d *Dataset) Answer(questionID, answerID string) (Answer, bool) {
	answers, ok := d.answersByQuestion[questionID]
	if !ok {
		return Answer{}, false
	}
	answer, ok := answers[answerID]
	return answer, ok
}

// BucketFor returns the bucket containing the given score. Scores past the
// last bucket clamp into it, since validation guarantees full coverage of
// the reachable range.
func (d *Dataset) BucketFor(score int) Bucket {
	for _, bucket := range d.Buckets {
		if score >= bucket.Min && score <= bucket.Max {
			return bucket
		}
	}
	return d.Buckets[len(d.Buckets)-1]
}
