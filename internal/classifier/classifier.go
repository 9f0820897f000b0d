package classifier

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
)

// Candidate is one category the classifier can pick from.
type Candidate struct {
	CategoryID string
	NameEN     string
	NameTH     string
	Keywords   []string
}

// Result is a classification outcome. Confidence is 0..1.
type Result struct {
	CategoryID string  `json:"categoryId"`
	Confidence float64 `json:"confidence"`
}

// Classifier picks a waste category for an input. Implementations must be
// safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, input string) (Result, error)
}

// Random stands in for the camera "AI scanner". It picks a uniform random
// candidate with a plausible-looking confidence; a real vision model slots
// in behind the same interface later.
type Random struct {
	mu         sync.Mutex
	rng        *rand.Rand
	candidates []Candidate
}

// NewRandom seeds the demo classifier. A zero seed falls back to a fixed
// one so demo behavior is reproducible.
func NewRandom(candidates []Candidate, seed int64) (*Random, error) {
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "classifier needs candidates")
	}
	if seed == 0 {
		seed = 42
	}
	return &Random{
		rng:        rand.New(rand.NewSource(seed)),
		candidates: candidates,
	}, nil
}

func (r *Random) Classify(ctx context.Context, _ string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pick := r.candidates[r.rng.Intn(len(r.candidates))]
	confidence := 0.6 + r.rng.Float64()*0.35
	return Result{CategoryID: pick.CategoryID, Confidence: confidence}, nil
}

// Keyword matches a speech transcript against category names and keywords,
// Thai and English, case-normalized, picking the candidate with the most
// token overlap.
type Keyword struct {
	candidates []Candidate
}

// NewKeyword builds the transcript matcher.
func NewKeyword(candidates []Candidate) (*Keyword, error) {
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "classifier needs candidates")
	}
	return &Keyword{candidates: candidates}, nil
}

func (k *Keyword) Classify(ctx context.Context, input string) (Result, error) {
	transcript := strings.ToLower(strings.TrimSpace(input))
	if transcript == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "empty transcript")
	}

	type scored struct {
		id    string
		score int
		terms int
	}
	best := scored{}
	for _, candidate := range k.candidates {
		terms := matchTerms(candidate)
		score := 0
		for _, term := range terms {
			if strings.Contains(transcript, term) {
				score++
			}
		}
		// Ties go to the earlier catalog entry; sort keeps scoring stable
		// regardless of map iteration upstream.
		if score > best.score {
			best = scored{id: candidate.CategoryID, score: score, terms: len(terms)}
		}
	}

	if best.score == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeNotFound, "no category matches transcript")
	}
	confidence := float64(best.score) / float64(best.terms)
	if confidence > 1 {
		confidence = 1
	}
	return Result{CategoryID: best.id, Confidence: confidence}, nil
}

func matchTerms(candidate Candidate) []string {
	seen := map[string]struct{}{}
	var terms []string
	add := func(raw string) {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	add(candidate.NameEN)
	add(candidate.NameTH)
	for _, keyword := range candidate.Keywords {
		add(keyword)
	}
	sort.Strings(terms)
	return terms
}
