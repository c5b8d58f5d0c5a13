// Package sentiment maps review text to calibrated sentiment verdicts using
// a trained model artifact, and aggregates per-review verdicts into a single
// verdict for a movie.
package sentiment

import (
	"fmt"

	"revue/internal/models"
	"revue/pkg/classifier"
	"revue/pkg/textnorm"
)

// Advice strings, one fixed constant per label.
const (
	AdvicePositive = "Recommended — you should watch this movie!"
	AdviceMixed    = "Mixed — audience response is average."
	AdviceNegative = "Not recommended — audience didn't like it."
)

// Scorer converts raw review text into a SentimentResult. It is stateless
// apart from the read-only model artifact and safe for concurrent use.
type Scorer struct {
	model classifier.Model
}

// NewScorer wraps a loaded model artifact.
func NewScorer(model classifier.Model) *Scorer {
	return &Scorer{model: model}
}

// Score normalizes text, vectorizes it in the model's fitted feature space
// and returns the verdict. Empty text is valid input and is scored as
// whatever the classifier predicts for zero-length features. The only error
// path is a model mismatch, which is fatal and never retried.
func (s *Scorer) Score(text string) (models.SentimentResult, error) {
	norm := textnorm.Normalize(text)
	v := s.model.Transform(norm)
	_, pos, err := s.model.PredictProba(v)
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("predict sentiment: %w", err)
	}
	return ResultFromProbability(pos), nil
}

// ResultFromProbability applies the banded thresholds to a positive-class
// probability. Label and star bands are defined independently and do not
// align; both tables are fixed.
func ResultFromProbability(p float64) models.SentimentResult {
	label := LabelFor(p)
	return models.SentimentResult{
		Label:       label,
		Probability: p,
		Stars:       StarsFor(p),
		Advice:      adviceFor(label),
	}
}

// LabelFor maps probability to a label. Band boundaries are half-open:
// exactly 0.60 is Mixed, exactly 0.40 is Negative.
func LabelFor(p float64) models.Label {
	switch {
	case p > 0.60:
		return models.LabelPositive
	case p > 0.40:
		return models.LabelMixed
	default:
		return models.LabelNegative
	}
}

// StarsFor maps probability to a 1..5 star rating. Exactly 0.85 is 4 stars.
func StarsFor(p float64) int {
	switch {
	case p > 0.85:
		return 5
	case p > 0.70:
		return 4
	case p > 0.55:
		return 3
	case p > 0.40:
		return 2
	default:
		return 1
	}
}

func adviceFor(label models.Label) string {
	switch label {
	case models.LabelPositive:
		return AdvicePositive
	case models.LabelMixed:
		return AdviceMixed
	default:
		return AdviceNegative
	}
}
