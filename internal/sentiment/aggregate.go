package sentiment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"revue/internal/models"
)

// Aggregator scores every review of one subject and combines the results.
type Aggregator struct {
	scorer *Scorer
}

// NewAggregator wraps a Scorer.
func NewAggregator(scorer *Scorer) *Aggregator {
	return &Aggregator{scorer: scorer}
}

// Aggregate scores each review independently and returns exact per-label
// tallies plus the verdict for the arithmetic-mean probability. The
// aggregate label and stars reuse the single-review bands applied to that
// mean, not a majority vote. An empty review set is an error, never a
// fabricated neutral verdict — this differs from scoring a single empty
// string, which is valid.
//
// The returned verdict reflects the complete set: nothing is published
// until every review has been scored.
func (a *Aggregator) Aggregate(reviews []string) (models.AggregateVerdict, error) {
	if len(reviews) == 0 {
		return models.AggregateVerdict{}, models.ErrEmptyReviewSet
	}

	verdict := models.AggregateVerdict{
		ID:          uuid.New(),
		ReviewCount: len(reviews),
		ComputedAt:  time.Now().UTC(),
	}

	var sum float64
	for i, body := range reviews {
		res, err := a.scorer.Score(body)
		if err != nil {
			return models.AggregateVerdict{}, fmt.Errorf("score review %d of %d: %w", i+1, len(reviews), err)
		}
		sum += res.Probability
		switch res.Label {
		case models.LabelPositive:
			verdict.PositiveCount++
		case models.LabelMixed:
			verdict.MixedCount++
		case models.LabelNegative:
			verdict.NegativeCount++
		}
	}

	verdict.MeanProbability = sum / float64(len(reviews))
	verdict.Label = LabelFor(verdict.MeanProbability)
	verdict.Stars = StarsFor(verdict.MeanProbability)
	return verdict, nil
}
