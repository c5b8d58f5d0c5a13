package sentiment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/models"
	"revue/internal/sentiment"
	"revue/pkg/classifier"
)

// stubModel satisfies classifier.Model with a caller-chosen probability per
// normalized input, so band behavior can be pinned exactly.
type stubModel struct {
	prob func(norm string) float64
	err  error
}

func (m stubModel) Transform(text string) classifier.FeatureVector {
	return classifier.FeatureVector{Indices: []int{0}, Values: []float64{m.prob(text)}, Dim: 1}
}

func (m stubModel) PredictProba(v classifier.FeatureVector) (float64, float64, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	p := v.Values[0]
	return 1 - p, p, nil
}

func (m stubModel) Dimension() int { return 1 }

func fixedProb(p float64) stubModel {
	return stubModel{prob: func(string) float64 { return p }}
}

func TestScoreBands(t *testing.T) {
	tests := []struct {
		prob      float64
		wantLabel models.Label
		wantStars int
	}{
		{0.95, models.LabelPositive, 5},
		{0.86, models.LabelPositive, 5},
		// Exactly 0.85 is 4 stars, not 5.
		{0.85, models.LabelPositive, 4},
		{0.72, models.LabelPositive, 4},
		{0.61, models.LabelPositive, 3},
		// Exactly 0.60 is Mixed, not Positive.
		{0.60, models.LabelMixed, 3},
		{0.55, models.LabelMixed, 2},
		{0.45, models.LabelMixed, 2},
		// Exactly 0.40 is Negative.
		{0.40, models.LabelNegative, 1},
		{0.05, models.LabelNegative, 1},
		{0.0, models.LabelNegative, 1},
	}

	for _, tt := range tests {
		scorer := sentiment.NewScorer(fixedProb(tt.prob))
		res, err := scorer.Score("some review text")
		require.NoError(t, err)
		assert.Equal(t, tt.wantLabel, res.Label, "probability %v", tt.prob)
		assert.Equal(t, tt.wantStars, res.Stars, "probability %v", tt.prob)
		assert.Equal(t, tt.prob, res.Probability)
	}
}

func TestScoreAdviceConstants(t *testing.T) {
	res, err := sentiment.NewScorer(fixedProb(0.9)).Score("x")
	require.NoError(t, err)
	assert.Equal(t, sentiment.AdvicePositive, res.Advice)

	res, err = sentiment.NewScorer(fixedProb(0.5)).Score("x")
	require.NoError(t, err)
	assert.Equal(t, sentiment.AdviceMixed, res.Advice)

	res, err = sentiment.NewScorer(fixedProb(0.1)).Score("x")
	require.NoError(t, err)
	assert.Equal(t, sentiment.AdviceNegative, res.Advice)
}

func TestScoreEmptyTextIsValid(t *testing.T) {
	scorer := sentiment.NewScorer(fixedProb(0.5))
	res, err := scorer.Score("")
	require.NoError(t, err)
	assert.Equal(t, models.LabelMixed, res.Label)
	assert.Equal(t, 2, res.Stars)
}

func TestScoreNormalizesBeforeTransform(t *testing.T) {
	var seen string
	m := stubModel{prob: func(norm string) float64 {
		seen = norm
		return 0.7
	}}
	_, err := sentiment.NewScorer(m).Score("Those ACTORS, those MOVIES!!!")
	require.NoError(t, err)
	assert.Equal(t, "actor movie", seen)
}

func TestScorePropagatesModelMismatch(t *testing.T) {
	m := stubModel{prob: func(string) float64 { return 0 }, err: models.ErrModelMismatch}
	_, err := sentiment.NewScorer(m).Score("whatever")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelMismatch)
}

func TestScoreWithRealLinearModel(t *testing.T) {
	vocab := map[string]int{"great": 0, "awful": 1}
	m, err := classifier.New(vocab, []float64{1, 1}, []float64{4, -4}, 0, 1)
	require.NoError(t, err)

	scorer := sentiment.NewScorer(m)
	res, err := scorer.Score("A truly GREAT film! http://spam.example.com")
	require.NoError(t, err)
	assert.Equal(t, models.LabelPositive, res.Label)

	res, err = scorer.Score("Just awful.")
	require.NoError(t, err)
	assert.Equal(t, models.LabelNegative, res.Label)
}
