package classifier_test

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/models"
	"revue/pkg/classifier"
)

func testModel(t *testing.T) *classifier.LinearModel {
	t.Helper()
	vocab := map[string]int{
		"great":       0,
		"terrible":    1,
		"movie":       2,
		"great movie": 3,
	}
	idf := []float64{1.0, 1.0, 1.0, 1.5}
	coef := []float64{3.0, -3.0, 0.1, 2.0}
	m, err := classifier.New(vocab, idf, coef, 0.0, 2)
	require.NoError(t, err)
	return m
}

func TestNewRejectsMismatchedDimensions(t *testing.T) {
	vocab := map[string]int{"great": 0, "terrible": 1}
	_, err := classifier.New(vocab, []float64{1.0, 1.0}, []float64{1.0}, 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelMismatch)

	_, err = classifier.New(map[string]int{}, nil, nil, 0, 1)
	require.Error(t, err)
}

func TestTransform(t *testing.T) {
	m := testModel(t)

	v := m.Transform("great movie")
	assert.Equal(t, 4, v.Dim)
	// Unigrams "great" and "movie" plus the bigram "great movie".
	assert.Equal(t, []int{0, 2, 3}, v.Indices)

	// L2-normalized.
	var sumSq float64
	for _, x := range v.Values {
		sumSq += x * x
	}
	assert.InDelta(t, 1.0, sumSq, 1e-12)

	// Out-of-vocabulary terms are dropped, empty text yields a zero vector.
	empty := m.Transform("completely unseen words")
	assert.Empty(t, empty.Indices)
	assert.Equal(t, 4, empty.Dim)
	assert.Empty(t, m.Transform("").Indices)
}

func TestTransformDeterministic(t *testing.T) {
	m := testModel(t)
	first := m.Transform("great great terrible movie")
	for i := 0; i < 5; i++ {
		again := m.Transform("great great terrible movie")
		assert.Equal(t, first.Indices, again.Indices)
		assert.Equal(t, first.Values, again.Values)
	}
}

func TestPredictProba(t *testing.T) {
	m := testModel(t)

	neg, pos, err := m.PredictProba(m.Transform("great"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, neg+pos, 1e-12)
	assert.Greater(t, pos, 0.9)

	_, pos, err = m.PredictProba(m.Transform("terrible"))
	require.NoError(t, err)
	assert.Less(t, pos, 0.1)

	// Zero vector scores at the intercept: sigmoid(0) = 0.5.
	_, pos, err = m.PredictProba(m.Transform(""))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pos, 1e-12)
}

func TestPredictProbaRejectsWrongDimension(t *testing.T) {
	m := testModel(t)
	_, _, err := m.PredictProba(classifier.FeatureVector{Indices: []int{0}, Values: []float64{1}, Dim: 99})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrModelMismatch)
}

func TestLoadArtifact(t *testing.T) {
	artifact := map[string]any{
		"vocabulary": map[string]int{"good": 0, "bad": 1},
		"idf":        []float64{1.2, 1.4},
		"coef":       []float64{2.5, -2.5},
		"intercept":  0.1,
		"ngram_max":  1,
	}
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sentiment_model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	m, err := classifier.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimension())

	_, pos, err := m.PredictProba(m.Transform("good"))
	require.NoError(t, err)
	want := 1.0 / (1.0 + math.Exp(-(2.5 + 0.1)))
	assert.InDelta(t, want, pos, 1e-12)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := classifier.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
