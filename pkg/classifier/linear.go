package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"revue/internal/models"
)

// artifactFile is the on-disk JSON layout exported by the offline training
// step: the fitted vectorizer (vocabulary + idf) and the fitted logistic
// regression (coefficients + intercept).
type artifactFile struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Coef       []float64      `json:"coef"`
	Intercept  float64        `json:"intercept"`
	NgramMax   int            `json:"ngram_max"`
}

// LinearModel is a TF-IDF vectorizer plus a logistic regression, both
// immutable after load. Safe for unlimited concurrent readers.
type LinearModel struct {
	vocab     map[string]int
	idf       []float64
	coef      []float64
	intercept float64
	ngramMax  int
}

// Load reads a model artifact from path and validates that the vectorizer
// and classifier agree on feature dimensionality. A disagreement means the
// artifact is corrupted or mixes versions, and surfaces as ErrModelMismatch.
func Load(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var af artifactFile
	if err := json.Unmarshal(raw, &af); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return New(af.Vocabulary, af.IDF, af.Coef, af.Intercept, af.NgramMax)
}

// New builds a LinearModel from fitted parameters.
func New(vocab map[string]int, idf, coef []float64, intercept float64, ngramMax int) (*LinearModel, error) {
	if len(vocab) == 0 {
		return nil, fmt.Errorf("model artifact has an empty vocabulary: %w", models.ErrValidation)
	}
	if len(idf) != len(vocab) || len(coef) != len(idf) {
		return nil, fmt.Errorf("vectorizer dimension %d, idf %d, classifier %d: %w",
			len(vocab), len(idf), len(coef), models.ErrModelMismatch)
	}
	for term, idx := range vocab {
		if idx < 0 || idx >= len(idf) {
			return nil, fmt.Errorf("vocabulary term %q maps outside feature space: %w", term, models.ErrModelMismatch)
		}
	}
	if ngramMax < 1 {
		ngramMax = 1
	}
	log.Infof("sentiment model loaded: %d features, ngram range (1,%d)", len(vocab), ngramMax)
	return &LinearModel{
		vocab:     vocab,
		idf:       idf,
		coef:      coef,
		intercept: intercept,
		ngramMax:  ngramMax,
	}, nil
}

// Dimension returns the fitted feature-space size.
func (m *LinearModel) Dimension() int { return len(m.idf) }

// Transform vectorizes normalized text: n-gram term counts over the fitted
// vocabulary, idf-weighted and L2-normalized, matching the scheme used at
// training time. Terms outside the vocabulary are dropped.
func (m *LinearModel) Transform(text string) FeatureVector {
	counts := make(map[int]float64)
	if text != "" {
		tokens := strings.Split(text, " ")
		for n := 1; n <= m.ngramMax; n++ {
			for i := 0; i+n <= len(tokens); i++ {
				term := strings.Join(tokens[i:i+n], " ")
				if idx, ok := m.vocab[term]; ok {
					counts[idx]++
				}
			}
		}
	}

	v := FeatureVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
		Dim:     len(m.idf),
	}
	for idx := range counts {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)

	var sumSq float64
	for _, idx := range v.Indices {
		w := counts[idx] * m.idf[idx]
		v.Values = append(v.Values, w)
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v
}

// PredictProba applies the logistic regression to a feature vector.
func (m *LinearModel) PredictProba(v FeatureVector) (neg, pos float64, err error) {
	if v.Dim != len(m.coef) {
		return 0, 0, fmt.Errorf("feature vector dimension %d, classifier expects %d: %w",
			v.Dim, len(m.coef), models.ErrModelMismatch)
	}
	z := m.intercept
	for i, idx := range v.Indices {
		if idx < 0 || idx >= len(m.coef) {
			return 0, 0, fmt.Errorf("feature index %d outside classifier space: %w", idx, models.ErrModelMismatch)
		}
		z += m.coef[idx] * v.Values[i]
	}
	pos = 1.0 / (1.0 + math.Exp(-z))
	return 1.0 - pos, pos, nil
}
