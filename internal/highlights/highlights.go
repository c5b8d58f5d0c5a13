// Package highlights pulls the strongest positive and negative sentences out
// of a review, for display next to the overall verdict.
package highlights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"revue/internal/sentiment"
)

// ScoredSentence is one sentence with its positive-class probability.
type ScoredSentence struct {
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
}

// Extractor segments review text into sentences and scores each one with
// the same model as whole reviews.
type Extractor struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	scorer    *sentiment.Scorer
}

// NewExtractor builds an Extractor over the English sentence tokenizer.
func NewExtractor(scorer *sentiment.Scorer) (*Extractor, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("init sentence tokenizer: %w", err)
	}
	return &Extractor{tokenizer: tokenizer, scorer: scorer}, nil
}

// Extract returns up to n most positive and n most negative sentences of a
// review, each group ordered strongest first. Ties keep sentence order.
// Short fragments (under three words) are skipped as noise.
func (e *Extractor) Extract(text string, n int) (positive, negative []ScoredSentence, err error) {
	if n <= 0 || strings.TrimSpace(text) == "" {
		return nil, nil, nil
	}

	var scored []ScoredSentence
	for _, s := range e.tokenizer.Tokenize(text) {
		body := strings.TrimSpace(s.Text)
		if len(strings.Fields(body)) < 3 {
			continue
		}
		res, err := e.scorer.Score(body)
		if err != nil {
			return nil, nil, fmt.Errorf("score sentence: %w", err)
		}
		scored = append(scored, ScoredSentence{Text: body, Probability: res.Probability})
	}
	if len(scored) == 0 {
		return nil, nil, nil
	}

	byDesc := make([]ScoredSentence, len(scored))
	copy(byDesc, scored)
	sort.SliceStable(byDesc, func(i, j int) bool { return byDesc[i].Probability > byDesc[j].Probability })

	byAsc := make([]ScoredSentence, len(scored))
	copy(byAsc, scored)
	sort.SliceStable(byAsc, func(i, j int) bool { return byAsc[i].Probability < byAsc[j].Probability })

	if n > len(scored) {
		n = len(scored)
	}
	return byDesc[:n], byAsc[:n], nil
}
