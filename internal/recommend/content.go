// Package recommend holds the content similarity engine and the hybrid
// recommendation scorer. The content index is built once per corpus and is
// read-only afterwards; rows stay aligned 1:1 with corpus order.
package recommend

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"revue/internal/models"
	"revue/pkg/textnorm"
)

// DefaultMaxFeatures caps the index vocabulary, matching the overview
// vectorizer used by the offline tooling.
const DefaultMaxFeatures = 10000

// IndexOptions tunes content index construction.
type IndexOptions struct {
	// MaxFeatures caps the vocabulary size; 0 means DefaultMaxFeatures.
	MaxFeatures int
}

// sparseVec is one L2-normalized TF-IDF row. Indices are strictly
// increasing.
type sparseVec struct {
	idx []int
	val []float64
}

// dot computes the inner product of a sparse row with a dense vector.
func (v sparseVec) dot(dense *mat.VecDense) float64 {
	var sum float64
	for i, ix := range v.idx {
		sum += v.val[i] * dense.AtVec(ix)
	}
	return sum
}

// dotSparse computes the inner product of two sparse rows.
func dotSparse(a, b sparseVec) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			sum += a.val[i] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// ContentIndex is a term-weighted vector space over movie overviews.
type ContentIndex struct {
	movies   []models.Movie
	rows     []sparseVec
	titleRow map[string]int
	idRow    map[int64]int
	dim      int
}

// BuildContentIndex vectorizes every movie overview (unigrams + bigrams,
// missing overview treated as empty text) into TF-IDF rows. Vocabulary is
// capped to the most document-frequent terms, ties broken alphabetically so
// builds are deterministic.
func BuildContentIndex(corpus []models.Movie, opts IndexOptions) *ContentIndex {
	maxFeatures := opts.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	docs := make([][]string, len(corpus))
	df := make(map[string]int)
	for i, m := range corpus {
		docs[i] = ngrams(textnorm.Tokens(m.Overview, textnorm.DefaultOptions))
		seen := make(map[string]bool, len(docs[i]))
		for _, term := range docs[i] {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	vocab := capVocabulary(df, maxFeatures)

	ix := &ContentIndex{
		movies:   corpus,
		rows:     make([]sparseVec, len(corpus)),
		titleRow: make(map[string]int, len(corpus)),
		idRow:    make(map[int64]int, len(corpus)),
		dim:      len(vocab),
	}

	n := float64(len(corpus))
	idf := make([]float64, len(vocab))
	for term, col := range vocab {
		idf[col] = logIDF(n, float64(df[term]))
	}

	for i, terms := range docs {
		ix.rows[i] = vectorizeRow(terms, vocab, idf)
	}
	for i, m := range corpus {
		key := strings.ToLower(m.Title)
		if _, dup := ix.titleRow[key]; !dup {
			ix.titleRow[key] = i
		}
		if _, dup := ix.idRow[m.ID]; !dup {
			ix.idRow[m.ID] = i
		}
	}
	return ix
}

// Len returns the corpus size.
func (ix *ContentIndex) Len() int { return len(ix.movies) }

// Dim returns the vocabulary size.
func (ix *ContentIndex) Dim() int { return ix.dim }

// Movie returns the corpus entry at a row.
func (ix *ContentIndex) Movie(row int) models.Movie { return ix.movies[row] }

// RowByID returns the corpus row for a movie ID.
func (ix *ContentIndex) RowByID(id int64) (int, bool) {
	row, ok := ix.idRow[id]
	return row, ok
}

// Nearest returns up to k movies most similar to the titled movie, best
// match first, the target itself excluded. Title matching is
// case-insensitive; an unknown title yields an empty result, not an error.
// Ties keep corpus order.
func (ix *ContentIndex) Nearest(title string, k int) []models.Recommendation {
	target, ok := ix.titleRow[strings.ToLower(title)]
	if !ok || k <= 0 {
		return nil
	}

	type scored struct {
		row int
		sim float64
	}
	candidates := make([]scored, 0, len(ix.rows)-1)
	for row := range ix.rows {
		if row == target {
			continue
		}
		candidates = append(candidates, scored{row: row, sim: dotSparse(ix.rows[target], ix.rows[row])})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]models.Recommendation, 0, k)
	for _, c := range candidates[:k] {
		m := ix.movies[c.row]
		out = append(out, models.Recommendation{MovieID: m.ID, Title: m.Title, Score: c.sim})
	}
	return out
}

// profileVector averages the rows for a set of corpus indices into one
// dense, L2-normalized user profile vector. Returns nil when no valid rows
// remain.
func (ix *ContentIndex) profileVector(rowIdxs []int) *mat.VecDense {
	if ix.dim == 0 {
		return nil
	}
	acc := make([]float64, ix.dim)
	used := 0
	for _, r := range rowIdxs {
		if r < 0 || r >= len(ix.rows) {
			continue
		}
		row := ix.rows[r]
		for i, col := range row.idx {
			acc[col] += row.val[i]
		}
		used++
	}
	if used == 0 {
		return nil
	}
	floats.Scale(1/float64(used), acc)
	norm := floats.Norm(acc, 2)
	if norm == 0 {
		return nil
	}
	floats.Scale(1/norm, acc)
	return mat.NewVecDense(ix.dim, acc)
}

// ngrams expands a token slice into unigrams plus bigrams.
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+2 <= len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// capVocabulary keeps the maxFeatures most document-frequent terms and
// assigns column numbers in alphabetical order.
func capVocabulary(df map[string]int, maxFeatures int) map[string]int {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for col, term := range terms {
		vocab[term] = col
	}
	return vocab
}

// logIDF is the smoothed inverse document frequency used for both the index
// and the sentiment vectorizer family: ln((1+n)/(1+df)) + 1.
func logIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

func vectorizeRow(terms []string, vocab map[string]int, idf []float64) sparseVec {
	counts := make(map[int]float64)
	for _, term := range terms {
		if col, ok := vocab[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return sparseVec{}
	}
	row := sparseVec{
		idx: make([]int, 0, len(counts)),
		val: make([]float64, 0, len(counts)),
	}
	for col := range counts {
		row.idx = append(row.idx, col)
	}
	sort.Ints(row.idx)
	for _, col := range row.idx {
		row.val = append(row.val, counts[col]*idf[col])
	}
	norm := floats.Norm(row.val, 2)
	if norm > 0 {
		floats.Scale(1/norm, row.val)
	}
	return row
}
