package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"revue/internal/models"
	"revue/internal/recommend"
	"revue/internal/store"
)

// RecommendService serves title similarity lookups and per-user hybrid
// recommendations over the stored movie corpus. The content index is built
// lazily from the movie table and rebuilt on demand.
type RecommendService struct {
	movies  store.MovieStore
	ratings store.RatingStore

	vectors   store.VectorStore
	embedding store.EmbeddingService

	maxFeatures   int
	weights       recommend.Weights
	likeThreshold float64

	mu    sync.RWMutex
	index *recommend.ContentIndex
}

type RecommendOptions struct {
	MaxFeatures   int
	Weights       recommend.Weights
	LikeThreshold float64
}

func NewRecommendService(movies store.MovieStore, ratings store.RatingStore, vectors store.VectorStore, embedding store.EmbeddingService, opts RecommendOptions) *RecommendService {
	if opts.LikeThreshold <= 0 {
		opts.LikeThreshold = 4.0
	}
	zero := recommend.Weights{}
	if opts.Weights == zero {
		opts.Weights = recommend.DefaultWeights
	}
	return &RecommendService{
		movies:        movies,
		ratings:       ratings,
		vectors:       vectors,
		embedding:     embedding,
		maxFeatures:   opts.MaxFeatures,
		weights:       opts.Weights,
		likeThreshold: opts.LikeThreshold,
	}
}

// RefreshIndex rebuilds the content index from the movie table. It is called
// automatically on first use and should be called again after bulk imports.
func (s *RecommendService) RefreshIndex(ctx context.Context) error {
	const pageSize = 500
	var corpus []models.Movie
	for offset := 0; ; offset += pageSize {
		page, err := s.movies.ListMovies(ctx, pageSize, offset)
		if err != nil {
			return fmt.Errorf("load movie corpus: %w", err)
		}
		for _, m := range page {
			corpus = append(corpus, *m)
		}
		if len(page) < pageSize {
			break
		}
	}

	ix := recommend.BuildContentIndex(corpus, recommend.IndexOptions{MaxFeatures: s.maxFeatures})

	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
	log.Debugf("content index rebuilt over %d movies (%d terms)", ix.Len(), ix.Dim())
	return nil
}

func (s *RecommendService) contentIndex(ctx context.Context) (*recommend.ContentIndex, error) {
	s.mu.RLock()
	ix := s.index
	s.mu.RUnlock()
	if ix != nil {
		return ix, nil
	}
	if err := s.RefreshIndex(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, nil
}

// SimilarByTitle returns up to k movies whose overviews are most similar to
// the titled movie. An unknown title yields an empty slice.
func (s *RecommendService) SimilarByTitle(ctx context.Context, title string, k int) ([]models.Recommendation, error) {
	ix, err := s.contentIndex(ctx)
	if err != nil {
		return nil, err
	}
	return ix.Nearest(title, k), nil
}

// SemanticSimilar finds the movies nearest to the given movie's stored
// embedding. It requires the optional vector backend and falls back to an
// error, not lexical similarity, so callers can decide.
func (s *RecommendService) SemanticSimilar(ctx context.Context, movieID int64, k int) ([]models.Recommendation, error) {
	if s.vectors == nil {
		return nil, fmt.Errorf("semantic similarity backend is not configured")
	}
	entry, err := s.vectors.GetEmbeddingByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("embedding for movie %d: %w", movieID, err)
	}

	// k+1 because the movie itself is its own nearest neighbour.
	results, err := s.vectors.SimilaritySearch(ctx, vectorOf(entry), k+1)
	if err != nil {
		return nil, err
	}
	out := make([]models.Recommendation, 0, k)
	for _, r := range results {
		if r.MovieID == movieID {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// RecommendForUser blends content, collaborative and sentiment-affinity
// scores over every movie the user has not rated and returns the top n.
func (s *RecommendService) RecommendForUser(ctx context.Context, userID int64, n int) ([]models.Recommendation, error) {
	if n <= 0 {
		n = 10
	}
	ix, err := s.contentIndex(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.ratings.ListRatings(ctx)
	if err != nil {
		return nil, err
	}

	profile, rated := s.buildProfile(userID, all, ix)
	predictor := recommend.FitBaseline(all)

	candidates := make([]int64, 0, ix.Len())
	for row := 0; row < ix.Len(); row++ {
		id := ix.Movie(row).ID
		if !rated[id] {
			candidates = append(candidates, id)
		}
	}

	scores := recommend.HybridScores(profile, candidates, ix, predictor, s.weights)

	type scored struct {
		id    int64
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, id := range candidates {
		ranked[i] = scored{id: id, score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if n > len(ranked) {
		n = len(ranked)
	}

	out := make([]models.Recommendation, 0, n)
	for _, r := range ranked[:n] {
		row, _ := ix.RowByID(r.id)
		out = append(out, models.Recommendation{MovieID: r.id, Title: ix.Movie(row).Title, Score: r.score})
	}
	return out, nil
}

// buildProfile derives the user's liked-movie rows and sentiment mean from
// their rating history. Users with no scored history get a neutral 0.5.
func (s *RecommendService) buildProfile(userID int64, all []models.Rating, ix *recommend.ContentIndex) (models.UserProfile, map[int64]bool) {
	profile := models.UserProfile{UserID: userID, SentimentMean: 0.5}
	rated := make(map[int64]bool)

	var sentimentSum float64
	var sentimentN int
	for _, r := range all {
		if r.UserID != userID {
			continue
		}
		rated[r.MovieID] = true
		row, ok := ix.RowByID(r.MovieID)
		if !ok {
			continue
		}
		if r.Rating >= s.likeThreshold {
			profile.LikedMovieRows = append(profile.LikedMovieRows, row)
		}
		if ms := ix.Movie(row).MeanSentiment; ms != nil {
			sentimentSum += *ms
			sentimentN++
		}
	}
	if sentimentN > 0 {
		profile.SentimentMean = sentimentSum / float64(sentimentN)
	}
	return profile, rated
}
