package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"revue/internal/models"
	"revue/internal/sentiment"
	"revue/internal/store"
)

// AnalysisService recomputes aggregate verdicts from stored reviews.
type AnalysisService struct {
	movies     store.MovieStore
	reviews    store.ReviewStore
	verdicts   store.VerdictStore
	aggregator *sentiment.Aggregator
	scorer     *sentiment.Scorer
}

func NewAnalysisService(movies store.MovieStore, reviews store.ReviewStore, verdicts store.VerdictStore, scorer *sentiment.Scorer) *AnalysisService {
	return &AnalysisService{
		movies:     movies,
		reviews:    reviews,
		verdicts:   verdicts,
		aggregator: sentiment.NewAggregator(scorer),
		scorer:     scorer,
	}
}

// AggregateTexts combines ad-hoc review texts without touching storage.
func (s *AnalysisService) AggregateTexts(reviews []string) (models.AggregateVerdict, error) {
	return s.aggregator.Aggregate(reviews)
}

// AggregateMovie rescores every stored review of the movie, publishes the
// combined verdict and refreshes the movie's mean sentiment. Reviews whose
// per-review score is missing or stale get their stored score refreshed as a
// side effect.
func (s *AnalysisService) AggregateMovie(ctx context.Context, movieID int64) (*models.AggregateVerdict, error) {
	movie, err := s.movies.GetMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}

	reviews, err := s.reviews.ListReviewsByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("movie %d has no reviews: %w", movieID, models.ErrEmptyReviewSet)
	}

	bodies := make([]string, len(reviews))
	for i, r := range reviews {
		bodies[i] = r.Body
	}

	verdict, err := s.aggregator.Aggregate(bodies)
	if err != nil {
		return nil, fmt.Errorf("aggregate movie %d: %w", movieID, err)
	}
	verdict.MovieID = movieID

	// Backfill per-review scores for reviews that were stored unscored.
	for _, r := range reviews {
		if r.Probability != nil {
			continue
		}
		result, err := s.scorer.Score(r.Body)
		if err != nil {
			return nil, fmt.Errorf("score review %d: %w", r.ID, err)
		}
		if err := s.reviews.UpdateReviewScore(ctx, r.ID, result); err != nil {
			log.WithError(err).Warnf("backfill score for review %d", r.ID)
		}
	}

	if err := s.verdicts.UpsertVerdict(ctx, &verdict); err != nil {
		return nil, err
	}
	if err := s.movies.UpdateMeanSentiment(ctx, movieID, verdict.MeanProbability); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"movie": movie.Title,
		"label": verdict.Label,
		"mean":  fmt.Sprintf("%.4f", verdict.MeanProbability),
	}).Info("published aggregate verdict")
	return &verdict, nil
}

// Verdict returns the stored verdict for a movie.
func (s *AnalysisService) Verdict(ctx context.Context, movieID int64) (*models.AggregateVerdict, error) {
	return s.verdicts.GetVerdict(ctx, movieID)
}
