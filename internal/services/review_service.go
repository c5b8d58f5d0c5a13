package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"revue/internal/models"
	"revue/internal/sentiment"
	"revue/internal/store"
)

// ReviewService attaches reviews to movies and scores them on the way in.
type ReviewService struct {
	movies    store.MovieStore
	reviews   store.ReviewStore
	scorer    *sentiment.Scorer
	jobClient store.JobClient
}

func NewReviewService(movies store.MovieStore, reviews store.ReviewStore, scorer *sentiment.Scorer, jobClient store.JobClient) *ReviewService {
	return &ReviewService{movies: movies, reviews: reviews, scorer: scorer, jobClient: jobClient}
}

// ScoreText scores a standalone piece of review text without persisting
// anything.
func (s *ReviewService) ScoreText(text string) (models.SentimentResult, error) {
	return s.scorer.Score(text)
}

// AddReview stores a review, scores it synchronously and, when a job client
// is wired, enqueues a re-aggregation of the movie's verdict. The review is
// kept even if scoring fails; the aggregate job will pick it up later.
func (s *ReviewService) AddReview(ctx context.Context, movieID int64, body, source string) (*models.Review, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("review body is empty: %w", models.ErrValidation)
	}
	if _, err := s.movies.GetMovie(ctx, movieID); err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}

	review := &models.Review{MovieID: movieID, Body: body, Source: source}

	if result, err := s.scorer.Score(body); err != nil {
		log.WithError(err).Warnf("scoring review for movie %d failed, storing unscored", movieID)
	} else {
		review.Probability = &result.Probability
		review.Label = &result.Label
		review.Stars = &result.Stars
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	if s.jobClient != nil {
		if err := s.jobClient.EnqueueAggregateJob(ctx, movieID); err != nil {
			log.WithError(err).Warnf("enqueue aggregate job for movie %d", movieID)
		}
	}
	return review, nil
}

// AddMovie registers a movie and, when a job client is wired, enqueues
// embedding generation for its overview.
func (s *ReviewService) AddMovie(ctx context.Context, movie *models.Movie) error {
	if strings.TrimSpace(movie.Title) == "" {
		return fmt.Errorf("movie title is empty: %w", models.ErrValidation)
	}
	if err := s.movies.CreateMovie(ctx, movie); err != nil {
		return err
	}
	if s.jobClient != nil && movie.Overview != "" {
		if err := s.jobClient.EnqueueEmbedJob(ctx, movie.ID); err != nil {
			log.WithError(err).Warnf("enqueue embed job for movie %d", movie.ID)
		}
	}
	return nil
}
