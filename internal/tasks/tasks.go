package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names used with Asynq.
const (
	// TypeScoreReview scores a single stored review.
	TypeScoreReview = "sentiment:score_review"
	// TypeAggregateMovie recomputes a movie's aggregate verdict from its
	// stored reviews.
	TypeAggregateMovie = "analysis:aggregate_movie"
	// TypeEmbedMovie generates a semantic embedding for a movie overview.
	TypeEmbedMovie = "embedding:generate"
)

type ScoreReviewPayload struct {
	ReviewID int64 `json:"review_id"`
	MovieID  int64 `json:"movie_id"`
}

type AggregateMoviePayload struct {
	MovieID int64 `json:"movie_id"`
}

type EmbedMoviePayload struct {
	MovieID int64 `json:"movie_id"`
}

func NewScoreReviewTask(reviewID, movieID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(ScoreReviewPayload{ReviewID: reviewID, MovieID: movieID})
	if err != nil {
		return nil, fmt.Errorf("marshal score review payload: %w", err)
	}
	return asynq.NewTask(TypeScoreReview, payload), nil
}

func NewAggregateMovieTask(movieID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(AggregateMoviePayload{MovieID: movieID})
	if err != nil {
		return nil, fmt.Errorf("marshal aggregate payload: %w", err)
	}
	return asynq.NewTask(TypeAggregateMovie, payload), nil
}

func NewEmbedMovieTask(movieID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(EmbedMoviePayload{MovieID: movieID})
	if err != nil {
		return nil, fmt.Errorf("marshal embed payload: %w", err)
	}
	return asynq.NewTask(TypeEmbedMovie, payload), nil
}
