// Package worker wires Asynq task handlers to the services that do the
// actual work.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"revue/internal/models"
	"revue/internal/sentiment"
	"revue/internal/services"
	"revue/internal/store"
	"revue/internal/tasks"
)

// Deps carries everything the handlers need. VectorStore and
// EmbeddingService may be nil, which disables the embedding handler.
type Deps struct {
	Movies    store.MovieStore
	Reviews   store.ReviewStore
	Analysis  *services.AnalysisService
	Scorer    *sentiment.Scorer
	Vectors   store.VectorStore
	Embedding store.EmbeddingService
	JobStore  store.JobStore
}

// RegisterHandlers attaches every available handler to the mux.
func RegisterHandlers(mux *asynq.ServeMux, deps Deps) {
	mux.HandleFunc(tasks.TypeAggregateMovie, HandleAggregateMovie(deps))
	mux.HandleFunc(tasks.TypeScoreReview, HandleScoreReview(deps))
	if deps.Vectors != nil && deps.Embedding != nil {
		mux.HandleFunc(tasks.TypeEmbedMovie, HandleEmbedMovie(deps))
	} else {
		log.Warn("vector backend not configured, embedding handler disabled")
	}
}

// HandleAggregateMovie recomputes the movie's aggregate verdict. A movie
// with no reviews is treated as done, not retried.
func HandleAggregateMovie(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.AggregateMoviePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}

		verdict, err := deps.Analysis.AggregateMovie(ctx, p.MovieID)
		if err != nil {
			if errors.Is(err, models.ErrEmptyReviewSet) {
				log.Infof("movie %d has no reviews yet, nothing to aggregate", p.MovieID)
				markJobDone(ctx, deps.JobStore, t)
				return nil
			}
			if errors.Is(err, models.ErrModelMismatch) {
				// A broken artifact will not fix itself on retry.
				return fmt.Errorf("aggregate movie %d: %v: %w", p.MovieID, err, asynq.SkipRetry)
			}
			return fmt.Errorf("aggregate movie %d: %w", p.MovieID, err)
		}

		log.Infof("aggregated movie %d: %s (%d reviews)", p.MovieID, verdict.Label, verdict.ReviewCount)
		markJobDone(ctx, deps.JobStore, t)
		return nil
	}
}

// HandleScoreReview scores one stored review and writes the verdict back.
func HandleScoreReview(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.ScoreReviewPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}

		reviews, err := deps.Reviews.ListReviewsByMovie(ctx, p.MovieID)
		if err != nil {
			return err
		}
		for _, r := range reviews {
			if r.ID != p.ReviewID {
				continue
			}
			result, err := deps.Scorer.Score(r.Body)
			if err != nil {
				return fmt.Errorf("score review %d: %w", r.ID, err)
			}
			if err := deps.Reviews.UpdateReviewScore(ctx, r.ID, result); err != nil {
				return err
			}
			markJobDone(ctx, deps.JobStore, t)
			return nil
		}
		log.Warnf("review %d not found for movie %d, dropping task", p.ReviewID, p.MovieID)
		return nil
	}
}

// HandleEmbedMovie generates and stores an overview embedding for a movie.
func HandleEmbedMovie(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.EmbedMoviePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}

		movie, err := deps.Movies.GetMovie(ctx, p.MovieID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warnf("movie %d vanished before embedding, dropping task", p.MovieID)
				return nil
			}
			return err
		}
		if movie.Overview == "" {
			log.Infof("movie %d has no overview, nothing to embed", p.MovieID)
			return nil
		}

		vec, err := deps.Embedding.GenerateEmbedding(ctx, movie.Overview)
		if err != nil {
			return fmt.Errorf("embed movie %d: %w", p.MovieID, err)
		}

		entry := &models.MovieEmbedding{
			MovieID:   p.MovieID,
			Vector:    vec.Slice(),
			ModelName: deps.Embedding.ModelName(),
		}
		if err := deps.Vectors.AddEmbedding(ctx, entry); err != nil {
			return fmt.Errorf("store embedding for movie %d: %w", p.MovieID, err)
		}

		log.Infof("embedded movie %d (%s, dim %d)", p.MovieID, movie.Title, len(entry.Vector))
		markJobDone(ctx, deps.JobStore, t)
		return nil
	}
}

// markJobDone flips the persisted job record to completed; failures only
// log since the work itself succeeded.
func markJobDone(ctx context.Context, js store.JobStore, t *asynq.Task) {
	if js == nil || t.ResultWriter() == nil {
		return
	}
	id, err := uuid.Parse(t.ResultWriter().TaskID())
	if err != nil {
		return
	}
	if err := js.UpdateJobStatus(ctx, id, models.JobStatusCompleted); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.WithError(err).Warnf("mark job %s completed", id)
	}
}
