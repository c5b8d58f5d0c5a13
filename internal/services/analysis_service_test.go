package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/models"
	"revue/internal/sentiment"
	"revue/internal/services"
)

func TestAggregateMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	scorer := sentiment.NewScorer(newKeywordModel())
	svc := services.NewAnalysisService(s, s, s, scorer)

	movie := &models.Movie{Title: "Dream Heist", Year: 2010}
	require.NoError(t, s.CreateMovie(ctx, movie))

	for _, body := range []string{
		"A superb piece of filmmaking.",
		"Decent but overlong.",
		"Meh, I have seen better.",
		"Simply awful.",
	} {
		require.NoError(t, s.CreateReview(ctx, &models.Review{MovieID: movie.ID, Body: body}))
	}

	verdict, err := svc.AggregateMovie(ctx, movie.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, verdict.ReviewCount)
	assert.Equal(t, 2, verdict.PositiveCount)
	assert.Equal(t, 1, verdict.MixedCount)
	assert.Equal(t, 1, verdict.NegativeCount)
	// Mean of 0.9, 0.7, 0.5, 0.1 is 0.55, which bands as Mixed, 2 stars.
	assert.InDelta(t, 0.55, verdict.MeanProbability, 1e-9)
	assert.Equal(t, models.LabelMixed, verdict.Label)
	assert.Equal(t, 2, verdict.Stars)

	// Verdict is persisted and retrievable.
	stored, err := svc.Verdict(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, verdict.ID, stored.ID)

	// Movie mean sentiment is refreshed.
	got, err := s.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MeanSentiment)
	assert.InDelta(t, 0.55, *got.MeanSentiment, 1e-9)

	// Unscored reviews got backfilled.
	reviews, err := s.ListReviewsByMovie(ctx, movie.ID)
	require.NoError(t, err)
	for _, r := range reviews {
		require.NotNil(t, r.Probability, "review %d should be scored", r.ID)
	}
}

func TestAggregateMovieReplacesVerdict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	svc := services.NewAnalysisService(s, s, s, sentiment.NewScorer(newKeywordModel()))

	movie := &models.Movie{Title: "Dream Heist", Year: 2010}
	require.NoError(t, s.CreateMovie(ctx, movie))
	require.NoError(t, s.CreateReview(ctx, &models.Review{MovieID: movie.ID, Body: "awful"}))

	first, err := svc.AggregateMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LabelNegative, first.Label)

	require.NoError(t, s.CreateReview(ctx, &models.Review{MovieID: movie.ID, Body: "superb"}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{MovieID: movie.ID, Body: "superb"}))

	second, err := svc.AggregateMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, second.ReviewCount)
	assert.NotEqual(t, first.ID, second.ID)

	stored, err := svc.Verdict(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.ID)
}

func TestAggregateMovieNoReviews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	svc := services.NewAnalysisService(s, s, s, sentiment.NewScorer(newKeywordModel()))

	movie := &models.Movie{Title: "Dream Heist", Year: 2010}
	require.NoError(t, s.CreateMovie(ctx, movie))

	_, err := svc.AggregateMovie(ctx, movie.ID)
	assert.ErrorIs(t, err, models.ErrEmptyReviewSet)
}

func TestAggregateMovieMissing(t *testing.T) {
	s := newTestStore(t)
	svc := services.NewAnalysisService(s, s, s, sentiment.NewScorer(newKeywordModel()))

	_, err := svc.AggregateMovie(context.Background(), 999)
	require.Error(t, err)
}

func TestAggregateTexts(t *testing.T) {
	s := newTestStore(t)
	svc := services.NewAnalysisService(s, s, s, sentiment.NewScorer(newKeywordModel()))

	verdict, err := svc.AggregateTexts([]string{"superb", "awful"})
	require.NoError(t, err)
	assert.Equal(t, 2, verdict.ReviewCount)
	assert.InDelta(t, 0.5, verdict.MeanProbability, 1e-9)

	_, err = svc.AggregateTexts(nil)
	assert.ErrorIs(t, err, models.ErrEmptyReviewSet)
}
