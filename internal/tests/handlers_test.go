package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/apihandlers"
	"revue/internal/app"
	"revue/internal/models"
)

// newTestRouter mirrors the route table from the serve command.
func newTestRouter(a *app.App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := apihandlers.NewAPIHandler(a)

	v1 := router.Group("/api/v1")
	v1.POST("/score", h.ScoreHandler)
	v1.POST("/aggregate", h.AggregateHandler)
	v1.POST("/movies", h.AddMovieHandler)
	v1.GET("/movies", h.ListMoviesHandler)
	v1.GET("/movies/:id", h.GetMovieHandler)
	v1.POST("/movies/:id/reviews", h.AddReviewHandler)
	v1.GET("/movies/:id/reviews", h.ListReviewsHandler)
	v1.GET("/movies/:id/verdict", h.VerdictHandler)
	v1.POST("/movies/:id/aggregate", h.AggregateMovieHandler)
	v1.GET("/similar", h.SimilarHandler)
	v1.GET("/recommendations/:userId", h.RecommendationsHandler)
	v1.POST("/ratings", h.RateHandler)
	router.GET("/health", h.HealthHandler)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestScoreHandler(t *testing.T) {
	a, _ := newTestApp(t)
	router := newTestRouter(a)

	w := doJSON(t, router, http.MethodPost, "/api/v1/score", gin.H{"text": "a great movie"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.SentimentResult
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["data"], &result))
	assert.Equal(t, models.LabelPositive, result.Label)
	assert.Equal(t, 5, result.Stars)
	assert.Greater(t, result.Probability, 0.85)
}

func TestScoreHandlerRejectsBadBody(t *testing.T) {
	a, _ := newTestApp(t)
	router := newTestRouter(a)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/score", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregateHandler(t *testing.T) {
	a, _ := newTestApp(t)
	router := newTestRouter(a)

	w := doJSON(t, router, http.MethodPost, "/api/v1/aggregate", gin.H{
		"reviews": []string{"great", "great", "terrible"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var verdict models.AggregateVerdict
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["data"], &verdict))
	assert.Equal(t, 3, verdict.ReviewCount)
	assert.Equal(t, 2, verdict.PositiveCount)
	assert.Equal(t, 1, verdict.NegativeCount)

	w = doJSON(t, router, http.MethodPost, "/api/v1/aggregate", gin.H{"reviews": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMovieLifecycle(t *testing.T) {
	a, _ := newTestApp(t)
	router := newTestRouter(a)

	w := doJSON(t, router, http.MethodPost, "/api/v1/movies", gin.H{
		"title":    "Dream Heist",
		"year":     2010,
		"overview": "A thief steals secrets from dreams.",
		"genres":   []string{"Sci-Fi", "Thriller"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var movie models.Movie
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["data"], &movie))
	require.NotZero(t, movie.ID)
	assert.Equal(t, []string{"Sci-Fi", "Thriller"}, movie.Genres)

	// Same title and year again is a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/v1/movies", gin.H{
		"title": "Dream Heist", "year": 2010,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Blank title is rejected outright.
	w = doJSON(t, router, http.MethodPost, "/api/v1/movies", gin.H{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d", movie.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.Movie
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["data"], &fetched))
	assert.Equal(t, movie.Title, fetched.Title)

	w = doJSON(t, router, http.MethodGet, "/api/v1/movies/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/movies?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Movie
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["items"], &listed))
	assert.Len(t, listed, 1)
}

func TestReviewAndVerdictFlow(t *testing.T) {
	a, ps := newTestApp(t)
	router := newTestRouter(a)

	movie := &models.Movie{Title: "Star Voyage", Year: 1999}
	require.NoError(t, ps.CreateMovie(context.Background(), movie))

	for _, body := range []string{"great acting", "a great ride", "terrible pacing"} {
		w := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/v1/movies/%d/reviews", movie.ID), gin.H{"body": body})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// Review against a missing movie 404s.
	w := doJSON(t, router, http.MethodPost, "/api/v1/movies/424242/reviews", gin.H{"body": "great"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Empty body is a validation error.
	w = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/movies/%d/reviews", movie.ID), gin.H{"body": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/reviews", movie.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["items"], &reviews))
	require.Len(t, reviews, 3)
	assert.Equal(t, "api", reviews[0].Source)

	// No verdict until aggregation runs.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/verdict", movie.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/aggregate", movie.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verdict models.AggregateVerdict
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["data"], &verdict))
	assert.Equal(t, 3, verdict.ReviewCount)
	assert.Equal(t, 2, verdict.PositiveCount)
	assert.Equal(t, 1, verdict.NegativeCount)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/movies/%d/verdict", movie.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAggregateMovieHandlerNoReviews(t *testing.T) {
	a, ps := newTestApp(t)
	router := newTestRouter(a)

	movie := &models.Movie{Title: "Silent Film", Year: 1927}
	require.NoError(t, ps.CreateMovie(context.Background(), movie))

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/movies/%d/aggregate", movie.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/movies/555/aggregate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimilarHandler(t *testing.T) {
	a, ps := newTestApp(t)
	router := newTestRouter(a)

	ctx := context.Background()
	for _, m := range []*models.Movie{
		{Title: "Dream Heist", Year: 2010, Overview: "a thief steals secrets from dreams within dreams"},
		{Title: "Dream Within", Year: 2006, Overview: "dreams within dreams confuse a sleeping detective"},
		{Title: "Marmalade Bear", Year: 2014, Overview: "a polite bear eats marmalade sandwiches in london"},
	} {
		require.NoError(t, ps.CreateMovie(ctx, m))
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/similar?title=Dream+Heist&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []models.Recommendation
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["results"], &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "Dream Within", results[0].Title)

	w = doJSON(t, router, http.MethodGet, "/api/v1/similar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingsAndRecommendations(t *testing.T) {
	a, ps := newTestApp(t)
	router := newTestRouter(a)

	ctx := context.Background()
	movies := []*models.Movie{
		{Title: "Dream Heist", Year: 2010, Overview: "a thief steals secrets from dreams within dreams"},
		{Title: "Dream Within", Year: 2006, Overview: "dreams within dreams confuse a sleeping detective"},
		{Title: "Marmalade Bear", Year: 2014, Overview: "a polite bear eats marmalade sandwiches in london"},
	}
	for _, m := range movies {
		require.NoError(t, ps.CreateMovie(ctx, m))
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/ratings", gin.H{
		"user_id": 7, "movie_id": movies[0].ID, "rating": 5.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Out-of-range rating.
	w = doJSON(t, router, http.MethodPost, "/api/v1/ratings", gin.H{
		"user_id": 7, "movie_id": movies[0].ID, "rating": 9.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rating a ghost movie maps the FK violation to 404.
	w = doJSON(t, router, http.MethodPost, "/api/v1/ratings", gin.H{
		"user_id": 7, "movie_id": 31337, "rating": 3.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recommendations/7?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []models.Recommendation
	require.NoError(t, json.Unmarshal(decodeBody(t, w)["results"], &results))
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.NotEqual(t, movies[0].ID, r.MovieID, "rated movie must not be recommended back")
	}
	assert.Equal(t, "Dream Within", results[0].Title)
}

func TestHealthHandler(t *testing.T) {
	a, _ := newTestApp(t)
	router := newTestRouter(a)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
}
