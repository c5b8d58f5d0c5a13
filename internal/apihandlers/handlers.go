package apihandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"revue/internal/app"
	"revue/internal/models"
	"revue/internal/store"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(app *app.App) *APIHandler {
	return &APIHandler{App: app}
}

// ScoreRequest is the JSON body for ad-hoc sentiment scoring.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreHandler scores a piece of review text without persisting it.
func (h *APIHandler) ScoreHandler(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.App.ReviewService.ScoreText(req.Text)
	if err != nil {
		if errors.Is(err, models.ErrModelMismatch) {
			Internal(c, "Sentiment model artifact is inconsistent")
			return
		}
		Internal(c, fmt.Sprintf("scoring failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// AggregateRequest carries ad-hoc review texts to combine.
type AggregateRequest struct {
	Reviews []string `json:"reviews"`
}

// AggregateHandler combines ad-hoc review texts into one verdict.
func (h *APIHandler) AggregateHandler(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	verdict, err := h.App.AnalysisService.AggregateTexts(req.Reviews)
	if err != nil {
		if errors.Is(err, models.ErrEmptyReviewSet) {
			BadRequest(c, "At least one review is required")
			return
		}
		Internal(c, fmt.Sprintf("aggregation failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": verdict})
}

// AddMovieRequest is the JSON body for registering a movie.
type AddMovieRequest struct {
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Overview string   `json:"overview"`
	Genres   []string `json:"genres"`
	ImdbID   *string  `json:"imdb_id"`
}

func (h *APIHandler) AddMovieHandler(c *gin.Context) {
	var req AddMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	movie := &models.Movie{
		Title:    req.Title,
		Year:     req.Year,
		Overview: req.Overview,
		Genres:   req.Genres,
		ImdbID:   req.ImdbID,
	}
	if err := h.App.ReviewService.AddMovie(c.Request.Context(), movie); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			BadRequest(c, err.Error())
		case errors.Is(err, store.ErrDuplicate):
			Conflict(c, fmt.Sprintf("Movie %q (%d) already exists", req.Title, req.Year))
		default:
			Internal(c, fmt.Sprintf("add movie failed: %v", err))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": movie})
}

func (h *APIHandler) ListMoviesHandler(c *gin.Context) {
	limit, offset, err := parsePagination(c, 20)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	movies, err := h.App.MovieStore.ListMovies(c.Request.Context(), limit, offset)
	if err != nil {
		Internal(c, fmt.Sprintf("list movies failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": movies})
}

func (h *APIHandler) GetMovieHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	movie, err := h.App.MovieStore.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("Movie not found with ID: %d", id))
			return
		}
		Internal(c, fmt.Sprintf("get movie failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movie})
}

// AddReviewRequest is the JSON body for attaching a review to a movie.
type AddReviewRequest struct {
	Body   string `json:"body"`
	Source string `json:"source"`
}

func (h *APIHandler) AddReviewHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	review, err := h.App.ReviewService.AddReview(c.Request.Context(), id, req.Body, req.Source)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			BadRequest(c, err.Error())
		case errors.Is(err, store.ErrNotFound):
			NotFound(c, fmt.Sprintf("Movie not found with ID: %d", id))
		default:
			Internal(c, fmt.Sprintf("add review failed: %v", err))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": review})
}

func (h *APIHandler) ListReviewsHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reviews, err := h.App.ReviewStore.ListReviewsByMovie(c.Request.Context(), id)
	if err != nil {
		Internal(c, fmt.Sprintf("list reviews failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reviews})
}

// VerdictHandler returns the stored aggregate verdict for a movie.
func (h *APIHandler) VerdictHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	verdict, err := h.App.AnalysisService.Verdict(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, fmt.Sprintf("No verdict computed yet for movie %d", id))
			return
		}
		Internal(c, fmt.Sprintf("get verdict failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": verdict})
}

// AggregateMovieHandler recomputes a movie's verdict synchronously.
func (h *APIHandler) AggregateMovieHandler(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	verdict, err := h.App.AnalysisService.AggregateMovie(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFound(c, fmt.Sprintf("Movie not found with ID: %d", id))
		case errors.Is(err, models.ErrEmptyReviewSet):
			BadRequest(c, fmt.Sprintf("Movie %d has no reviews to aggregate", id))
		default:
			Internal(c, fmt.Sprintf("aggregation failed: %v", err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": verdict})
}

// SimilarHandler returns movies with overviews similar to the named title.
func (h *APIHandler) SimilarHandler(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		BadRequest(c, "Missing required 'title' parameter")
		return
	}
	limit := h.App.Config.Similarity.DefaultLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			BadRequest(c, "invalid limit: "+l)
			return
		}
		limit = parsed
	}

	results, err := h.App.RecommendService.SimilarByTitle(c.Request.Context(), title, limit)
	if err != nil {
		Internal(c, fmt.Sprintf("similarity lookup failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// RecommendationsHandler returns hybrid recommendations for a user.
func (h *APIHandler) RecommendationsHandler(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		BadRequest(c, "Invalid user ID: "+c.Param("userId"))
		return
	}
	limit := h.App.Config.Similarity.DefaultLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			BadRequest(c, "invalid limit: "+l)
			return
		}
		limit = parsed
	}

	results, err := h.App.RecommendService.RecommendForUser(c.Request.Context(), userID, limit)
	if err != nil {
		Internal(c, fmt.Sprintf("recommendation failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// RateRequest is the JSON body for recording a user rating.
type RateRequest struct {
	UserID  int64   `json:"user_id"`
	MovieID int64   `json:"movie_id"`
	Rating  float64 `json:"rating"`
}

func (h *APIHandler) RateHandler(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rating := &models.Rating{UserID: req.UserID, MovieID: req.MovieID, Rating: req.Rating}
	if err := h.App.RatingStore.AddRating(c.Request.Context(), rating); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			BadRequest(c, err.Error())
		case errors.Is(err, store.ErrForeignKeyViolation):
			NotFound(c, fmt.Sprintf("Movie not found with ID: %d", req.MovieID))
		default:
			Internal(c, fmt.Sprintf("record rating failed: %v", err))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": rating})
}

// HealthHandler reports liveness plus backend reachability.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if err := h.App.MovieStore.Ping(c.Request.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
	}
	if h.App.VectorStore != nil {
		if err := h.App.VectorStore.Ping(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["vector_store"] = err.Error()
		}
	}
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func parseIDParam(c *gin.Context) (int64, error) {
	idStr := c.Param("id")
	if idStr == "" {
		idStr = c.Query("id")
	}
	if idStr == "" {
		return 0, fmt.Errorf("missing movie ID parameter (expected in path /:id or query ?id=)")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid movie ID format: %s", idStr)
	}
	return id, nil
}

func parsePagination(c *gin.Context, defaultLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if l := c.Query("limit"); l != "" {
		parsed, perr := strconv.Atoi(l)
		if perr != nil || parsed <= 0 {
			return 0, 0, fmt.Errorf("invalid limit: %s", l)
		}
		limit = parsed
	}
	if o := c.Query("offset"); o != "" {
		parsed, perr := strconv.Atoi(o)
		if perr != nil || parsed < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", o)
		}
		offset = parsed
	}
	return limit, offset, nil
}
