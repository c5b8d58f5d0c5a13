package models

import (
	"time"

	"github.com/google/uuid"
)

// Label is the discrete sentiment verdict for a review or a review set.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelMixed    Label = "Mixed"
	LabelNegative Label = "Negative"
)

// Movie is one entry of the candidate item corpus.
// Overview may be empty; MeanSentiment is nil until a verdict has been
// computed for the movie (scoring treats nil as a neutral 0.5).
type Movie struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Year          int       `db:"year"`
	Overview      string    `db:"overview"`
	Genres        []string  `db:"genres"`
	ImdbID        *string   `db:"imdb_id"`
	MeanSentiment *float64  `db:"mean_sentiment"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Review is one raw review text attached to a movie. The score fields are
// nil until the review has been run through the sentiment scorer.
type Review struct {
	ID          int64     `db:"id"`
	MovieID     int64     `db:"movie_id"`
	Body        string    `db:"body"`
	Source      string    `db:"source"` // "typed", "file", "url", "imdb"
	Probability *float64  `db:"probability"`
	Label       *Label    `db:"label"`
	Stars       *int      `db:"stars"`
	CreatedAt   time.Time `db:"created_at"`
}

// SentimentResult is the verdict for a single piece of review text.
// Label and Stars are pure functions of Probability.
type SentimentResult struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"`
	Stars       int     `json:"stars"`
	Advice      string  `json:"advice"`
}

// AggregateVerdict is the combined verdict over every review of one movie.
type AggregateVerdict struct {
	ID              uuid.UUID `db:"id" json:"id"`
	MovieID         int64     `db:"movie_id" json:"movieId"`
	ReviewCount     int       `db:"review_count" json:"reviewCount"`
	PositiveCount   int       `db:"positive_count" json:"positiveCount"`
	MixedCount      int       `db:"mixed_count" json:"mixedCount"`
	NegativeCount   int       `db:"negative_count" json:"negativeCount"`
	MeanProbability float64   `db:"mean_probability" json:"meanProbability"`
	Label           Label     `db:"label" json:"label"`
	Stars           int       `db:"stars" json:"stars"`
	ComputedAt      time.Time `db:"computed_at" json:"computedAt"`
}

// Rating is one historical user rating, the raw material for the
// collaborative predictor.
type Rating struct {
	UserID    int64     `db:"user_id"`
	MovieID   int64     `db:"movie_id"`
	Rating    float64   `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// UserProfile is the per-user input to the hybrid recommendation scorer.
// LikedMovieRows holds row indices into the content-index corpus, not movie
// IDs; SentimentMean defaults to 0.5 when the user has no scored history.
type UserProfile struct {
	UserID         int64   `json:"userId"`
	LikedMovieRows []int   `json:"likedMovieRows"`
	SentimentMean  float64 `json:"sentimentMean"`
}

// Recommendation is one scored candidate returned to callers.
type Recommendation struct {
	MovieID int64   `json:"movieId"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// MovieEmbedding is a persisted overview embedding for the optional
// semantic similarity backend.
type MovieEmbedding struct {
	ID        uuid.UUID `db:"id"`
	MovieID   int64     `db:"movie_id"`
	Vector    []float32 `db:"vector"`
	ModelName string    `db:"model_name"`
	CreatedAt time.Time `db:"created_at"`
}

// BackgroundJob mirrors the background_jobs table.
type BackgroundJob struct {
	ID        int64     `db:"id"`
	JobID     uuid.UUID `db:"job_id"` // asynq task ID
	TaskType  string    `db:"task_type"`
	Status    string    `db:"status"`
	MovieID   *int64    `db:"movie_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
