package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/pgvector/pgvector-go"

	"revue/internal/models"
)

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, movieID int64, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueAggregateJob(ctx context.Context, movieID int64) error
	EnqueueEmbedJob(ctx context.Context, movieID int64) error
	Close() error
}

// --- Movie Store ---

type MovieStore interface {
	CreateMovie(ctx context.Context, movie *models.Movie) error
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	GetMovieByTitle(ctx context.Context, title string) (*models.Movie, error)
	ListMovies(ctx context.Context, limit, offset int) ([]*models.Movie, error)
	// UpdateMeanSentiment stores the movie's aggregate mean probability
	// after a batch analysis run.
	UpdateMeanSentiment(ctx context.Context, movieID int64, mean float64) error

	Ping(ctx context.Context) error
}

// --- Review Store ---

type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsByMovie(ctx context.Context, movieID int64) ([]*models.Review, error)
	// UpdateReviewScore writes back a review's sentiment verdict.
	UpdateReviewScore(ctx context.Context, reviewID int64, result models.SentimentResult) error
}

// --- Verdict Store ---

type VerdictStore interface {
	// UpsertVerdict replaces any previous verdict for the movie in one
	// statement, so readers never observe a partial aggregate.
	UpsertVerdict(ctx context.Context, verdict *models.AggregateVerdict) error
	GetVerdict(ctx context.Context, movieID int64) (*models.AggregateVerdict, error)
}

// --- Rating Store ---

type RatingStore interface {
	AddRating(ctx context.Context, rating *models.Rating) error
	ListRatings(ctx context.Context) ([]models.Rating, error)
	ListRatingsByUser(ctx context.Context, userID int64) ([]models.Rating, error)
}

// --- Job Store ---

type JobRecordParams struct {
	JobID    uuid.UUID
	TaskType string
	Status   string
	MovieID  *int64
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
}

// --- Vector Store ---

type VectorStore interface {
	AddEmbedding(ctx context.Context, entry *models.MovieEmbedding) error
	GetEmbeddingByMovie(ctx context.Context, movieID int64) (*models.MovieEmbedding, error)
	DeleteEmbeddingsByMovie(ctx context.Context, movieID int64) error
	SimilaritySearch(ctx context.Context, queryVector pgvector.Vector, k int) ([]models.Recommendation, error)

	Ping(ctx context.Context) error
	Close() error
}

// --- Embedding Service ---

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
	ModelName() string
}
