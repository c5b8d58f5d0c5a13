package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"revue/internal/models"
	"revue/internal/store"
)

// StoreImpl persists movie overview embeddings in Postgres with the
// pgvector extension. One row per movie per model.
type StoreImpl struct {
	db *pgxpool.Pool
}

var _ store.VectorStore = (*StoreImpl)(nil)

func NewStore(ctx context.Context, dsn string) (store.VectorStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("vector store DSN cannot be empty")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse vector store DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping vector store: %w", err)
	}
	log.Debug("connected to pgvector store")
	return &StoreImpl{db: pool}, nil
}

func (vs *StoreImpl) Close() error {
	if vs.db != nil {
		vs.db.Close()
	}
	return nil
}

func (vs *StoreImpl) Ping(ctx context.Context) error {
	if vs.db == nil {
		return fmt.Errorf("vector store connection is not initialized")
	}
	return vs.db.Ping(ctx)
}

func (vs *StoreImpl) AddEmbedding(ctx context.Context, entry *models.MovieEmbedding) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `
		INSERT INTO movie_embeddings (id, movie_id, vector, model_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (movie_id, model_name) DO UPDATE SET
			id = excluded.id,
			vector = excluded.vector,
			created_at = now()
		RETURNING created_at`
	err := vs.db.QueryRow(ctx, query,
		entry.ID, entry.MovieID, pgvector.NewVector(entry.Vector), entry.ModelName,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("add embedding for movie %d: %w", entry.MovieID, err)
	}
	return nil
}

func (vs *StoreImpl) GetEmbeddingByMovie(ctx context.Context, movieID int64) (*models.MovieEmbedding, error) {
	query := `SELECT id, movie_id, vector, model_name, created_at FROM movie_embeddings WHERE movie_id = $1 LIMIT 1`
	entry := &models.MovieEmbedding{}
	var vec pgvector.Vector
	err := vs.db.QueryRow(ctx, query, movieID).Scan(
		&entry.ID, &entry.MovieID, &vec, &entry.ModelName, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get embedding for movie %d: %w", movieID, err)
	}
	entry.Vector = vec.Slice()
	return entry, nil
}

func (vs *StoreImpl) DeleteEmbeddingsByMovie(ctx context.Context, movieID int64) error {
	query := `DELETE FROM movie_embeddings WHERE movie_id = $1`
	if _, err := vs.db.Exec(ctx, query, movieID); err != nil {
		return fmt.Errorf("delete embeddings for movie %d: %w", movieID, err)
	}
	return nil
}

// SimilaritySearch returns the k movies nearest to the query vector by
// cosine distance. The score reported is 1 - distance so larger is better,
// matching the lexical similarity scale.
func (vs *StoreImpl) SimilaritySearch(ctx context.Context, queryVector pgvector.Vector, k int) ([]models.Recommendation, error) {
	query := `
		SELECT e.movie_id, m.title, 1 - (e.vector <=> $1) AS score
		FROM movie_embeddings e
		JOIN movies m ON m.id = e.movie_id
		ORDER BY e.vector <=> $1
		LIMIT $2`

	rows, err := vs.db.Query(ctx, query, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search query: %w", err)
	}
	defer rows.Close()

	var results []models.Recommendation
	for rows.Next() {
		var rec models.Recommendation
		if err := rows.Scan(&rec.MovieID, &rec.Title, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan similarity search row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity search rows: %w", err)
	}
	return results, nil
}
