package primary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"revue/internal/models"
	"revue/internal/store"
)

var _ store.MovieStore = (*StoreImpl)(nil)

// Genres travel as a comma-joined TEXT column. Overviews can contain
// commas; genre names cannot.
func joinGenres(genres []string) string {
	return strings.Join(genres, ",")
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *StoreImpl) CreateMovie(ctx context.Context, movie *models.Movie) error {
	query := `
		INSERT INTO movies (title, year, overview, genres, imdb_id, mean_sentiment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	now := time.Now().UTC()
	var imdbID sql.NullString
	if movie.ImdbID != nil {
		imdbID = sql.NullString{String: *movie.ImdbID, Valid: true}
	}
	var mean sql.NullFloat64
	if movie.MeanSentiment != nil {
		mean = sql.NullFloat64{Float64: *movie.MeanSentiment, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		movie.Title, movie.Year, movie.Overview, joinGenres(movie.Genres),
		imdbID, mean, now, now,
	).Scan(&movie.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movie %q (%d): %w", movie.Title, movie.Year, store.ErrDuplicate)
		}
		return fmt.Errorf("create movie %q: %w", movie.Title, err)
	}
	movie.CreatedAt = now
	movie.UpdatedAt = now
	return nil
}

const movieColumns = `id, title, year, overview, genres, imdb_id, mean_sentiment, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }, dest *models.Movie) error {
	var genres string
	var imdbID sql.NullString
	var mean sql.NullFloat64
	if err := row.Scan(
		&dest.ID, &dest.Title, &dest.Year, &dest.Overview, &genres,
		&imdbID, &mean, &dest.CreatedAt, &dest.UpdatedAt,
	); err != nil {
		return err
	}
	dest.Genres = splitGenres(genres)
	if imdbID.Valid {
		dest.ImdbID = &imdbID.String
	}
	if mean.Valid {
		dest.MeanSentiment = &mean.Float64
	}
	return nil
}

func (s *StoreImpl) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`
	movie := &models.Movie{}
	if err := scanMovie(s.db.QueryRowContext(ctx, query, id), movie); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return movie, nil
}

// GetMovieByTitle matches case-insensitively. With several year variants of
// the same title, the newest one wins.
func (s *StoreImpl) GetMovieByTitle(ctx context.Context, title string) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE LOWER(title) = LOWER($1) ORDER BY year DESC LIMIT 1`
	movie := &models.Movie{}
	if err := scanMovie(s.db.QueryRowContext(ctx, query, title), movie); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get movie by title %q: %w", title, err)
	}
	return movie, nil
}

func (s *StoreImpl) ListMovies(ctx context.Context, limit, offset int) ([]*models.Movie, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		movie := &models.Movie{}
		if err := scanMovie(rows, movie); err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}
	return movies, nil
}

func (s *StoreImpl) UpdateMeanSentiment(ctx context.Context, movieID int64, mean float64) error {
	query := `UPDATE movies SET mean_sentiment = $1, updated_at = $2 WHERE id = $3`
	res, err := s.db.ExecContext(ctx, query, mean, time.Now().UTC(), movieID)
	if err != nil {
		return fmt.Errorf("update mean sentiment for movie %d: %w", movieID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("movie %d: %w", movieID, store.ErrNotFound)
	}
	return nil
}

// isUniqueViolation matches both Postgres (23505) and sqlite unique errors
// without importing either driver's error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
