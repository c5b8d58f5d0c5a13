package primary

import (
	"context"
	"fmt"
	"time"

	"revue/internal/models"
	"revue/internal/store"
)

var _ store.RatingStore = (*StoreImpl)(nil)

// AddRating upserts on (user_id, movie_id) so re-rating a movie replaces
// the old value.
func (s *StoreImpl) AddRating(ctx context.Context, rating *models.Rating) error {
	if rating.Rating < 0.5 || rating.Rating > 5 {
		return fmt.Errorf("rating %.2f out of range [0.5, 5]: %w", rating.Rating, models.ErrValidation)
	}

	query := `
		INSERT INTO ratings (user_id, movie_id, rating, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			rating = excluded.rating,
			created_at = excluded.created_at`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query, rating.UserID, rating.MovieID, rating.Rating, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("movie %d: %w", rating.MovieID, store.ErrForeignKeyViolation)
		}
		return fmt.Errorf("add rating for user %d movie %d: %w", rating.UserID, rating.MovieID, err)
	}
	rating.CreatedAt = now
	return nil
}

func (s *StoreImpl) ListRatings(ctx context.Context) ([]models.Rating, error) {
	return s.listRatings(ctx, `SELECT user_id, movie_id, rating, created_at FROM ratings ORDER BY user_id, movie_id`)
}

func (s *StoreImpl) ListRatingsByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	return s.listRatings(ctx, `SELECT user_id, movie_id, rating, created_at FROM ratings WHERE user_id = $1 ORDER BY movie_id`, userID)
}

func (s *StoreImpl) listRatings(ctx context.Context, query string, args ...any) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Rating, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}
	return ratings, nil
}
