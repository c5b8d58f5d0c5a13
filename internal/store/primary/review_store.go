package primary

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"revue/internal/models"
	"revue/internal/store"
)

var _ store.ReviewStore = (*StoreImpl)(nil)

func (s *StoreImpl) CreateReview(ctx context.Context, review *models.Review) error {
	if strings.TrimSpace(review.Body) == "" {
		return fmt.Errorf("review body is empty: %w", models.ErrValidation)
	}
	if review.Source == "" {
		review.Source = "typed"
	}

	query := `
		INSERT INTO reviews (movie_id, body, source, probability, label, stars, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	now := time.Now().UTC()
	var prob sql.NullFloat64
	if review.Probability != nil {
		prob = sql.NullFloat64{Float64: *review.Probability, Valid: true}
	}
	var label sql.NullString
	if review.Label != nil {
		label = sql.NullString{String: string(*review.Label), Valid: true}
	}
	var stars sql.NullInt64
	if review.Stars != nil {
		stars = sql.NullInt64{Int64: int64(*review.Stars), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		review.MovieID, review.Body, review.Source, prob, label, stars, now,
	).Scan(&review.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("movie %d: %w", review.MovieID, store.ErrForeignKeyViolation)
		}
		return fmt.Errorf("create review for movie %d: %w", review.MovieID, err)
	}
	review.CreatedAt = now
	return nil
}

func (s *StoreImpl) ListReviewsByMovie(ctx context.Context, movieID int64) ([]*models.Review, error) {
	query := `
		SELECT id, movie_id, body, source, probability, label, stars, created_at
		FROM reviews WHERE movie_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review := &models.Review{}
		var prob sql.NullFloat64
		var label sql.NullString
		var stars sql.NullInt64
		if err := rows.Scan(
			&review.ID, &review.MovieID, &review.Body, &review.Source,
			&prob, &label, &stars, &review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		if prob.Valid {
			review.Probability = &prob.Float64
		}
		if label.Valid {
			l := models.Label(label.String)
			review.Label = &l
		}
		if stars.Valid {
			n := int(stars.Int64)
			review.Stars = &n
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

func (s *StoreImpl) UpdateReviewScore(ctx context.Context, reviewID int64, result models.SentimentResult) error {
	query := `UPDATE reviews SET probability = $1, label = $2, stars = $3 WHERE id = $4`
	res, err := s.db.ExecContext(ctx, query, result.Probability, string(result.Label), result.Stars, reviewID)
	if err != nil {
		return fmt.Errorf("update score for review %d: %w", reviewID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("review %d: %w", reviewID, store.ErrNotFound)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23503") ||
		strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}
