package primary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"revue/internal/models"
	"revue/internal/store"
)

var _ store.VerdictStore = (*StoreImpl)(nil)

// UpsertVerdict replaces the movie's verdict in a single statement so a
// concurrent reader sees either the old aggregate or the new one, never a
// mix.
func (s *StoreImpl) UpsertVerdict(ctx context.Context, verdict *models.AggregateVerdict) error {
	query := `
		INSERT INTO verdicts (id, movie_id, review_count, positive_count, mixed_count, negative_count, mean_probability, label, stars, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (movie_id) DO UPDATE SET
			id = excluded.id,
			review_count = excluded.review_count,
			positive_count = excluded.positive_count,
			mixed_count = excluded.mixed_count,
			negative_count = excluded.negative_count,
			mean_probability = excluded.mean_probability,
			label = excluded.label,
			stars = excluded.stars,
			computed_at = excluded.computed_at`

	_, err := s.db.ExecContext(ctx, query,
		verdict.ID.String(), verdict.MovieID,
		verdict.ReviewCount, verdict.PositiveCount, verdict.MixedCount, verdict.NegativeCount,
		verdict.MeanProbability, string(verdict.Label), verdict.Stars, verdict.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert verdict for movie %d: %w", verdict.MovieID, err)
	}
	return nil
}

func (s *StoreImpl) GetVerdict(ctx context.Context, movieID int64) (*models.AggregateVerdict, error) {
	query := `
		SELECT id, movie_id, review_count, positive_count, mixed_count, negative_count, mean_probability, label, stars, computed_at
		FROM verdicts WHERE movie_id = $1`

	verdict := &models.AggregateVerdict{}
	var id, label string
	err := s.db.QueryRowContext(ctx, query, movieID).Scan(
		&id, &verdict.MovieID,
		&verdict.ReviewCount, &verdict.PositiveCount, &verdict.MixedCount, &verdict.NegativeCount,
		&verdict.MeanProbability, &label, &verdict.Stars, &verdict.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get verdict for movie %d: %w", movieID, err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("verdict for movie %d has malformed id %q: %w", movieID, id, err)
	}
	verdict.ID = parsed
	verdict.Label = models.Label(label)
	return verdict, nil
}
