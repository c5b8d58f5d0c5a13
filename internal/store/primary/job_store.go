package primary

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"revue/internal/store"
)

var _ store.JobStore = (*StoreImpl)(nil)

// RecordJobEnqueue inserts a background_jobs row. Re-recording the same
// job ID is a no-op.
func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, status, movie_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO NOTHING`

	now := time.Now().UTC()
	var movieID sql.NullInt64
	if params.MovieID != nil {
		movieID = sql.NullInt64{Int64: *params.MovieID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		params.JobID.String(), params.TaskType, params.Status, movieID, now, now,
	)
	if err != nil {
		return fmt.Errorf("record enqueue of job %s: %w", params.JobID, err)
	}
	return nil
}

func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	query := `UPDATE background_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	res, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), jobID.String())
	if err != nil {
		return fmt.Errorf("update status of job %s: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	return nil
}
