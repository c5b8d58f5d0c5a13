package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"revue/internal/tasks"
)

// AsynqJobClient enqueues background tasks and records each enqueue to the
// JobStore so job history survives Redis.
type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

var _ JobClient = (*AsynqJobClient)(nil)

func NewAsynqJobClient(redisAddr, redisPassword string, redisDB int, js JobStore) (*AsynqJobClient, error) {
	if js == nil {
		return nil, fmt.Errorf("job store cannot be nil")
	}
	cli := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &AsynqJobClient{client: cli, jobStore: js}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue submits a task and records the event. A failure to record is
// logged, not returned, since the task is already in the queue.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, movieID int64, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("asynq client is not initialized")
	}

	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}

	jobUUID, err := uuid.Parse(info.ID)
	if err != nil {
		log.WithError(err).Warnf("asynq task ID %q is not a UUID, job record will be incomplete", info.ID)
	}

	params := JobRecordParams{
		JobID:    jobUUID,
		TaskType: task.Type(),
		Status:   "enqueued",
		MovieID:  &movieID,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, params); err != nil {
		log.WithError(err).Errorf("record enqueue of task %s", info.ID)
	}

	return info, nil
}

func (jc *AsynqJobClient) EnqueueAggregateJob(ctx context.Context, movieID int64) error {
	task, err := tasks.NewAggregateMovieTask(movieID)
	if err != nil {
		return err
	}
	if _, err := jc.Enqueue(ctx, task, movieID, asynq.Queue("analysis")); err != nil {
		return fmt.Errorf("enqueue aggregate job for movie %d: %w", movieID, err)
	}
	return nil
}

func (jc *AsynqJobClient) EnqueueEmbedJob(ctx context.Context, movieID int64) error {
	task, err := tasks.NewEmbedMovieTask(movieID)
	if err != nil {
		return err
	}
	if _, err := jc.Enqueue(ctx, task, movieID, asynq.Queue("embeddings")); err != nil {
		return fmt.Errorf("enqueue embedding job for movie %d: %w", movieID, err)
	}
	return nil
}
