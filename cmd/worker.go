package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"revue/internal/app"
	"revue/internal/worker"
)

// workerCmd runs the background job worker.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job worker",
	Long:  `Starts the Asynq worker process that handles verdict aggregation and embedding generation tasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		return runWorker(appInstance)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(appInstance *app.App) error {
	cfg := appInstance.Config

	queues := cfg.Worker.Queues
	if len(queues) == 0 {
		queues = map[string]int{"analysis": 6, "embeddings": 3, "default": 1}
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.WithError(err).Errorf("task failed: type=%s payload=%s", task.Type(), task.Payload())
			}),
		},
	)

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.Deps{
		Movies:    appInstance.MovieStore,
		Reviews:   appInstance.ReviewStore,
		Analysis:  appInstance.AnalysisService,
		Scorer:    appInstance.Scorer,
		Vectors:   appInstance.VectorStore,
		Embedding: appInstance.EmbeddingService,
		JobStore:  appInstance.JobStore,
	})

	log.Infof("starting worker (concurrency %d, queues %v)", cfg.Worker.Concurrency, queues)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("shutdown signal received, stopping worker")
	srv.Stop()
	srv.Shutdown()
	return nil
}
