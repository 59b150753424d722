package scheduler

import (
	"context"
	"fmt"

	"leadvox_backend/internal/pipeline/domain"
	pipelinesvc "leadvox_backend/internal/pipeline/service"
	"leadvox_backend/platform/config"
	"leadvox_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const defaultSweepLimit = 25

// Worker consumes pipeline tasks from the asynq queue and drives them
// through the pipeline service.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	pipeline *pipelinesvc.Service
	log      *logger.Logger
}

// NewWorker creates the asynq worker from the scheduler configuration.
func NewWorker(cfg config.SchedulerConfig, pipeline *pipelinesvc.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		pipeline: pipeline,
		log:      log,
	}

	mux.HandleFunc(TaskGeneratePending, w.handleGeneratePending)
	mux.HandleFunc(TaskRetryNotGenerated, w.handleRetryNotGenerated)

	return w, nil
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleGeneratePending(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeneratePendingPayload(task)
	if err != nil {
		return err
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	items, err := w.pipeline.ListByState(ctx, domain.StatePendingGeneration, limit, 0)
	if err != nil {
		return err
	}

	generated := 0
	for _, item := range items {
		if item.Company.ContactEmail == nil || *item.Company.ContactEmail == "" {
			continue
		}
		if err := w.pipeline.Generate(ctx, item.Company.ID, nil); err != nil {
			w.log.Warn("scheduled generation failed",
				"company_id", item.Company.ID.String(),
				"error", err,
			)
			continue
		}
		generated++
	}

	w.log.Info("generation sweep completed", "candidates", len(items), "generated", generated)
	return nil
}

func (w *Worker) handleRetryNotGenerated(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRetryNotGeneratedPayload(task)
	if err != nil {
		return err
	}
	limit := payload.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}

	items, err := w.pipeline.ListByState(ctx, domain.StateEmailNotGenerated, limit, 0)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Company.ContactEmail != nil && *item.Company.ContactEmail != "" {
			ids = append(ids, item.Company.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	result, err := w.pipeline.BatchRetry(ctx, ids, nil)
	if err != nil {
		return err
	}
	w.log.Info("retry sweep completed",
		"eligible", len(ids),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return nil
}
