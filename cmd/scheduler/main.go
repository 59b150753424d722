package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/internal/email"
	"leadvox_backend/internal/gemini"
	"leadvox_backend/internal/pipeline"
	pipelinesvc "leadvox_backend/internal/pipeline/service"
	"leadvox_backend/internal/prompts"
	"leadvox_backend/internal/scheduler"
	"leadvox_backend/internal/settings"
	"leadvox_backend/platform/config"
	"leadvox_backend/platform/db"
	"leadvox_backend/platform/events"
	"leadvox_backend/platform/logger"
	"leadvox_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	if !cfg.IsSchedulerEnabled() {
		log.Error("REDIS_URL is not configured; scheduler cannot run")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log.Logger)
	val := validator.New()

	var resolver pipelinesvc.ContactResolver = apollo.DisabledResolver{}
	if cfg.IsApolloEnabled() {
		resolver = apollo.NewResolver(apollo.New(cfg, log), log)
	}

	var generator pipelinesvc.DraftGenerator = gemini.DisabledGenerator{}
	if cfg.IsGeminiEnabled() {
		model, err := gemini.NewTextModel(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			log.Error("failed to initialize gemini client", "error", err)
			panic("failed to initialize gemini client: " + err.Error())
		}
		generator = gemini.NewGenerator(model, cfg.GetGeminiModel(), gemini.DefaultRetryPolicy(), log)
	}

	dispatcher, err := email.NewDispatcher(cfg)
	if err != nil {
		log.Error("failed to initialize email dispatcher", "error", err)
		panic("failed to initialize email dispatcher: " + err.Error())
	}

	settingsModule := settings.NewModule(pool, val, log)
	composer := prompts.NewComposer(settingsModule.Service(), log)

	pipelineModule := pipeline.NewModule(pipeline.Deps{
		Pool:       pool,
		Resolver:   resolver,
		Generator:  generator,
		Dispatcher: dispatcher,
		Titles:     settingsModule.Service(),
		Sender:     settingsModule.Service(),
		Prompts:    composer,
		Bus:        eventBus,
		Validator:  val,
		Logger:     log,
	})

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweepInterval := getDurationEnv("PIPELINE_SWEEP_INTERVAL", 15*time.Minute)
	go runSweepEnqueuer(ctx, client, log, sweepInterval)

	worker, err := scheduler.NewWorker(cfg, pipelineModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

// runSweepEnqueuer periodically enqueues the generation and retry sweeps.
// Tasks are cheap and idempotent; a missed tick only delays the next sweep.
func runSweepEnqueuer(ctx context.Context, client *scheduler.Client, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.EnqueueGeneratePending(ctx, scheduler.GeneratePendingPayload{}); err != nil {
				log.Warn("failed to enqueue generation sweep", "error", err)
			}
			if err := client.EnqueueRetryNotGenerated(ctx, scheduler.RetryNotGeneratedPayload{}); err != nil {
				log.Warn("failed to enqueue retry sweep", "error", err)
			}
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
