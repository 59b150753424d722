package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/internal/auth"
	"leadvox_backend/internal/email"
	"leadvox_backend/internal/gemini"
	apphttp "leadvox_backend/internal/http"
	"leadvox_backend/internal/http/router"
	"leadvox_backend/internal/pipeline"
	pipelinesvc "leadvox_backend/internal/pipeline/service"
	"leadvox_backend/internal/prompts"
	"leadvox_backend/internal/search"
	searchsvc "leadvox_backend/internal/search/service"
	"leadvox_backend/internal/settings"
	"leadvox_backend/migrations"
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

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log.Logger)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Provider Clients
	// ========================================================================

	var apolloClient *apollo.Client
	var resolver pipelinesvc.ContactResolver = apollo.DisabledResolver{}
	if cfg.IsApolloEnabled() {
		apolloClient = apollo.New(cfg, log)
		resolver = apollo.NewResolver(apolloClient, log)
		log.Info("apollo client initialized")
	} else {
		log.Warn("APOLLO_API_KEY not configured; company search and contact resolution disabled")
	}

	var generator pipelinesvc.DraftGenerator = gemini.DisabledGenerator{}
	if cfg.IsGeminiEnabled() {
		model, err := gemini.NewTextModel(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			log.Error("failed to initialize gemini client", "error", err)
			panic("failed to initialize gemini client: " + err.Error())
		}
		generator = gemini.NewGenerator(model, cfg.GetGeminiModel(), gemini.DefaultRetryPolicy(), log)
		log.Info("gemini generator initialized", "model", cfg.GetGeminiModel())
	} else {
		log.Warn("GEMINI_API_KEY not configured; draft generation disabled")
	}

	dispatcher, err := email.NewDispatcher(cfg)
	if err != nil {
		log.Error("failed to initialize email dispatcher", "error", err)
		panic("failed to initialize email dispatcher: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	if err := authModule.EnsureOperator(ctx, cfg.OperatorEmail, cfg.OperatorPassword); err != nil {
		log.Error("failed to seed operator account", "error", err)
		panic("failed to seed operator account: " + err.Error())
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

	// Provider search excludes organizations already imported into the
	// pipeline. A nil API keeps the routes mounted; requests fail with a
	// configuration error until a key is provided.
	var searchAPI searchsvc.SearchAPI
	if apolloClient != nil {
		searchAPI = apolloClient
	}
	searchModule := search.NewModule(searchAPI, pipelineModule.Service(), val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			settingsModule,
			pipelineModule,
			searchModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
