package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/phrazzld/mise-api/internal/audit"
	"github.com/phrazzld/mise-api/internal/config"
	"github.com/phrazzld/mise-api/internal/events"
	"github.com/phrazzld/mise-api/internal/generation"
	"github.com/phrazzld/mise-api/internal/notification"
	"github.com/phrazzld/mise-api/internal/platform/gemini"
	"github.com/phrazzld/mise-api/internal/platform/objectstore"
	"github.com/phrazzld/mise-api/internal/platform/postgres"
	"github.com/phrazzld/mise-api/internal/platform/redislock"
	"github.com/phrazzld/mise-api/internal/scheduler"
	"github.com/phrazzld/mise-api/internal/service"
	"github.com/phrazzld/mise-api/internal/task"
	"golang.org/x/sync/errgroup"
)

const (
	lockPrefix            = "mise:job:"
	redisPingTimeout      = 3 * time.Second
	serverShutdownTimeout = 10 * time.Second
)

// externals are the clients for services outside the database.
type externals struct {
	images   generation.ImageGenerator
	pairings generation.PairingGenerator
	storage  task.ObjectStorage
	locker   scheduler.Locker
	redis    *redis.Client
}

// newExternals connects to the generation backend, the bucket and, when
// configured, redis.
func newExternals(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*externals, error) {
	llm, err := gemini.NewClient(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	storage, err := objectstore.NewS3Store(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	ext := &externals{images: llm, pairings: llm, storage: storage}

	if !cfg.Redis.Enabled() {
		logger.Warn("redis not configured, jobs run without an execution lock")
		return ext, nil
	}

	client := redislock.NewClient(cfg.Redis)
	locker := redislock.New(client, lockPrefix, cfg.Redis.LockTTL)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := locker.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}

	ext.locker = locker
	ext.redis = client
	return ext, nil
}

func (e *externals) close() error {
	if e == nil || e.redis == nil {
		return nil
	}
	return e.redis.Close()
}

// application holds the wired dependencies of the worker process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	registry  *scheduler.Registry
	scheduler *scheduler.TimerScheduler
	fallback  *scheduler.Fallback
	submitter *scheduler.Submitter
	emitter   *events.InMemoryEventEmitter

	// The services are the API for an embedding web layer; this process
	// only serves the ops endpoints.
	notifications *notification.Service
	recipes       *service.RecipeService
	jobs          *service.JobService
}

// newApplication wires stores, job bodies, the scheduler and the services.
// The scheduler is not started.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, ext *externals) (*application, error) {
	if cfg == nil || logger == nil || db == nil || ext == nil {
		return nil, errors.New("config, logger, db and externals are required")
	}

	recipeStore := postgres.NewPostgresRecipeStore(db, logger)
	starchStore := postgres.NewPostgresStarchStore(db, logger)
	pairingStore := postgres.NewPostgresPairingStore(db, logger)
	auditStore := postgres.NewPostgresAuditStore(db, logger)
	notificationStore := postgres.NewPostgresNotificationStore(db, logger)
	scheduleStore := postgres.NewPostgresScheduleStore(db, logger)
	jobStore := postgres.NewPostgresJobStore(db, logger)

	tracker, err := audit.NewTracker(auditStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit tracker: %w", err)
	}

	notifications, err := notification.NewService(notificationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %w", err)
	}

	registry := scheduler.NewRegistry()
	if err := registerTasks(registry, cfg, logger, ext, recipeStore, starchStore, pairingStore,
		scheduleStore, notifications); err != nil {
		return nil, err
	}

	opts := []scheduler.Option{scheduler.WithJobStore(jobStore)}
	if ext.locker != nil {
		opts = append(opts, scheduler.WithLocker(ext.locker))
	}
	timer, err := scheduler.NewTimerScheduler(registry, scheduler.Config{
		ShutdownTimeout: cfg.Scheduler.ShutdownTimeout,
		SweepSpec:       cfg.Scheduler.SweepSpec,
	}, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	fallback := scheduler.NewFallback(logger)
	submitter, err := scheduler.NewSubmitter(timer, fallback, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job submitter: %w", err)
	}

	delays := task.DelaysFromConfig(cfg.Scheduler)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewSchedulingEventHandler(submitter, delays, logger),
		events.TypeRecipeCreated, events.TypeRecipeUpdated, events.TypeStarchPreparationSaved)

	recipes, err := service.NewRecipeService(db, recipeStore, starchStore, tracker, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe service: %w", err)
	}

	jobs, err := service.NewJobService(db, recipeStore, scheduleStore, timer, submitter, delays, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		registry:      registry,
		scheduler:     timer,
		fallback:      fallback,
		submitter:     submitter,
		emitter:       emitter,
		notifications: notifications,
		recipes:       recipes,
		jobs:          jobs,
	}, nil
}

func registerTasks(
	registry *scheduler.Registry,
	cfg *config.Config,
	logger *slog.Logger,
	ext *externals,
	recipes *postgres.PostgresRecipeStore,
	starches *postgres.PostgresStarchStore,
	pairings *postgres.PostgresPairingStore,
	schedules *postgres.PostgresScheduleStore,
	broadcaster task.Broadcaster,
) error {
	policy := generation.Policy{
		MaxAttempts: cfg.Generation.MaxAttempts,
		RetryDelay:  cfg.Generation.RetryDelay,
		CallTimeout: cfg.Generation.CallTimeout,
	}

	recipeImage, err := task.NewRecipeImageTask(recipes, ext.images, ext.storage, policy, logger)
	if err != nil {
		return err
	}
	starchImage, err := task.NewStarchImageTask(starches, ext.images, ext.storage, policy, logger)
	if err != nil {
		return err
	}
	winePairing, err := task.NewWinePairingTask(recipes, pairings, ext.pairings, policy, logger)
	if err != nil {
		return err
	}
	publication, err := task.NewPublicationTask(recipes, schedules, broadcaster, logger)
	if err != nil {
		return err
	}

	return task.Set{
		RecipeImage: recipeImage,
		StarchImage: starchImage,
		WinePairing: winePairing,
		Publication: publication,
	}.Register(registry)
}

// Run starts the scheduler and the ops server and blocks until ctx is done
// or the server fails, then shuts both down.
func (app *application) Run(ctx context.Context) error {
	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("ops server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return app.shutdown(srv)
	})

	err := g.Wait()
	app.logger.Info("application stopped")
	return err
}

// shutdown stops the server, then the scheduler, then waits for fallback
// jobs. Every step runs even if an earlier one failed.
func (app *application) shutdown(srv *http.Server) error {
	app.logger.Info("shutting down")

	var errs []error

	httpCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(httpCtx); err != nil {
		errs = append(errs, fmt.Errorf("ops server shutdown: %w", err))
	}

	if err := app.scheduler.Stop(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), app.drainTimeout())
	defer drainCancel()
	if err := app.fallback.Wait(drainCtx); err != nil {
		app.logger.Warn("fallback jobs still running at exit", "error", err)
	}

	return errors.Join(errs...)
}

func (app *application) drainTimeout() time.Duration {
	if d := app.config.Scheduler.ShutdownTimeout; d > 0 {
		return d
	}
	return scheduler.DefaultConfig().ShutdownTimeout
}
