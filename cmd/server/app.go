package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jdalton/taskwell-api/internal/config"
	"github.com/jdalton/taskwell-api/internal/events"
	"github.com/jdalton/taskwell-api/internal/job"
	"github.com/jdalton/taskwell-api/internal/platform/postgres"
	"github.com/jdalton/taskwell-api/internal/service"
	"github.com/jdalton/taskwell-api/internal/service/auth"
	"github.com/jdalton/taskwell-api/internal/store"
)

// application holds the shared dependencies so startup wiring and
// shutdown cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	taskStore     store.TaskStore
	tagStore      store.TagStore
	historyStore  store.RecurrenceHistoryStore
	reminderStore store.ReminderStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	taskService       service.TaskService
	recurrenceService *service.RecurrenceService

	eventEmitter events.EventEmitter
	jobRunner    *job.Runner
	sweeper      *job.Sweeper
}

// newApplication wires every dependency: stores, services, the job
// runner with its factories, the event handler, and the reminder
// sweeper. The runner is started and recovered here so the server
// comes up with its backlog already queued.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewUserStore(db, cfg.Auth.BcryptCost)
	app.taskStore = postgres.NewTaskStore(db)
	app.tagStore = postgres.NewTagStore(db)
	app.historyStore = postgres.NewHistoryStore(db)
	app.reminderStore = postgres.NewReminderStore(db)
	jobStore := postgres.NewJobStore(db)

	app.jobRunner = job.NewRunner(jobStore, job.RunnerConfig{
		WorkerCount:           cfg.Job.WorkerCount,
		QueueSize:             cfg.Job.QueueSize,
		MaxRetries:            cfg.Job.MaxRetries,
		RetryDelay:            time.Duration(cfg.Job.RetryDelaySeconds) * time.Second,
		StuckJobCheckInterval: job.DefaultStuckJobCheck,
	}, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.recurrenceService = service.NewRecurrenceService(db, app.taskStore, app.historyStore, logger)

	// Concrete jobs and their factories.
	notifier := job.NewLogNotifier(logger)
	recurrenceFactory := job.NewRecurrenceJobFactory(app.recurrenceService, logger)
	reminderFactory := job.NewReminderFireJobFactory(app.reminderStore, app.taskStore, notifier, logger)

	eventHandler := job.NewEventHandler(app.jobRunner, logger)
	eventHandler.RegisterFactory(job.TypeRecurrenceSpawn, recurrenceFactory.FromPayload)
	eventHandler.RegisterFactory(job.TypeReminderFire, reminderFactory.FromPayload)

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(eventHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register job handler")
	}

	scheduler := job.NewReminderScheduler(app.reminderStore, app.jobRunner, reminderFactory, logger)
	app.taskService = service.NewTaskService(
		db,
		app.taskStore,
		app.tagStore,
		app.historyStore,
		scheduler,
		app.eventEmitter,
		logger,
	)

	app.sweeper = job.NewSweeper(
		app.reminderStore,
		time.Duration(cfg.Job.SweepIntervalMinutes)*time.Minute,
		logger,
	)

	app.jobRunner.Start()
	if err := app.jobRunner.Recover(ctx); err != nil {
		return nil, fmt.Errorf("failed to recover pending jobs: %w", err)
	}
	if err := app.sweeper.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start reminder sweeper: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources in dependency order.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
