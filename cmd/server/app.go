package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/phrazzld/viva-api/internal/domain/srs"
	"github.com/phrazzld/viva-api/internal/events"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/platform/postgres"
	"github.com/phrazzld/viva-api/internal/service"
	"github.com/phrazzld/viva-api/internal/service/auth"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/phrazzld/viva-api/internal/task"
)

// application holds the shared dependencies so they can be wired once and
// cleaned up together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	caseStore store.CaseStore

	jwtService      auth.JWTService
	userService     service.UserService
	sessionService  service.SessionService
	drillService    service.DrillService
	streakService   service.StreakService
	settingsService service.SettingsService
	llmClient       llm.Client

	taskRunner *task.TaskRunner
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{config: cfg, logger: logger, db: db}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	library, err := cases.Load(cfg.Examiner.CaseLibraryDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load case library: %w", err)
	}
	app.caseStore = library
	logger.Info("case library loaded", "cases", library.Len(), "overlay_dir", cfg.Examiner.CaseLibraryDir)

	app.llmClient, err = newLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	// Without a provider AI mode falls back to the rule-based wording.
	var (
		voice     service.ExaminerVoice
		enrichLLM llm.Client
	)
	if _, disabled := app.llmClient.(llm.Disabled); !disabled {
		voice = service.NewLLMVoice(app.llmClient, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, logger)
		enrichLLM = app.llmClient
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	drillStore := postgres.NewPostgresDrillStore(db, logger)
	streakStore := postgres.NewPostgresStreakStore(db, logger)
	settingsStore := postgres.NewPostgresSettingsStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db)

	ex := examiner.New(examiner.NewParams(examiner.ParamsConfig{
		TurnsPerPhase: cfg.Examiner.TurnsPerPhase,
		MaxDrills:     cfg.Examiner.MaxDrills,
	}))

	app.userService, err = service.NewUserService(db, userStore, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	debriefer, err := service.NewDebriefer(service.DebriefDependencies{
		DB:       db,
		Cases:    library,
		Sessions: sessionStore,
		Drills:   drillStore,
		Streaks:  streakStore,
		Settings: settingsStore,
		Examiner: ex,
		LLM:      enrichLLM,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create debriefer: %w", err)
	}

	registry := task.NewRegistry()
	registry.Register(task.TypeSessionDebrief, task.DebriefFactory(debriefer, logger))
	app.taskRunner = task.NewTaskRunner(taskStore, registry, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		MaxAttempts:  cfg.Task.MaxAttempts,
		RetryDelay:   time.Duration(cfg.Task.RetryDelaySeconds) * time.Second,
	}, logger)

	emitter := events.NewInMemoryEmitter(logger)
	emitter.Subscribe(events.TypeSessionFinished, task.NewSessionFinishedHandler(app.taskRunner, debriefer, logger))

	app.sessionService, err = service.NewSessionService(service.SessionDependencies{
		DB:       db,
		Cases:    library,
		Sessions: sessionStore,
		Settings: settingsStore,
		Emitter:  emitter,
		Examiner: ex,
		Voice:    voice,
		// A debrief that failed all its attempts is rebuilt on demand.
		Debriefer:    debriefer,
		DebriefGrace: time.Duration(cfg.Task.DebriefGraceSeconds) * time.Second,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	app.drillService, err = service.NewDrillService(db, drillStore, streakStore, settingsStore, srs.NewDefaultService(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create drill service: %w", err)
	}
	app.streakService = service.NewStreakService(streakStore, settingsStore, logger)
	app.settingsService = service.NewSettingsService(settingsStore, logger)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the task runner and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work. The database is closed by the caller.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	app.logger.Info("application shutdown completed")
}
