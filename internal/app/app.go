package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/handlers"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/server"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/cache"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/events"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/jobs"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/lint"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/linters"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/metrics"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/scheduler"
	"github.com/ArcBlock/super-linter-api-sub000/internal/services/workspace"
	"github.com/ArcBlock/super-linter-api-sub000/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	EventService   interfaces.EventService
	CacheService   interfaces.CacheService
	Workspaces     interfaces.WorkspaceService
	LinterService  *linters.Service
	LintService    *lint.Service
	JobManager     *jobs.Manager
	Scheduler      *scheduler.Service
	Metrics        *metrics.Service

	// HTTP handlers
	LintHandler    *handlers.LintHandler
	JobHandler     *handlers.JobHandler
	CacheHandler   *handlers.CacheHandler
	LintersHandler *handlers.LintersHandler
	StatusHandler  *handlers.StatusHandler
	WSHandler      *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	app.EventService = events.NewService(logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, logger); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	app.Metrics = metrics.NewService(storageManager.MetricStorage(), logger)
	app.CacheService = cache.NewService(storageManager.CacheStorage(), &cfg.Cache, logger)

	app.Workspaces, err = workspace.NewService(&cfg.Workspace, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize workspace service: %w", err)
	}

	app.LinterService, err = linters.NewService(&cfg.Linters, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize linter registry: %w", err)
	}

	app.LintService = lint.NewService(app.CacheService, app.Workspaces, app.LinterService, logger)
	app.JobManager = jobs.NewManager(storageManager.JobStorage(), app.LintService, app.LinterService, app.EventService, &cfg.Jobs, logger)

	app.Scheduler = scheduler.NewService(logger)
	if err := app.registerSweeps(); err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to register maintenance sweeps: %w", err)
	}

	app.LintHandler = handlers.NewLintHandler(app.LintService, app.JobManager, app.Metrics, logger)
	app.JobHandler = handlers.NewJobHandler(app.JobManager, logger)
	app.CacheHandler = handlers.NewCacheHandler(app.CacheService, logger)
	app.LintersHandler = handlers.NewLintersHandler(app.LinterService, logger)
	app.StatusHandler = handlers.NewStatusHandler(app.StorageManager, app.JobManager, app.LinterService, logger)

	app.WSHandler, err = handlers.NewWebSocketHandler(app.EventService, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize websocket handler: %w", err)
	}

	return app, nil
}

// registerSweeps wires the periodic maintenance work onto the scheduler
func (a *App) registerSweeps() error {
	cacheSweep := a.StorageManager.CacheStorage().CleanupExpired
	if svc, ok := a.CacheService.(*cache.Service); ok {
		cacheSweep = svc.CleanupExpired
	}
	if err := a.Scheduler.Register("cache-expiry", a.Config.Cache.SweepSchedule, cacheSweep); err != nil {
		return err
	}

	if err := a.Scheduler.Register("workspace-expiry", a.Config.Workspace.SweepSchedule, a.Workspaces.CleanupExpired); err != nil {
		return err
	}

	retentionDays := a.Config.Jobs.RetentionDays
	jobStorage := a.StorageManager.JobStorage()
	if err := a.Scheduler.Register("job-retention", a.Config.Jobs.CleanupSchedule, func(ctx context.Context) (int, error) {
		return jobStorage.CleanupOldJobs(ctx, retentionDays)
	}); err != nil {
		return err
	}

	if manager, ok := a.StorageManager.(*badger.Manager); ok {
		if err := a.Scheduler.Register("storage-gc", "@every 1h", manager.GC); err != nil {
			return err
		}
	}

	// Gauge refresh; the count is not a sweep removal count
	return a.Scheduler.Register("job-gauges", "@every 1m", func(ctx context.Context) (int, error) {
		stats, err := a.JobManager.Stats(ctx)
		if err != nil {
			return 0, err
		}
		a.Metrics.SetJobCounts(stats)
		return 0, nil
	})
}

// Handlers bundles the HTTP handlers for the server router
func (a *App) Handlers() *server.Handlers {
	return &server.Handlers{
		Lint:      a.LintHandler,
		Jobs:      a.JobHandler,
		Cache:     a.CacheHandler,
		Linters:   a.LintersHandler,
		Status:    a.StatusHandler,
		WebSocket: a.WSHandler,
		Metrics:   a.Metrics.Handler(),
	}
}

// RequestObserver feeds finished requests into the metrics service
func (a *App) RequestObserver() server.RequestObserver {
	return func(r *http.Request, route string, status int, duration time.Duration, cacheHit bool) {
		linter := ""
		if strings.HasPrefix(route, "/{linter}") {
			segments := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
			if len(segments) > 0 {
				linter = segments[0]
			}
		}
		a.Metrics.RecordRequest(r.Context(), r.Method, route, status, duration, linter, cacheHit)
	}
}

// Start resumes persisted pending jobs and begins maintenance sweeps
func (a *App) Start(ctx context.Context) error {
	if err := a.JobManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job manager: %w", err)
	}
	a.Scheduler.Start()
	a.Logger.Info().Msg("Application started")
	return nil
}

// Close shuts down components in reverse dependency order
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.JobManager.Stop()
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if a.EventService != nil {
		a.EventService.Close()
	}

	var err error
	if a.StorageManager != nil {
		err = a.StorageManager.Close()
	}
	a.Logger.Info().Msg("Application stopped")
	return err
}
