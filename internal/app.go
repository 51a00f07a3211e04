// Package internal provides the App struct that wires all components of
// taskdash together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdash/internal/cli"
	"github.com/valter-silva-au/taskdash/internal/core"
	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/internal/logging"
	"github.com/valter-silva-au/taskdash/internal/observability"
	"github.com/valter-silva-au/taskdash/internal/storage"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

// App holds all service dependencies for taskdash.
type App struct {
	BasePath string
	Config   *models.Config
	Logger   zerolog.Logger

	// Storage layer
	Store storage.TaskStore

	// Core services
	Tasks   core.TaskService
	Backend integration.TaskBackend

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator

	closeLog func()
}

// NewApp creates and wires all components. basePath is the directory that
// holds .taskdash.yaml; relative paths in the config resolve against it.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath, closeLog: func() {}}

	// --- Configuration ---
	cfg, err := core.NewConfigurationManager(basePath).LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Logging ---
	logFile := ""
	if cfg.Logging.File != "" {
		logFile = app.resolve(cfg.Logging.File)
	}
	app.Logger, app.closeLog, err = logging.New(cfg.Logging.Level, logFile)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	// --- Storage ---
	seed, err := app.seedTasks(time.Now())
	if err != nil {
		app.closeLog()
		return nil, err
	}
	app.Store = storage.NewMemoryTaskStore(storage.MemoryStoreOptions{Tasks: seed})

	// --- Observability ---
	var events core.EventLogger
	if cfg.Events.Enabled {
		eventLog, err := observability.NewJSONLEventLog(app.resolve(cfg.Events.Path))
		if err != nil {
			// The activity log is optional; keep running without it.
			app.Logger.Warn().Err(err).Str("path", cfg.Events.Path).Msg("event log unavailable")
		} else {
			app.EventLog = eventLog
			app.MetricsCalc = observability.NewMetricsCalculator(eventLog)
			events = observability.NewRecorder(eventLog, nil)
		}
	}

	// --- Core services ---
	app.Tasks = core.NewTaskService(app.Store, time.Now, events, app.Logger)
	app.Backend = integration.NewLatencyBackend(app.Tasks, cfg.Latency, app.Logger)

	// --- Wire CLI ---
	cli.Backend = app.Backend
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Logger = app.Logger
	cli.LogToStderr = logFile == ""

	app.Logger.Debug().
		Str("base_path", basePath).
		Str("seed", string(cfg.Store.Seed)).
		Int("tasks", len(seed)).
		Bool("latency", cfg.Latency.Enabled).
		Bool("events", app.EventLog != nil).
		Msg("app initialized")

	return app, nil
}

// seedTasks returns the initial store contents for the configured seed mode.
func (a *App) seedTasks(now time.Time) ([]models.Task, error) {
	switch a.Config.Store.Seed {
	case models.SeedEmpty:
		return nil, nil
	case models.SeedFile:
		tasks, err := storage.LoadSeedFile(a.resolve(a.Config.Store.SeedFile))
		if err != nil {
			return nil, fmt.Errorf("seeding store: %w", err)
		}
		return tasks, nil
	default:
		return storage.DefaultFixture(now), nil
	}
}

func (a *App) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.BasePath, path)
}

// Close releases resources held by the App, such as the event log file handle
// and the log file. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	var err error
	if a.EventLog != nil {
		err = a.EventLog.Close()
	}
	a.closeLog()
	return err
}

// ResolveBasePath determines the base directory for taskdash.
// It checks TASKDASH_HOME first, then walks up from the current directory
// looking for .taskdash.yaml, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TASKDASH_HOME"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
