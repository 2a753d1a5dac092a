// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wingedpig/repoedit/internal/api"
	"github.com/wingedpig/repoedit/internal/api/handlers"
	"github.com/wingedpig/repoedit/internal/clone"
	"github.com/wingedpig/repoedit/internal/clonepath"
	"github.com/wingedpig/repoedit/internal/config"
	"github.com/wingedpig/repoedit/internal/events"
	"github.com/wingedpig/repoedit/internal/logging"
	"github.com/wingedpig/repoedit/internal/replace"
	"github.com/wingedpig/repoedit/internal/task"
	"github.com/wingedpig/repoedit/internal/terminal"
)

// App is the main application container.
type App struct {
	mu sync.RWMutex

	configPath string
	version    string
	config     *config.Config
	eventBus   *events.MemoryEventBus
	tasks      *task.Manager
	launcher   terminal.Launcher
	clonePaths *clonepath.Store
	watcher    *clonepath.Watcher
	apiServer  *api.Server

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	Debug      bool
	Version    string // Application version string
}

// New loads configuration and sets up logging. Components are built by
// Initialize.
func New(opts Options) (*App, error) {
	app := &App{
		configPath: opts.ConfigPath,
		version:    opts.Version,
		done:       make(chan struct{}),
	}

	// Load configuration
	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(context.Background(), opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Override host/port if specified
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app.config = cfg

	if err := logging.Setup(cfg.Logging, os.Stderr); err != nil {
		return nil, err
	}

	// Initialize event bus
	app.eventBus = events.NewMemoryEventBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	return app, nil
}

// Config returns the effective configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Initialize sets up all components.
func (app *App) Initialize(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	cfg := app.config
	if app.configPath != "" {
		log.Info().Str("path", app.configPath).Msg("using config file")
	} else {
		log.Info().Msg("no config file found, using defaults")
	}

	app.tasks = task.NewManager(task.Config{
		Retention:      config.ParseDuration(cfg.Tasks.Retention, 10*time.Minute),
		MaxOutputLines: cfg.Tasks.MaxOutputLines,
	}, app.eventBus)

	switch cfg.Terminal.Backend {
	case config.BackendPTY:
		app.launcher = terminal.NewPTYLauncher()
	default:
		app.launcher = terminal.NewWindowLauncher(cfg.Terminal.Program)
	}
	log.Info().Str("backend", cfg.Terminal.Backend).Msg("terminal launcher ready")

	// Clone path: the explicit store, kept in sync with the file the
	// external clone script writes.
	app.clonePaths = clonepath.NewStore(cfg.Clone.PathFile, app.eventBus)
	app.clonePaths.OnChange(app.eventBus.SetDefaultRepo)
	if path, ok := app.clonePaths.Refresh(); ok {
		log.Info().Str("path", path).Msg("found previous clone")
	}

	w, err := clonepath.NewWatcher(app.clonePaths, 0)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.Clone.PathFile).Msg("clone path watcher disabled")
	} else {
		app.watcher = w
	}

	cloner := clone.NewGoGitCloner(cfg.Clone.Dir, app.clonePaths)
	generator := replace.NewGenerator(cfg.Replace.ScriptPath)
	engine := replace.NewEngine(replace.Options{
		Include:     cfg.Replace.Include,
		Exclude:     cfg.Replace.Exclude,
		Workers:     cfg.Replace.Workers,
		MaxFileSize: cfg.Replace.MaxFileSize,
	})

	app.apiServer = api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		TLSCert:      cfg.Server.TLSCert,
		TLSKey:       cfg.Server.TLSKey,
		TailscaleTLS: cfg.Server.TailscaleTLS,
	}, api.Dependencies{
		Tasks:         app.tasks,
		EventBus:      app.eventBus,
		Launcher:      app.launcher,
		ClonePaths:    app.clonePaths,
		ClonePathFile: cfg.Clone.PathFile,
		CloneScript:   cfg.Clone.Script,
		CloneEngine:   cfg.Clone.Engine,
		Cloner:        cloner,
		Generator:     generator,
		Engine:        engine,
		Replace: handlers.ReplaceOptions{
			Engine: cfg.Replace.Engine,
			Mode:   cfg.Replace.Mode,
		},
		Version: app.version,
	})

	return nil
}

// Handler returns the HTTP handler. Initialize must have been called.
func (app *App) Handler() http.Handler {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.apiServer.Router()
}

// Start starts the API server in the background.
func (app *App) Start(ctx context.Context) error {
	go func() {
		log.Info().Str("addr", app.apiServer.Addr()).Msg("starting API server")
		if err := app.apiServer.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("API server error")
			app.Stop()
		}
	}()
	return nil
}

// Run initializes, starts, and waits for a shutdown signal.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	case <-ctx.Done():
		log.Info().Msg("context cancelled, shutting down")
	case <-app.done:
		log.Info().Msg("shutdown requested")
	}

	return app.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("error shutting down API server")
		}
	}

	if app.watcher != nil {
		app.watcher.Close()
	}

	// Cancels running tasks, which kills the programs they launched.
	if app.tasks != nil {
		app.tasks.Close()
	}

	if app.eventBus != nil {
		app.eventBus.Close()
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// Stop signals the app to shut down.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
