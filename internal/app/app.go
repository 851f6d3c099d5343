// Package app wires the shortcut engine to its configuration, keymap files,
// Lua scripts, file watcher and terminal input.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"k8s.io/utils/clock"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/source"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/plugin/lua"
)

// Options configures the application. Zero values defer to the
// configuration files.
type Options struct {
	// ConfigPaths replaces the default configuration search path.
	ConfigPaths []string

	// KeymapFiles are loaded after the configured ones.
	KeymapFiles []string

	// Scripts are run after the configured ones.
	Scripts []string

	// LogLevel overrides the configured log level.
	LogLevel string

	// LogOutput replaces stderr when no log file is configured.
	LogOutput io.Writer

	// NoWatch disables keymap reloading even when configured.
	NoWatch bool

	// Clock drives the engine's idle timer. Nil selects the real clock.
	Clock clock.WithDelayedExecution
}

// Application owns the engine and everything that feeds it.
type Application struct {
	mu sync.Mutex

	opts   Options
	config *config.Config
	logger *logging.Logger

	engine   *input.Engine
	lua      *lua.State
	bridge   *lua.Bridge
	reloader *watcher.Reloader
	watcher  *watcher.Watcher

	// loadErrs collects non-fatal keymap and script failures.
	loadErrs []error

	running  atomic.Bool
	quit     atomic.Bool
	cancel   context.CancelFunc
	shutdown bool
}

// New loads configuration and starts every component.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	b := &bootstrapper{app: app, opts: opts}
	if err := b.run(); err != nil {
		b.cleanup()
		return nil, err
	}
	return app, nil
}

// Engine returns the shortcut engine.
func (app *Application) Engine() *input.Engine {
	return app.engine
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// LoadErrors returns the keymap and script failures seen during startup.
// They are logged and do not stop the application.
func (app *Application) LoadErrors() []error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]error(nil), app.loadErrs...)
}

// OnCommand registers fn to observe every flushed key sequence.
func (app *Application) OnCommand(fn func(dispatcher.Result)) {
	app.engine.OnFlush(fn)
}

// Run feeds key events from screen to the engine until ctx is done, the
// screen is finalized or the quit command runs. A quit returns ErrQuit.
func (app *Application) Run(ctx context.Context, screen tcell.Screen) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return ErrShutdown
	}
	ctx, cancel := context.WithCancel(ctx)
	app.cancel = cancel
	app.mu.Unlock()
	defer cancel()

	app.logger.Info("running", "context", app.engine.Context())
	err := source.Pump(ctx, screen, app.engine)
	if app.quit.Load() {
		return ErrQuit
	}
	return err
}

// Quit stops a running Run with ErrQuit.
func (app *Application) Quit() {
	app.quit.Store(true)

	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Shutdown stops the watcher, engine and Lua state and closes the log.
// It is safe to call more than once.
func (app *Application) Shutdown() {
	app.mu.Lock()
	if app.shutdown {
		app.mu.Unlock()
		return
	}
	app.shutdown = true
	cancel := app.cancel
	app.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if app.watcher != nil {
		_ = app.watcher.Close()
	}
	if app.engine != nil {
		app.engine.Close()
	}
	if app.lua != nil {
		_ = app.lua.Close()
	}
	app.logger.Info("shut down")
	_ = app.logger.Close()
}
