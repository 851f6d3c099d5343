package app

import (
	"io"

	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/config/watcher"
	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/plugin/lua"
)

// bootstrapper starts components in dependency order and remembers what it
// started so a failure can unwind.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func (b *bootstrapper) run() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"config", b.initConfig},
		{"logging", b.initLogging},
		{"engine", b.initEngine},
		{"keymaps", b.initKeymaps},
		{"scripts", b.initScripts},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := config.Load(b.opts.ConfigPaths...)
	if err != nil {
		return err
	}
	if b.opts.LogLevel != "" {
		cfg.Log.Level = b.opts.LogLevel
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogging() error {
	lc, err := b.app.config.LoggingConfig()
	if err != nil {
		return err
	}
	if lc.FilePath == "" && b.opts.LogOutput != nil {
		lc.Output = b.opts.LogOutput
	}
	if lc.Output == io.Discard {
		lc.Output = nil
	}

	b.app.logger = logging.New(lc)
	logging.Init(b.app.logger)
	b.app.logger.Debug("configuration loaded", "sources", b.app.config.Sources)
	return nil
}

// initEngine creates the application's one engine. It is not the process
// engine from input.Shared: tests and embedders may run several applications.
func (b *bootstrapper) initEngine() error {
	ec := b.app.config.EngineConfig().WithLogger(b.app.logger)
	if b.opts.Clock != nil {
		ec = ec.WithClock(b.opts.Clock)
	}
	engine, err := input.NewEngine(ec)
	if err != nil {
		return err
	}
	b.app.engine = engine
	b.app.registerBuiltins()
	return nil
}

// initKeymaps loads every keymap file. Failures are recorded, not fatal.
func (b *bootstrapper) initKeymaps() error {
	b.app.reloader = watcher.NewReloader(b.app.engine, b.app.logger)
	for _, path := range b.app.keymapFiles() {
		if err := b.app.reloader.Load(path); err != nil {
			b.app.loadErrs = append(b.app.loadErrs, err)
		}
	}
	return nil
}

// initScripts runs every Lua script. Failures are recorded, not fatal.
func (b *bootstrapper) initScripts() error {
	scripts := append(append([]string(nil), b.app.config.Plugins.Scripts...), b.opts.Scripts...)

	b.app.lua = lua.NewState()
	b.app.bridge = lua.NewBridge(b.app.lua, b.app.engine, b.app.logger)
	if err := b.app.bridge.LoadScripts(scripts); err != nil {
		b.app.loadErrs = append(b.app.loadErrs, err)
	}
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.app.config.Keymaps.Watch || b.opts.NoWatch {
		return nil
	}

	w, err := watcher.New(watcher.WithLogger(b.app.logger))
	if err != nil {
		return err
	}
	w.OnChange(b.app.reloader.Handle)
	for _, path := range b.app.keymapFiles() {
		if err := w.Watch(path); err != nil {
			b.app.logger.Warn("cannot watch keymap", "path", path, "error", err)
		}
	}
	b.app.watcher = w
	return nil
}

// cleanup releases what was started, in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "logging":
			_ = b.app.logger.Close()
		case "engine":
			b.app.engine.Close()
		case "scripts":
			_ = b.app.lua.Close()
		case "watcher":
			if b.app.watcher != nil {
				_ = b.app.watcher.Close()
			}
		}
	}
}
