package app

import (
	"errors"

	"github.com/dshills/keychord/internal/input/keymap"
)

// Built-in command tags. Keymap files and scripts bind keys to them like any
// other tag, and may replace them with their own handlers.
const (
	CommandQuit         = "app.quit"
	CommandReload       = "app.reload"
	CommandResetContext = "app.context.reset"
)

func (app *Application) registerBuiltins() {
	app.engine.AddCommandHandlerFunc(CommandQuit, func(*keymap.Command) {
		app.Quit()
	})
	app.engine.AddCommandHandlerFunc(CommandReload, func(*keymap.Command) {
		if err := app.Reload(); err != nil {
			app.logger.Warn("reload failed", "error", err)
		}
	})
	app.engine.AddCommandHandlerFunc(CommandResetContext, func(*keymap.Command) {
		app.engine.SetContext("")
	})
}

// Reload reloads every keymap file.
func (app *Application) Reload() error {
	var errs []error
	for _, path := range app.keymapFiles() {
		if err := app.reloader.Load(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (app *Application) keymapFiles() []string {
	return append(append([]string(nil), app.config.Keymaps.Files...), app.opts.KeymapFiles...)
}
