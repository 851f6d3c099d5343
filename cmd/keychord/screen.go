package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input/keymap"
)

// ensureQuitKey binds ctrl+c to quit unless the keymaps already use it, so
// the interactive modes can always be left.
func ensureQuitKey(application *app.Application) {
	e := application.Engine()
	seq, err := e.Canonical("ctrl+c")
	if err != nil {
		return
	}
	if _, ok := e.Registry().Lookup(keymap.GlobalContext, seq); ok {
		return
	}
	_ = e.Map("ctrl+c", keymap.Named(app.CommandQuit))
}

// describe formats a dispatch result for the status line.
func describe(application *app.Application, r dispatcher.Result) string {
	if r.Command == nil {
		return r.Status.String()
	}
	keys := keymap.Display(r.Command.Keys, application.Engine().Combinator())
	name := r.Command.Name
	if name == "" {
		name = "<inline>"
	}
	if !r.Handled() && r.Status != dispatcher.StatusNoHandler {
		name = "-"
	}
	return fmt.Sprintf("%s  ->  %s  (%s, %s)", keys, name, r.Command.Context, r.Status)
}

// screenView draws the status lines of the tcell mode.
type screenView struct {
	mu      sync.Mutex
	screen  tcell.Screen
	app     *app.Application
	history []string
}

func (v *screenView) record(r dispatcher.Result) {
	v.mu.Lock()
	v.history = append(v.history, describe(v.app, r))
	if len(v.history) > 10 {
		v.history = v.history[1:]
	}
	v.mu.Unlock()
	v.draw()
}

func (v *screenView) draw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	title := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	e := v.app.Engine()
	drawText(s, 0, 0, title, "keychord")
	drawText(s, 0, 1, dim, fmt.Sprintf("context %s, wait %s, %d bindings, ctrl+c quits",
		e.Context(), e.Wait(), len(e.Bindings())))
	for i, line := range v.history {
		drawText(s, 0, 3+i, tcell.StyleDefault, line)
	}
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// runScreen runs the tcell mode: keys typed on the terminal are dispatched
// and each flushed sequence is shown.
func runScreen(ctx context.Context, application *app.Application) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ensureQuitKey(application)
	view := &screenView{screen: screen, app: application}
	application.OnCommand(view.record)
	view.draw()

	return application.Run(ctx, screen)
}
