package main

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/keychord/internal/app"
	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input/source"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	handledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type resultMsg dispatcher.Result

type teaModel struct {
	app     *app.Application
	history []string
	err     error
}

func (m teaModel) Init() tea.Cmd {
	return nil
}

func (m teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		r := dispatcher.Result(msg)
		line := describe(m.app, r)
		if r.Handled() {
			line = handledStyle.Render(line)
		}
		m.history = append(m.history, line)
		if len(m.history) > 10 {
			m.history = m.history[1:]
		}
		if r.Command != nil && r.Command.Name == app.CommandQuit && r.Handled() {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if _, err := source.Forward(m.app.Engine(), msg); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m teaModel) View() string {
	e := m.app.Engine()

	var b strings.Builder
	b.WriteString(titleStyle.Render("keychord") + "\n")
	b.WriteString(mutedStyle.Render("context "+e.Context()+", wait "+e.Wait().String()+", ctrl+c quits") + "\n\n")
	for _, line := range m.history {
		b.WriteString(line + "\n")
	}
	if pending := e.PendingKeys(); pending != "" {
		b.WriteString(mutedStyle.Render("pending: "+string(pending)) + "\n")
	}
	return b.String()
}

// runTea runs the bubbletea mode. Flushed sequences reach the model as
// messages sent from the engine's timer goroutine.
func runTea(ctx context.Context, application *app.Application) error {
	ensureQuitKey(application)

	p := tea.NewProgram(teaModel{app: application}, tea.WithAltScreen(), tea.WithContext(ctx))
	application.OnCommand(func(r dispatcher.Result) {
		p.Send(resultMsg(r))
	})

	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(teaModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
