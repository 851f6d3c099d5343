package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/keymap"
)

var (
	contextStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keysStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Width(28)
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	inlineStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("8"))
)

// selectBindings applies the context pattern and then the fuzzy search.
func selectBindings(e *input.Engine, search, contextPattern string) []keymap.Entry {
	entries := e.Bindings()

	if contextPattern != "" {
		allowed := make(map[string]bool)
		for _, ctx := range e.Registry().ContextsMatching(contextPattern) {
			allowed[ctx] = true
		}
		filtered := entries[:0]
		for _, entry := range entries {
			if allowed[entry.Context] {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	if search == "" {
		return entries
	}
	matches := keymap.Search(search, entries)
	out := make([]keymap.Entry, len(matches))
	for i, m := range matches {
		out[i] = m.Entry
	}
	return out
}

// listBindings prints bindings grouped by context. Styling is only applied
// when writing to a terminal.
func listBindings(w io.Writer, e *input.Engine, search, contextPattern string, styled bool) error {
	entries := selectBindings(e, search, contextPattern)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no bindings")
		return err
	}

	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	current := ""
	for i, entry := range entries {
		if i == 0 || entry.Context != current {
			current = entry.Context
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(render(contextStyle, "["+current+"]"))
			b.WriteString("\n")
		}

		keys := keymap.Display(entry.Keys, e.Combinator())
		command := entry.Descriptor.Tag
		style := commandStyle
		if entry.Descriptor.Kind == keymap.KindInline {
			command, style = "<inline>", inlineStyle
		}

		if styled {
			b.WriteString("  " + keysStyle.Render(keys) + render(style, command) + "\n")
		} else {
			fmt.Fprintf(&b, "  %-28s%s\n", keys, command)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func exportBindings(w io.Writer, e *input.Engine) error {
	data, err := keymap.ExportJSON(e.Bindings())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
