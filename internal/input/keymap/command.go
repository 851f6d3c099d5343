package keymap

import (
	"github.com/google/uuid"

	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
)

// Command is a flushed chord sequence on its way to a handler.
type Command struct {
	// ID uniquely identifies this dispatch.
	ID uuid.UUID

	// Name is the command tag the keys resolved to. Empty for inline handlers.
	Name string

	// Keys is the canonical sequence that was typed.
	Keys chord.Sequence

	// Context is the context that was active when the keys were typed.
	Context string

	// Event is the last non-modifier key event of the burst.
	Event key.Event
}

// NewCommand creates a command for a flushed sequence.
func NewCommand(keys chord.Sequence, context string, ev key.Event) *Command {
	return &Command{
		ID:      uuid.New(),
		Keys:    keys,
		Context: context,
		Event:   ev,
	}
}

// Handler handles a dispatched command.
type Handler interface {
	Handle(cmd *Command)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(cmd *Command)

// Handle calls f(cmd).
func (f HandlerFunc) Handle(cmd *Command) {
	f(cmd)
}
