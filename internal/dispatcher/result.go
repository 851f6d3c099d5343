package dispatcher

import "github.com/dshills/keychord/internal/input/keymap"

// Status is the outcome of a dispatch.
type Status uint8

const (
	// StatusHandled means a handler ran to completion.
	StatusHandled Status = iota
	// StatusUnmatched means no binding matched the sequence.
	StatusUnmatched
	// StatusNoHandler means the binding named a tag with no handler.
	StatusNoHandler
	// StatusCancelled means a pre-dispatch hook cancelled the command.
	StatusCancelled
	// StatusPanicked means the handler panicked and was recovered.
	StatusPanicked
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusUnmatched:
		return "unmatched"
	case StatusNoHandler:
		return "no-handler"
	case StatusCancelled:
		return "cancelled"
	case StatusPanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Result describes one dispatch.
type Result struct {
	Status  Status
	Command *keymap.Command
	Err     error
}

// Handled reports whether a handler ran to completion.
func (r Result) Handled() bool {
	return r.Status == StatusHandled
}
