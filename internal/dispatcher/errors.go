package dispatcher

import "errors"

// Dispatcher errors, reported through Result.Err.
var (
	// ErrNoHandler indicates a named command has no registered handler.
	ErrNoHandler = errors.New("dispatcher: no handler for command")

	// ErrCancelled indicates a pre-dispatch hook cancelled the command.
	ErrCancelled = errors.New("dispatcher: command cancelled by hook")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")
)
