package input

import "errors"

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("input: engine is closed")
