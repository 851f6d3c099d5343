package input

import "github.com/dshills/keychord/internal/input/key"

// Hook intercepts key events before the engine sees them.
//
// Hooks run while the engine is locked and must not call back into it.
type Hook interface {
	// PreKeyEvent may modify the event. Return true to consume it: a consumed
	// event never reaches the buffer but still restarts the idle timer.
	PreKeyEvent(ev *key.Event) bool
}

// HookFunc is a function adapter for Hook.
type HookFunc func(ev *key.Event) bool

// PreKeyEvent implements Hook.
func (f HookFunc) PreKeyEvent(ev *key.Event) bool {
	return f(ev)
}

// IgnoreCodes returns a hook that consumes events for the given key codes.
func IgnoreCodes(codes ...key.Code) Hook {
	ignored := make(map[key.Code]bool, len(codes))
	for _, c := range codes {
		ignored[c] = true
	}
	return HookFunc(func(ev *key.Event) bool {
		return ignored[ev.Code]
	})
}
