package dispatcher

import "github.com/dshills/keychord/internal/input/keymap"

// PreDispatchHook is called after a handler is resolved and before it runs.
// Returning false cancels the dispatch.
type PreDispatchHook interface {
	PreDispatch(cmd *keymap.Command) bool
}

// PostDispatchHook is called after every dispatch that found a binding,
// whatever its outcome.
type PostDispatchHook interface {
	PostDispatch(cmd *keymap.Command, result Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(cmd *keymap.Command) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(cmd *keymap.Command) bool {
	return f(cmd)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(cmd *keymap.Command, result Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(cmd *keymap.Command, result Result) {
	f(cmd, result)
}

// ContextFilterHook cancels commands typed in any of the blocked contexts.
type ContextFilterHook struct {
	Blocked map[string]bool
}

// NewContextFilterHook creates a hook blocking the given contexts.
func NewContextFilterHook(contexts ...string) *ContextFilterHook {
	blocked := make(map[string]bool, len(contexts))
	for _, c := range contexts {
		blocked[c] = true
	}
	return &ContextFilterHook{Blocked: blocked}
}

// PreDispatch implements PreDispatchHook.
func (h *ContextFilterHook) PreDispatch(cmd *keymap.Command) bool {
	return !h.Blocked[cmd.Context]
}
