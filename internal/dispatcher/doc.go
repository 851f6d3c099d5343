// Package dispatcher resolves flushed chord sequences to handlers and runs
// them.
//
// A Dispatcher looks the sequence up in a keymap.Registry under the context
// that was active when the keys were typed. Named descriptors are resolved
// through a keymap.HandlerTable at dispatch time, so a handler may be added
// after its binding. Inline descriptors carry their handler.
//
// Unmatched sequences and tags without a handler are dropped silently: the
// caller sees a Result with StatusUnmatched or StatusNoHandler and nothing is
// raised. Handler invocation is synchronous.
//
// # Hooks
//
// Pre-dispatch hooks run after a handler has been resolved and may cancel
// the dispatch. Post-dispatch hooks observe the result.
//
//	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(cmd *keymap.Command) bool {
//	    return cmd.Context != "readonly"
//	}))
package dispatcher
