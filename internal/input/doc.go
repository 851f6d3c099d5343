// Package input is the chord engine: it turns a stream of key-down events
// into chord sequences and dispatches them to commands.
//
// # Data flow
//
// A modifier key press (Control, Shift, Alt, Meta/OS) marks the modifier as
// held. Any other key is normalized into a chord such as "ctrl+shift+a" and
// appended to the pending buffer. Every key event restarts a single idle
// timer; when it expires the buffered chords are joined with "," and
// dispatched under the context that was active when they were typed.
//
//	ctrl, k, ctrl, s, <idle>  ->  "ctrl+k,ctrl+s"
//
// # Usage
//
//	e, err := input.NewEngine(input.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.MapCommand("ctrl+k, ctrl+s", "save-all")
//	e.AddCommandHandlerFunc("save-all", func(cmd *keymap.Command) {
//	    // ...
//	})
//
//	for ev := range events {
//	    e.HandleKeyEvent(ev)
//	}
//
// Sequences with no binding, and command tags with no handler, are dropped
// silently. Only one burst is buffered at a time.
//
// # Instances
//
// Shared returns one engine for the whole process. NewEngine builds an
// independent engine; callers that use it own the single-instance rule
// themselves. The application in internal/app does so structurally: each
// Application creates exactly one engine and every input source, keymap
// file and script it loads feeds that engine.
package input
