// Package source adapts terminal input libraries to chord engine key events.
//
// Terminals do not report modifier keys on their own, so every event produced
// here carries its modifiers packed on the event. Control-letter codes are
// reported as the letter with the ctrl modifier, and shifted characters as
// their base key with the shift modifier, using a US layout.
package source
