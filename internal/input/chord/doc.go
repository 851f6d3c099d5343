// Package chord turns key events into canonical chord text and buffers bursts
// of chords into sequences.
//
// A chord is one base key plus the modifiers held with it, written as
// "ctrl+shift+a" (or "ctrl-shift-a" with the "-" combinator). A sequence is
// the comma-joined list of chords pressed within one idle window, such as
// "ctrl+k,ctrl+s".
//
// The Normalizer converts both human chord text and live key events to the
// same canonical form, so bindings written by hand and keys pressed at runtime
// compare equal as plain strings. The Buffer accumulates chords until input
// goes idle for the configured wait, then flushes them as one Pending value.
package chord
