// Package key provides the key-level vocabulary of the chord engine.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Code: a numeric key code as delivered by an input source
//   - Table: the static bidirectional mapping between codes and key names
//   - Modifier: the cmd, ctrl, shift and alt flags
//   - State: the modifiers held during the current buffering window
//   - Event: a single key-down event with its code, name and modifier flags
//
// # Key Names
//
// Canonical key names are lowercase and never contain whitespace, the sequence
// separator "," or either combinator symbol. Keys whose printed form would
// collide with those characters use spelled-out names such as "comma" and "minus".
//
// # Modifier Order
//
// Modifiers always serialize in the order cmd, ctrl, shift, alt, so the same
// set of held modifiers produces the same chord text regardless of the order
// in which they were pressed.
package key
