package key

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single key-down event.
type Event struct {
	// Code is the numeric key code. Zero when the source only reports a name.
	Code Code

	// Name is the key name as reported by the source ("a", "Control", "Enter").
	Name string

	// Modifiers contains the modifier flags packed on the event.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(code Code, mods Modifier) Event {
	return Event{
		Code:      code,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewNamedEvent creates a key event for a source that reports key names.
func NewNamedEvent(name string, mods Modifier) Event {
	return Event{
		Name:      name,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// modifierKeyNames maps source key names of modifier keys to their flag.
var modifierKeyNames = map[string]Modifier{
	"meta":    ModMeta,
	"os":      ModMeta,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
}

// modifierKeyCodes maps key codes of modifier keys to their flag.
var modifierKeyCodes = map[Code]Modifier{
	CodeShift:     ModShift,
	CodeCtrl:      ModCtrl,
	CodeAlt:       ModAlt,
	CodeMetaLeft:  ModMeta,
	92:            ModMeta, // right Windows key
	CodeMetaRight: ModMeta,
	CodeMetaFF:    ModMeta,
}

// ModifierKey reports whether the event is the press of a modifier key itself,
// and which modifier it is. The key name wins over the code when both are set.
func (e Event) ModifierKey() (Modifier, bool) {
	if e.Name != "" {
		mod, ok := modifierKeyNames[strings.ToLower(e.Name)]
		return mod, ok
	}
	mod, ok := modifierKeyCodes[e.Code]
	return mod, ok
}

// IsModifierKey returns true if the event is the press of a modifier key.
func (e Event) IsModifierKey() bool {
	_, ok := e.ModifierKey()
	return ok
}

// IsModified returns true if any modifier flag is packed on the event.
func (e Event) IsModified() bool {
	return e.Modifiers != ModNone
}

// Resolve returns the event's key code, looking the name up in t when the
// event carries no code.
func (e Event) Resolve(t *Table) (Code, bool) {
	if e.Code != CodeNone {
		if _, ok := t.Name(e.Code); ok {
			return e.Code, true
		}
		return e.Code, false
	}
	if e.Name == "" {
		return CodeNone, false
	}
	return t.Code(e.Name)
}

// WithModifier returns a copy with the specified modifier added.
func (e Event) WithModifier(mod Modifier) Event {
	e.Modifiers = e.Modifiers.With(mod)
	return e
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Code: %d, Name: %q, Modifiers: %s}",
		int(e.Code), e.Name, e.Modifiers.String())
}
