package key

import "strings"

// Modifier represents keyboard modifier keys as a bit set.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModMeta indicates the Meta key (Cmd on macOS, Win on Windows).
	ModMeta Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModShift indicates the Shift key.
	ModShift

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt
)

// ModifierName pairs a modifier's chord-text name with the flag it sets.
type ModifierName struct {
	Name string
	Flag Modifier
}

// Modifiers is the canonical modifier table in serialization order.
// The same table is consulted when formatting and when parsing chord text.
var Modifiers = []ModifierName{
	{Name: "cmd", Flag: ModMeta},
	{Name: "ctrl", Flag: ModCtrl},
	{Name: "shift", Flag: ModShift},
	{Name: "alt", Flag: ModAlt},
}

// modifierAliases are accepted when parsing but never produced.
var modifierAliases = map[string]Modifier{
	"meta":    ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
	"control": ModCtrl,
	"option":  ModAlt,
	"opt":     ModAlt,
}

// ModifierFromName returns the Modifier for a chord-text name or alias
// (case-insensitive). Returns ModNone if the name is not a modifier.
func ModifierFromName(name string) Modifier {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range Modifiers {
		if m.Name == name {
			return m.Flag
		}
	}
	return modifierAliases[name]
}

// IsModifierName reports whether name belongs to the closed modifier name set.
func IsModifierName(name string) bool {
	return ModifierFromName(name) != ModNone
}

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// Names returns the canonical names of the set modifiers in table order.
func (m Modifier) Names() []string {
	names := make([]string, 0, len(Modifiers))
	for _, entry := range Modifiers {
		if m.Has(entry.Flag) {
			names = append(names, entry.Name)
		}
	}
	return names
}

// Join returns the canonical names joined by sep, or "" when empty.
func (m Modifier) Join(sep string) string {
	return strings.Join(m.Names(), sep)
}

// String returns a representation like "ctrl+shift".
func (m Modifier) String() string {
	return m.Join("+")
}
