package key

import (
	"fmt"
	"strings"
)

// Code is a numeric key code.
// Values follow the legacy DOM keyCode numbering used by most input sources.
type Code int

// CodeNone represents the absence of a key code.
const CodeNone Code = 0

// Well-known codes.
const (
	CodeBackspace Code = 8
	CodeTab       Code = 9
	CodeEnter     Code = 13
	CodeShift     Code = 16
	CodeCtrl      Code = 17
	CodeAlt       Code = 18
	CodePause     Code = 19
	CodeCapsLock  Code = 20
	CodeEscape    Code = 27
	CodeSpace     Code = 32
	CodePageUp    Code = 33
	CodePageDown  Code = 34
	CodeEnd       Code = 35
	CodeHome      Code = 36
	CodeLeft      Code = 37
	CodeUp        Code = 38
	CodeRight     Code = 39
	CodeDown      Code = 40
	CodeInsert    Code = 45
	CodeDelete    Code = 46
	CodeMetaLeft  Code = 91
	CodeMetaRight Code = 93
	CodeF1        Code = 112
	CodeNumLock   Code = 144
	CodeScroll    Code = 145
	CodeMetaFF    Code = 224 // Firefox reports cmd as 224
)

// String returns the canonical name of the code, or "Code(n)" when unknown.
func (c Code) String() string {
	if name, ok := Default.Name(c); ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Table is a bidirectional mapping between key codes and canonical key names.
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	names map[Code]string
	codes map[string]Code
}

// NewTable creates a table from a code-to-name mapping plus name aliases.
// Names and aliases are lowercased. Aliases resolve to a code but are never
// produced when formatting.
func NewTable(names map[Code]string, aliases map[string]Code) *Table {
	t := &Table{
		names: make(map[Code]string, len(names)),
		codes: make(map[string]Code, len(names)+len(aliases)),
	}
	for code, name := range names {
		name = strings.ToLower(name)
		t.names[code] = name
		t.codes[name] = code
	}
	for alias, code := range aliases {
		alias = strings.ToLower(alias)
		if _, exists := t.codes[alias]; !exists {
			t.codes[alias] = code
		}
	}
	return t
}

// Name returns the canonical name for a code.
func (t *Table) Name(c Code) (string, bool) {
	name, ok := t.names[c]
	return name, ok
}

// Code returns the code for a key name or alias (case-insensitive).
func (t *Table) Code(name string) (Code, bool) {
	c, ok := t.codes[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Len returns the number of canonical entries.
func (t *Table) Len() int {
	return len(t.names)
}

// Default is the built-in key code table.
// Modifier keys are deliberately absent: they never form a chord on their own.
var Default = NewTable(defaultNames(), defaultAliases)

func defaultNames() map[Code]string {
	names := map[Code]string{
		CodeBackspace: "backspace",
		CodeTab:       "tab",
		CodeEnter:     "enter",
		CodePause:     "pause",
		CodeCapsLock:  "capslock",
		CodeEscape:    "escape",
		CodeSpace:     "space",
		CodePageUp:    "pageup",
		CodePageDown:  "pagedown",
		CodeEnd:       "end",
		CodeHome:      "home",
		CodeLeft:      "left",
		CodeUp:        "up",
		CodeRight:     "right",
		CodeDown:      "down",
		CodeInsert:    "insert",
		CodeDelete:    "delete",
		CodeNumLock:   "numlock",
		CodeScroll:    "scrolllock",

		106: "multiply",
		107: "add",
		109: "subtract",
		110: "decimal",
		111: "divide",

		186: ";",
		187: "=",
		188: "comma",
		189: "minus",
		190: ".",
		191: "/",
		192: "`",
		219: "[",
		220: "\\",
		221: "]",
		222: "'",
	}

	// digits 0-9
	for i := 0; i <= 9; i++ {
		names[Code(48+i)] = string(rune('0' + i))
	}
	// letters a-z
	for i := 0; i < 26; i++ {
		names[Code(65+i)] = string(rune('a' + i))
	}
	// keypad digits
	for i := 0; i <= 9; i++ {
		names[Code(96+i)] = fmt.Sprintf("numpad%d", i)
	}
	// function keys
	for i := 0; i < 12; i++ {
		names[CodeF1+Code(i)] = fmt.Sprintf("f%d", i+1)
	}
	return names
}

var defaultAliases = map[string]Code{
	"esc":       CodeEscape,
	"return":    CodeEnter,
	"bs":        CodeBackspace,
	"del":       CodeDelete,
	"ins":       CodeInsert,
	"pgup":      CodePageUp,
	"pgdn":      CodePageDown,
	"pgdown":    CodePageDown,
	"spacebar":  CodeSpace,
	"semicolon": 186,
	"equal":     187,
	"period":    190,
	"slash":     191,
	"backquote": 192,
	"backslash": 220,
	"quote":     222,
}
