package source

import "github.com/dshills/keychord/internal/input/key"

// Sink receives key events. *input.Engine is a Sink.
type Sink interface {
	HandleKeyEvent(ev key.Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev key.Event) error

// HandleKeyEvent implements Sink.
func (f SinkFunc) HandleKeyEvent(ev key.Event) error {
	return f(ev)
}

// punctuation maps unshifted punctuation to key codes.
var punctuation = map[rune]key.Code{
	' ':  key.CodeSpace,
	';':  186,
	'=':  187,
	',':  188,
	'-':  189,
	'.':  190,
	'/':  191,
	'`':  192,
	'[':  219,
	'\\': 220,
	']':  221,
	'\'': 222,
	'*':  106,
	'+':  107,
}

// shifted maps shifted characters to their base character on a US layout.
var shifted = map[rune]rune{
	'!': '1',
	'@': '2',
	'#': '3',
	'$': '4',
	'%': '5',
	'^': '6',
	'&': '7',
	'(': '9',
	')': '0',
	'_': '-',
	'{': '[',
	'}': ']',
	'|': '\\',
	':': ';',
	'"': '\'',
	'<': ',',
	'>': '.',
	'?': '/',
	'~': '`',
}

// FromRune maps a printable character to a key code and the modifiers needed
// to type it. '*' and '+' map to the keypad keys.
func FromRune(r rune) (key.Code, key.Modifier, bool) {
	mods := key.ModNone
	if base, ok := shifted[r]; ok {
		r = base
		mods = key.ModShift
	}

	switch {
	case r >= 'a' && r <= 'z':
		return key.Code('A' + (r - 'a')), mods, true
	case r >= 'A' && r <= 'Z':
		return key.Code(r), mods | key.ModShift, true
	case r >= '0' && r <= '9':
		return key.Code(r), mods, true
	}

	if code, ok := punctuation[r]; ok {
		return code, mods, true
	}
	return key.CodeNone, key.ModNone, false
}
