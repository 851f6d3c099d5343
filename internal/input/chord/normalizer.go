package chord

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/keychord/internal/input/key"
)

// Normalization errors.
var (
	ErrUnrecognizedKey         = errors.New("unrecognized key")
	ErrUnrecognizedCombination = errors.New("unrecognized key combination")
)

// Normalizer converts key events and human chord text to canonical chords.
// A Normalizer is immutable and safe for concurrent use; the ambient
// modifier state passed to FromEvent is owned by the caller.
type Normalizer struct {
	combinator Combinator
	table      *key.Table
}

// NewNormalizer creates a normalizer for the given combinator and key table.
// A nil table selects key.Default.
func NewNormalizer(c Combinator, table *key.Table) *Normalizer {
	if c == "" {
		c = DefaultCombinator
	}
	if table == nil {
		table = key.Default
	}
	return &Normalizer{combinator: c, table: table}
}

// Combinator returns the configured combinator.
func (n *Normalizer) Combinator() Combinator {
	return n.combinator
}

// Table returns the key table used for lookups.
func (n *Normalizer) Table() *key.Table {
	return n.table
}

// Format builds the canonical chord for a modifier set and key code.
func (n *Normalizer) Format(mods key.Modifier, code key.Code) (Chord, error) {
	name, ok := n.table.Name(code)
	if !ok {
		return "", fmt.Errorf("%w: code %d", ErrUnrecognizedKey, int(code))
	}
	sep := string(n.combinator)
	if mods.IsEmpty() {
		return Chord(name), nil
	}
	return Chord(mods.Join(sep) + sep + name), nil
}

// FromEvent converts a non-modifier key event to a chord.
//
// Modifier flags packed on the event win; when the event carries none, the
// ambient state is used instead. The ambient state is always reset, since
// each recognized chord consumes the modifiers held for it.
func (n *Normalizer) FromEvent(ev key.Event, ambient *key.State) (Chord, error) {
	mods := ev.Modifiers
	if ambient != nil {
		if mods.IsEmpty() {
			mods = ambient.Held()
		}
		ambient.Reset()
	}

	code, ok := ev.Resolve(n.table)
	if !ok {
		if ev.Name != "" {
			return "", fmt.Errorf("%w: %q", ErrUnrecognizedKey, ev.Name)
		}
		return "", fmt.Errorf("%w: code %d", ErrUnrecognizedKey, int(code))
	}
	return n.Format(mods, code)
}

// ToCanonical normalizes human chord text such as "Ctrl + Shift + A, b" into
// a canonical sequence. Input is case- and whitespace-insensitive. Each
// comma-separated group must contain exactly one base key known to the table;
// every other token must be a modifier name.
func (n *Normalizer) ToCanonical(text string) (Sequence, error) {
	text = stripSpace(strings.ToLower(text))

	groups := strings.Split(text, SequenceSeparator)
	chords := make([]Chord, 0, len(groups))
	for _, group := range groups {
		c, err := n.parseGroup(group)
		if err != nil {
			return "", err
		}
		chords = append(chords, c)
	}
	return Join(chords...), nil
}

// MustCanonical is like ToCanonical but panics on error.
// Use only for known-valid chord text in initialization code.
func (n *Normalizer) MustCanonical(text string) Sequence {
	seq, err := n.ToCanonical(text)
	if err != nil {
		panic("invalid chord text: " + text + ": " + err.Error())
	}
	return seq
}

// parseGroup parses one comma-free chord group.
func (n *Normalizer) parseGroup(group string) (Chord, error) {
	var (
		mods  key.Modifier
		code  key.Code
		bases int
	)

	for _, token := range strings.Split(group, string(n.combinator)) {
		if mod := key.ModifierFromName(token); mod != key.ModNone {
			mods = mods.With(mod)
			continue
		}
		c, ok := n.table.Code(token)
		if !ok {
			return "", combinationError(group)
		}
		code = c
		bases++
	}

	if bases != 1 {
		return "", combinationError(group)
	}
	return n.Format(mods, code)
}

func combinationError(group string) error {
	return fmt.Errorf("%w `%s`", ErrUnrecognizedCombination, group)
}

// stripSpace removes all whitespace.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
