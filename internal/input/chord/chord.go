package chord

import (
	"errors"
	"fmt"
	"strings"
)

// SequenceSeparator joins chords within a sequence.
const SequenceSeparator = ","

// Combinator separates modifier and key tokens inside one chord.
type Combinator string

// Supported combinators.
const (
	Plus  Combinator = "+"
	Minus Combinator = "-"
)

// DefaultCombinator is used when none is configured.
const DefaultCombinator = Plus

// ErrInvalidCombinator is returned for any combinator other than "+" or "-".
var ErrInvalidCombinator = errors.New(`unrecognized combinator, only "+" or "-" is supported`)

// ParseCombinator validates a configured combinator. The empty string selects
// the default.
func ParseCombinator(s string) (Combinator, error) {
	switch Combinator(s) {
	case "":
		return DefaultCombinator, nil
	case Plus, Minus:
		return Combinator(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCombinator, s)
	}
}

// String returns the combinator symbol.
func (c Combinator) String() string {
	return string(c)
}

// Chord is one canonical chord string, e.g. "ctrl+shift+a".
type Chord string

// String returns the chord text.
func (c Chord) String() string {
	return string(c)
}

// Sequence is a canonical chord sequence, e.g. "ctrl+k,ctrl+s".
type Sequence string

// Join builds a sequence from chords in press order.
func Join(chords ...Chord) Sequence {
	parts := make([]string, len(chords))
	for i, c := range chords {
		parts[i] = string(c)
	}
	return Sequence(strings.Join(parts, SequenceSeparator))
}

// Chords splits the sequence into its chords.
func (s Sequence) Chords() []Chord {
	if s == "" {
		return nil
	}
	parts := strings.Split(string(s), SequenceSeparator)
	chords := make([]Chord, len(parts))
	for i, p := range parts {
		chords[i] = Chord(p)
	}
	return chords
}

// Len returns the number of chords in the sequence.
func (s Sequence) Len() int {
	if s == "" {
		return 0
	}
	return strings.Count(string(s), SequenceSeparator) + 1
}

// String returns the sequence text.
func (s Sequence) String() string {
	return string(s)
}
