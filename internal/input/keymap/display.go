package keymap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/keychord/internal/input/chord"
)

// Display formats a canonical sequence for people: each token title-cased and
// chords separated by ", ". For example "ctrl+k,ctrl+s" becomes
// "Ctrl+K, Ctrl+S".
func Display(seq chord.Sequence, c chord.Combinator) string {
	if c == "" {
		c = chord.DefaultCombinator
	}
	caser := cases.Title(language.English)
	sep := string(c)

	chords := seq.Chords()
	parts := make([]string, len(chords))
	for i, ch := range chords {
		tokens := strings.Split(string(ch), sep)
		for j, tok := range tokens {
			tokens[j] = caser.String(tok)
		}
		parts[i] = strings.Join(tokens, sep)
	}
	return strings.Join(parts, ", ")
}
