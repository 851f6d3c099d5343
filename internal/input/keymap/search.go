package keymap

import (
	"github.com/sahilm/fuzzy"
)

// Match is a search hit.
type Match struct {
	Entry
	Score int
}

// entrySource adapts entries to fuzzy.Source.
type entrySource []Entry

func (s entrySource) String(i int) string {
	e := s[i]
	name := e.Descriptor.Tag
	if e.Descriptor.Kind == KindInline {
		name = "inline"
	}
	return string(e.Keys) + " " + name + " " + e.Context
}

func (s entrySource) Len() int {
	return len(s)
}

// Search fuzzy-matches pattern against each entry's keys, command tag and
// context. Results are ordered best match first. An empty pattern returns
// every entry in its original order.
func Search(pattern string, entries []Entry) []Match {
	if pattern == "" {
		matches := make([]Match, len(entries))
		for i, e := range entries {
			matches[i] = Match{Entry: e}
		}
		return matches
	}

	found := fuzzy.FindFrom(pattern, entrySource(entries))
	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{Entry: entries[m.Index], Score: m.Score}
	}
	return matches
}
