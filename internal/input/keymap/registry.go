package keymap

import (
	"errors"
	"sort"
	"sync"

	"github.com/tidwall/match"

	"github.com/dshills/keychord/internal/input/chord"
)

// ErrEmptySequence is returned when registering an empty key sequence.
var ErrEmptySequence = errors.New("empty key sequence")

// Entry is one registered binding.
type Entry struct {
	Context    string
	Keys       chord.Sequence
	Descriptor Descriptor
}

// Registry maps canonical chord sequences to descriptors, per context.
//
// The global table always exists. Other context tables are created on first
// registration and persist for the registry's lifetime, even once empty.
type Registry struct {
	mu sync.RWMutex

	// tables holds context -> sequence -> descriptor.
	tables map[string]map[chord.Sequence]Descriptor
}

// NewRegistry creates a registry holding an empty global table.
func NewRegistry() *Registry {
	return &Registry{
		tables: map[string]map[chord.Sequence]Descriptor{
			GlobalContext: make(map[chord.Sequence]Descriptor),
		},
	}
}

// Register binds seq to d under d.Context, replacing any existing binding.
// Nothing is changed when d is invalid or seq is empty.
func (r *Registry) Register(seq chord.Sequence, d Descriptor) error {
	if seq == "" {
		return ErrEmptySequence
	}
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.tables[d.Context]
	if !ok {
		table = make(map[chord.Sequence]Descriptor)
		r.tables[d.Context] = table
	}
	table[seq] = d
	return nil
}

// Lookup finds the descriptor for seq under context, falling back to the
// global table only when context has no table.
func (r *Registry) Lookup(context string, seq chord.Sequence) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[context]
	if !ok {
		table = r.tables[GlobalContext]
	}
	d, ok := table[seq]
	return d, ok
}

// Unregister removes the binding for seq under context.
// Returns true if a binding was removed.
func (r *Registry) Unregister(context string, seq chord.Sequence) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.tables[context]
	if !ok {
		return false
	}
	if _, ok := table[seq]; !ok {
		return false
	}
	delete(table, seq)
	return true
}

// HasContext reports whether context has a table.
func (r *Registry) HasContext(context string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[context]
	return ok
}

// Contexts returns the names of all contexts with a table, sorted.
func (r *Registry) Contexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContextsMatching returns the sorted context names matching a wildcard
// pattern, where '*' matches any run of characters and '?' a single one.
func (r *Registry) ContextsMatching(pattern string) []string {
	all := r.Contexts()
	names := make([]string, 0, len(all))
	for _, name := range all {
		if match.Match(name, pattern) {
			names = append(names, name)
		}
	}
	return names
}

// Bindings returns every registered binding sorted by context, then keys.
func (r *Registry) Bindings() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0)
	for context, table := range r.tables {
		for seq, d := range table {
			entries = append(entries, Entry{Context: context, Keys: seq, Descriptor: d})
		}
	}
	sortEntries(entries)
	return entries
}

// ContextBindings returns the bindings of one context sorted by keys.
// No fallback applies.
func (r *Registry) ContextBindings(context string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := r.tables[context]
	entries := make([]Entry, 0, len(table))
	for seq, d := range table {
		entries = append(entries, Entry{Context: context, Keys: seq, Descriptor: d})
	}
	sortEntries(entries)
	return entries
}

// Len returns the total number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, table := range r.tables {
		n += len(table)
	}
	return n
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Context != entries[j].Context {
			return entries[i].Context < entries[j].Context
		}
		return entries[i].Keys < entries[j].Keys
	})
}
