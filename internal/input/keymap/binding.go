package keymap

import "sort"

// Binding is a keymap file entry: chord text bound to a command tag.
// Keys are human chord text and are normalized when registered.
type Binding struct {
	Keys    string `toml:"keys" yaml:"keys" json:"keys"`
	Command string `toml:"command" yaml:"command" json:"command"`
	Context string `toml:"context,omitempty" yaml:"context,omitempty" json:"context,omitempty"`
}

// Descriptor returns the named descriptor for the binding.
// An empty context selects the global context.
func (b Binding) Descriptor() Descriptor {
	d := Named(b.Command)
	if b.Context != "" {
		d = d.In(b.Context)
	}
	return d
}

// File is the decoded content of a keymap file.
type File struct {
	// Path is where the file was read from. Empty for in-memory data.
	Path string `toml:"-" yaml:"-" json:"-"`

	// Bindings is the flat binding list.
	Bindings []Binding `toml:"bindings" yaml:"bindings" json:"bindings"`

	// Keymaps holds per-context tables: context -> chord text -> command tag.
	Keymaps map[string]map[string]string `toml:"keymaps" yaml:"keymaps" json:"keymaps"`
}

// All flattens the file into one binding list. Per-context tables come first,
// sorted by context then keys, followed by the flat list in file order.
func (f *File) All() []Binding {
	all := FromTables(f.Keymaps)
	return append(all, f.Bindings...)
}

// FromTables flattens context -> keys -> tag tables into a sorted binding list.
func FromTables(tables map[string]map[string]string) []Binding {
	contexts := make([]string, 0, len(tables))
	for context := range tables {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	bindings := make([]Binding, 0)
	for _, context := range contexts {
		table := tables[context]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			bindings = append(bindings, Binding{Keys: k, Command: table[k], Context: context})
		}
	}
	return bindings
}
