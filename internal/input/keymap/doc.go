// Package keymap holds the context-scoped binding tables of the chord engine.
//
// A binding maps a canonical chord sequence (see package chord) to a
// Descriptor. A descriptor is either a named command tag, resolved at dispatch
// time through a HandlerTable, or an inline Handler bound directly to the keys.
// Every descriptor belongs to exactly one context; "global" is the default.
//
// # Lookup
//
// Lookup searches the table of the requested context. When that context has
// no table at all, the "global" table is searched instead. A context that has
// a table but no entry for the sequence yields no match:
//
//	reg := keymap.NewRegistry()
//	reg.Register("ctrl+s", keymap.Named("save"))
//	reg.Register("ctrl+s", keymap.Named("commit").In("git"))
//
//	reg.Lookup("git", "ctrl+s")    // commit
//	reg.Lookup("editor", "ctrl+s") // save, "editor" has no table
//
// # Files
//
// Bindings can be loaded from TOML, YAML or JSON files. Both a flat list and a
// per-context table are accepted:
//
//	[[bindings]]
//	keys = "ctrl+k, ctrl+s"
//	command = "save-all"
//
//	[keymaps.sidebar]
//	"ctrl+n" = "new-file"
package keymap
