// Package config loads the application configuration.
//
// Configuration is TOML read through koanf. Files are read in order and later
// files override earlier ones: first $XDG_CONFIG_HOME/keychord/config.toml,
// then ./keychord.toml. A handful of KEYCHORD_* environment variables
// override both.
//
//	combinator = "+"
//	wait = "500ms"
//	context = "global"
//	recover_from_panic = true
//	metrics = false
//
//	[log]
//	level = "info"
//	format = "text"
//	file = "~/.local/state/keychord/keychord.log"
//	max_size_mb = 10
//	max_backups = 3
//
//	[keymaps]
//	files = ["~/.config/keychord/keys.toml"]
//	watch = true
//
//	[plugins]
//	scripts = ["~/.config/keychord/init.lua"]
package config
