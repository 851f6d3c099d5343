// Package lua lets Lua scripts configure the shortcut engine.
//
// A State is a gopher-lua runtime with only the base, table, string and math
// libraries opened and the code-loading builtins removed. A Bridge installs
// the keychord module into a State:
//
//	state := lua.NewState()
//	defer state.Close()
//
//	bridge := lua.NewBridge(state, engine, logger)
//	if err := bridge.LoadScripts(paths); err != nil {
//	    logger.Warn("some scripts failed", "error", err)
//	}
//
// A script binds keys to named commands or to Lua functions:
//
//	keychord.map("ctrl+s", "save")
//	keychord.map("ctrl+k, ctrl+c", function(cmd) print(cmd.keys) end, "editor")
//	keychord.handler("save", function(cmd) print("saving") end)
//	keychord.context("editor")
//
// Lua handlers run on whichever goroutine flushes the engine. All Lua
// execution is serialized by the State.
package lua
