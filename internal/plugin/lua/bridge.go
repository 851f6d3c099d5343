package lua

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/logging"
)

// ModuleName is the global table scripts use to reach the engine.
const ModuleName = "keychord"

// Engine is the part of the shortcut engine scripts can drive.
type Engine interface {
	Map(keys string, d keymap.Descriptor) error
	Unmap(keys, context string) (bool, error)
	AddCommandHandler(tag string, h keymap.Handler)
	SetContext(name string)
	Context() string
	Bindings() []keymap.Entry
}

// Bridge exposes an Engine to Lua as the keychord module:
//
//	keychord.map(keys, command_or_function [, context]) -> ok, err
//	keychord.unmap(keys [, context])                    -> removed, err
//	keychord.handler(tag, function)
//	keychord.context([name])                            -> current context
//	keychord.bindings()                                 -> {{keys, command, context}, ...}
//
// Lua handlers receive a table with the id, name, keys and context of the
// flushed command.
type Bridge struct {
	state  *State
	engine Engine
	logger *logging.Logger
}

// NewBridge installs the keychord module into state.
func NewBridge(state *State, engine Engine, logger *logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.Nop()
	}
	b := &Bridge{
		state:  state,
		engine: engine,
		logger: logger.WithComponent("lua"),
	}
	state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"map":      b.luaMap,
		"unmap":    b.luaUnmap,
		"handler":  b.luaHandler,
		"context":  b.luaContext,
		"bindings": b.luaBindings,
	})
	return b
}

// LoadScript runs a script file.
func (b *Bridge) LoadScript(path string) error {
	if err := b.state.DoFile(path); err != nil {
		b.logger.Error("script failed", "path", path, "error", err)
		return fmt.Errorf("loading script %s: %w", path, err)
	}
	b.logger.Debug("script loaded", "path", path)
	return nil
}

// LoadScripts runs each script in order. A failing script does not stop the
// remaining ones; all failures are returned joined.
func (b *Bridge) LoadScripts(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := b.LoadScript(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// luaMap implements keychord.map.
func (b *Bridge) luaMap(L *lua.LState) int {
	keys := L.CheckString(1)

	var d keymap.Descriptor
	switch v := L.Get(2).(type) {
	case lua.LString:
		d = keymap.Named(string(v))
	case *lua.LFunction:
		d = keymap.Inline(b.handlerFor(v, ""))
	default:
		d = keymap.Descriptor{}
	}
	if ctx := L.OptString(3, ""); ctx != "" {
		d = d.In(ctx)
	}

	if err := b.engine.Map(keys, d); err != nil {
		b.logger.Debug("map rejected", "keys", keys, "error", err)
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// luaUnmap implements keychord.unmap.
func (b *Bridge) luaUnmap(L *lua.LState) int {
	keys := L.CheckString(1)
	ctx := L.OptString(2, keymap.GlobalContext)

	removed, err := b.engine.Unmap(keys, ctx)
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LBool(removed))
	return 1
}

// luaHandler implements keychord.handler.
func (b *Bridge) luaHandler(L *lua.LState) int {
	tag := L.CheckString(1)
	fn := L.CheckFunction(2)
	b.engine.AddCommandHandler(tag, b.handlerFor(fn, tag))
	return 0
}

// luaContext implements keychord.context.
func (b *Bridge) luaContext(L *lua.LState) int {
	if L.GetTop() >= 1 {
		b.engine.SetContext(L.CheckString(1))
	}
	L.Push(lua.LString(b.engine.Context()))
	return 1
}

// luaBindings implements keychord.bindings.
func (b *Bridge) luaBindings(L *lua.LState) int {
	list := L.NewTable()
	for _, e := range b.engine.Bindings() {
		t := L.NewTable()
		t.RawSetString("keys", lua.LString(e.Keys))
		t.RawSetString("context", lua.LString(e.Context))
		if e.Descriptor.Kind == keymap.KindNamed {
			t.RawSetString("command", lua.LString(e.Descriptor.Tag))
		}
		list.Append(t)
	}
	L.Push(list)
	return 1
}

// handlerFor wraps a Lua function as a keymap.Handler. label identifies the
// handler in logs.
func (b *Bridge) handlerFor(fn *lua.LFunction, label string) keymap.Handler {
	return keymap.HandlerFunc(func(cmd *keymap.Command) {
		err := b.state.run(func(L *lua.LState) error {
			return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, commandTable(L, cmd))
		})
		if err != nil {
			b.logger.Error("lua handler failed",
				"handler", label,
				"keys", string(cmd.Keys),
				"error", err,
			)
		}
	})
}

func commandTable(L *lua.LState, cmd *keymap.Command) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(cmd.ID.String()))
	t.RawSetString("name", lua.LString(cmd.Name))
	t.RawSetString("keys", lua.LString(cmd.Keys))
	t.RawSetString("context", lua.LString(cmd.Context))
	return t
}
