package key

import (
	"testing"
)

func TestEventModifierKey(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		mod   Modifier
		isMod bool
	}{
		{"meta by name", Event{Name: "Meta"}, ModMeta, true},
		{"os by name", Event{Name: "OS"}, ModMeta, true},
		{"control by name", Event{Name: "Control"}, ModCtrl, true},
		{"shift by code", Event{Code: CodeShift}, ModShift, true},
		{"alt by code", Event{Code: CodeAlt}, ModAlt, true},
		{"firefox meta", Event{Code: CodeMetaFF}, ModMeta, true},
		{"letter", Event{Code: 65, Name: "a"}, ModNone, false},
		{"letter with flags", Event{Code: 65, Modifiers: ModCtrl}, ModNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, ok := tt.event.ModifierKey()
			if ok != tt.isMod || mod != tt.mod {
				t.Errorf("ModifierKey() = %v, %v; want %v, %v", mod, ok, tt.mod, tt.isMod)
			}
		})
	}
}

func TestEventResolve(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		code  Code
		ok    bool
	}{
		{"by code", NewEvent(75, ModNone), 75, true},
		{"by name", NewNamedEvent("K", ModNone), 75, true},
		{"by alias", NewNamedEvent("Esc", ModNone), CodeEscape, true},
		{"unknown code", NewEvent(5000, ModNone), 5000, false},
		{"unknown name", NewNamedEvent("Hyper", ModNone), CodeNone, false},
		{"empty", Event{}, CodeNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := tt.event.Resolve(Default)
			if code != tt.code || ok != tt.ok {
				t.Errorf("Resolve() = %d, %v; want %d, %v", code, ok, tt.code, tt.ok)
			}
		})
	}
}

func TestEventWithModifier(t *testing.T) {
	e := NewEvent(65, ModNone)
	modified := e.WithModifier(ModCtrl)
	if e.IsModified() {
		t.Error("WithModifier should not change the original event")
	}
	if !modified.Modifiers.HasCtrl() {
		t.Error("WithModifier should add Ctrl")
	}
}
