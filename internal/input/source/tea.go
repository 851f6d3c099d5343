package source

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
)

type teaKey struct {
	key  tea.KeyType
	code key.Code
	mods key.Modifier
}

// teaKeys maps special bubbletea key types. As with tcell, several names
// share a value (KeyTab is KeyCtrlI), so the first match wins.
var teaKeys = []teaKey{
	{tea.KeyEnter, key.CodeEnter, key.ModNone},
	{tea.KeyTab, key.CodeTab, key.ModNone},
	{tea.KeyShiftTab, key.CodeTab, key.ModShift},
	{tea.KeyEsc, key.CodeEscape, key.ModNone},
	{tea.KeyBackspace, key.CodeBackspace, key.ModNone},
	{tea.KeyCtrlH, key.CodeBackspace, key.ModNone},
	{tea.KeySpace, key.CodeSpace, key.ModNone},
	{tea.KeyCtrlAt, key.CodeSpace, key.ModCtrl},
	{tea.KeyDelete, key.CodeDelete, key.ModNone},
	{tea.KeyInsert, key.CodeInsert, key.ModNone},
	{tea.KeyHome, key.CodeHome, key.ModNone},
	{tea.KeyEnd, key.CodeEnd, key.ModNone},
	{tea.KeyPgUp, key.CodePageUp, key.ModNone},
	{tea.KeyPgDown, key.CodePageDown, key.ModNone},
	{tea.KeyCtrlPgUp, key.CodePageUp, key.ModCtrl},
	{tea.KeyCtrlPgDown, key.CodePageDown, key.ModCtrl},
	{tea.KeyUp, key.CodeUp, key.ModNone},
	{tea.KeyDown, key.CodeDown, key.ModNone},
	{tea.KeyLeft, key.CodeLeft, key.ModNone},
	{tea.KeyRight, key.CodeRight, key.ModNone},
	{tea.KeyShiftUp, key.CodeUp, key.ModShift},
	{tea.KeyShiftDown, key.CodeDown, key.ModShift},
	{tea.KeyShiftLeft, key.CodeLeft, key.ModShift},
	{tea.KeyShiftRight, key.CodeRight, key.ModShift},
	{tea.KeyCtrlUp, key.CodeUp, key.ModCtrl},
	{tea.KeyCtrlDown, key.CodeDown, key.ModCtrl},
	{tea.KeyCtrlLeft, key.CodeLeft, key.ModCtrl},
	{tea.KeyCtrlRight, key.CodeRight, key.ModCtrl},
	{tea.KeyCtrlShiftUp, key.CodeUp, key.ModCtrl | key.ModShift},
	{tea.KeyCtrlShiftDown, key.CodeDown, key.ModCtrl | key.ModShift},
	{tea.KeyCtrlShiftLeft, key.CodeLeft, key.ModCtrl | key.ModShift},
	{tea.KeyCtrlShiftRight, key.CodeRight, key.ModCtrl | key.ModShift},
	{tea.KeyF1, key.CodeF1, key.ModNone},
	{tea.KeyF2, key.CodeF1 + 1, key.ModNone},
	{tea.KeyF3, key.CodeF1 + 2, key.ModNone},
	{tea.KeyF4, key.CodeF1 + 3, key.ModNone},
	{tea.KeyF5, key.CodeF1 + 4, key.ModNone},
	{tea.KeyF6, key.CodeF1 + 5, key.ModNone},
	{tea.KeyF7, key.CodeF1 + 6, key.ModNone},
	{tea.KeyF8, key.CodeF1 + 7, key.ModNone},
	{tea.KeyF9, key.CodeF1 + 8, key.ModNone},
	{tea.KeyF10, key.CodeF1 + 9, key.ModNone},
	{tea.KeyF11, key.CodeF1 + 10, key.ModNone},
	{tea.KeyF12, key.CodeF1 + 11, key.ModNone},
}

// FromTeaKey converts a bubbletea key message. Pasted text and multi-rune
// messages are not key presses and yield false.
func FromTeaKey(msg tea.KeyMsg) (key.Event, bool) {
	mods := key.ModNone
	if msg.Alt {
		mods |= key.ModAlt
	}

	if msg.Type == tea.KeyRunes {
		if msg.Paste || len(msg.Runes) != 1 {
			return key.Event{}, false
		}
		code, runeMods, ok := FromRune(msg.Runes[0])
		if !ok {
			return key.Event{}, false
		}
		return key.NewEvent(code, mods|runeMods), true
	}

	for _, tk := range teaKeys {
		if tk.key == msg.Type {
			return key.NewEvent(tk.code, mods|tk.mods), true
		}
	}

	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return key.NewEvent(key.Code('A'+int(msg.Type-tea.KeyCtrlA)), mods|key.ModCtrl), true
	}
	return key.Event{}, false
}

// Forward feeds msg to sink when it is a key message. It reports whether
// msg was a key press the sink accepted; unconvertible keys and keys the
// sink could not normalize are not errors.
func Forward(sink Sink, msg tea.Msg) (bool, error) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}
	ev, ok := FromTeaKey(km)
	if !ok {
		return false, nil
	}
	if err := sink.HandleKeyEvent(ev); err != nil {
		if errors.Is(err, chord.ErrUnrecognizedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
