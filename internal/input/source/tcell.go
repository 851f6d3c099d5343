package source

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
)

type tcellKey struct {
	key  tcell.Key
	code key.Code
}

// tcellKeys maps special tcell keys to key codes. Several tcell names share a
// value (KeyTab is KeyCtrlI), so this is an ordered list rather than a map and
// the first match wins.
var tcellKeys = []tcellKey{
	{tcell.KeyEnter, key.CodeEnter},
	{tcell.KeyTab, key.CodeTab},
	{tcell.KeyBacktab, key.CodeTab},
	{tcell.KeyEscape, key.CodeEscape},
	{tcell.KeyBackspace, key.CodeBackspace},
	{tcell.KeyBackspace2, key.CodeBackspace},
	{tcell.KeyDelete, key.CodeDelete},
	{tcell.KeyInsert, key.CodeInsert},
	{tcell.KeyHome, key.CodeHome},
	{tcell.KeyEnd, key.CodeEnd},
	{tcell.KeyPgUp, key.CodePageUp},
	{tcell.KeyPgDn, key.CodePageDown},
	{tcell.KeyUp, key.CodeUp},
	{tcell.KeyDown, key.CodeDown},
	{tcell.KeyLeft, key.CodeLeft},
	{tcell.KeyRight, key.CodeRight},
	{tcell.KeyPause, key.CodePause},
}

// FromTcell converts a tcell key event. The boolean is false for keys with no
// code, such as non-ASCII runes.
func FromTcell(ev *tcell.EventKey) (key.Event, bool) {
	mods := fromTcellMods(ev.Modifiers())

	k := ev.Key()
	if k == tcell.KeyRune {
		code, runeMods, ok := FromRune(ev.Rune())
		if !ok {
			return key.Event{}, false
		}
		return newEvent(code, mods|runeMods, ev), true
	}

	for _, tk := range tcellKeys {
		if tk.key == k {
			if k == tcell.KeyBacktab {
				mods |= key.ModShift
			}
			return newEvent(tk.code, mods, ev), true
		}
	}

	switch {
	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return newEvent(key.CodeF1+key.Code(k-tcell.KeyF1), mods, ev), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return newEvent(key.Code('A'+(k-tcell.KeyCtrlA)), mods|key.ModCtrl, ev), true
	case k == tcell.KeyCtrlSpace:
		return newEvent(key.CodeSpace, mods|key.ModCtrl, ev), true
	}
	return key.Event{}, false
}

func newEvent(code key.Code, mods key.Modifier, ev *tcell.EventKey) key.Event {
	return key.Event{Code: code, Modifiers: mods, Timestamp: ev.When()}
}

func fromTcellMods(m tcell.ModMask) key.Modifier {
	mods := key.ModNone
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	return mods
}

// Pump reads events from screen and feeds key events to sink until ctx is
// cancelled or the screen is finalized. Keys that cannot be converted or
// normalized are skipped; any other sink error stops the pump.
func Pump(ctx context.Context, screen tcell.Screen, sink Sink) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort wakeup
		case <-done:
		}
	}()

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		case *tcell.EventKey:
			kev, ok := FromTcell(ev)
			if !ok {
				continue
			}
			if err := sink.HandleKeyEvent(kev); err != nil && !errors.Is(err, chord.ErrUnrecognizedKey) {
				return err
			}
		}
	}
}
