package dispatcher_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/logging"
)

func newDispatcher(t *testing.T, config dispatcher.Config) (*dispatcher.Dispatcher, *keymap.Registry, *keymap.HandlerTable) {
	t.Helper()
	reg := keymap.NewRegistry()
	handlers := keymap.NewHandlerTable()
	return dispatcher.New(reg, handlers, config), reg, handlers
}

func register(t *testing.T, reg *keymap.Registry, seq chord.Sequence, d keymap.Descriptor) {
	t.Helper()
	if err := reg.Register(seq, d); err != nil {
		t.Fatalf("Register(%q) failed: %v", seq, err)
	}
}

func command(keys, context string) *keymap.Command {
	return keymap.NewCommand(chord.Sequence(keys), context, key.NewEvent(key.CodeEnter, key.ModNone))
}

func TestDispatchNamed(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig())
	register(t, reg, "ctrl+k", keymap.Named("save"))

	var got []*keymap.Command
	handlers.AddFunc("save", func(cmd *keymap.Command) { got = append(got, cmd) })

	res := d.Dispatch(command("ctrl+k", keymap.GlobalContext))
	if !res.Handled() {
		t.Fatalf("expected handled result, got %v", res.Status)
	}
	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	if got[0].Name != "save" {
		t.Errorf("Name = %q, want %q", got[0].Name, "save")
	}
	if got[0].Keys != "ctrl+k" {
		t.Errorf("Keys = %q, want %q", got[0].Keys, "ctrl+k")
	}
}

func TestDispatchInline(t *testing.T) {
	d, reg, _ := newDispatcher(t, dispatcher.DefaultConfig())

	calls := 0
	register(t, reg, "a,b", keymap.InlineFunc(func(cmd *keymap.Command) {
		calls++
		if cmd.Name != "" {
			t.Errorf("inline command has name %q", cmd.Name)
		}
	}))

	res := d.Dispatch(command("a,b", keymap.GlobalContext))
	if res.Status != dispatcher.StatusHandled {
		t.Errorf("Status = %v, want handled", res.Status)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestDispatchPerContext(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig())
	register(t, reg, "ctrl+s", keymap.Named("save"))
	register(t, reg, "ctrl+s", keymap.Named("commit").In("git"))

	var ran []string
	handlers.AddFunc("save", func(*keymap.Command) { ran = append(ran, "save") })
	handlers.AddFunc("commit", func(*keymap.Command) { ran = append(ran, "commit") })

	d.Dispatch(command("ctrl+s", "git"))
	d.Dispatch(command("ctrl+s", keymap.GlobalContext))
	d.Dispatch(command("ctrl+s", "unregistered"))

	want := []string{"commit", "save", "save"}
	if strings.Join(ran, " ") != strings.Join(want, " ") {
		t.Errorf("ran %v, want %v", ran, want)
	}
}

func TestDispatchSilentDrops(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Output: &buf, Level: slog.LevelDebug})
	d, reg, _ := newDispatcher(t, dispatcher.DefaultConfig().WithLogger(logger).WithMetrics())
	register(t, reg, "ctrl+k", keymap.Named("save"))

	res := d.Dispatch(command("ctrl+q", keymap.GlobalContext))
	if res.Status != dispatcher.StatusUnmatched {
		t.Errorf("unbound Status = %v, want unmatched", res.Status)
	}
	if res.Err != nil {
		t.Errorf("unbound Err = %v, want nil", res.Err)
	}

	res = d.Dispatch(command("ctrl+k", keymap.GlobalContext))
	if res.Status != dispatcher.StatusNoHandler {
		t.Errorf("unhandled Status = %v, want no-handler", res.Status)
	}
	if !errors.Is(res.Err, dispatcher.ErrNoHandler) {
		t.Errorf("unhandled Err = %v, want ErrNoHandler", res.Err)
	}

	out := buf.String()
	for _, msg := range []string{"no binding", "no handler"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log output missing %q:\n%s", msg, out)
		}
	}

	m := d.Metrics()
	if m.TotalUnmatched() != 1 {
		t.Errorf("TotalUnmatched = %d, want 1", m.TotalUnmatched())
	}
	if m.TotalDropped() != 1 {
		t.Errorf("TotalDropped = %d, want 1", m.TotalDropped())
	}
}

func TestDispatchLateHandler(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig())
	register(t, reg, "f5", keymap.Named("run"))

	if s := d.Dispatch(command("f5", keymap.GlobalContext)).Status; s != dispatcher.StatusNoHandler {
		t.Errorf("before AddFunc: Status = %v, want no-handler", s)
	}

	handlers.AddFunc("run", func(*keymap.Command) {})
	if s := d.Dispatch(command("f5", keymap.GlobalContext)).Status; s != dispatcher.StatusHandled {
		t.Errorf("after AddFunc: Status = %v, want handled", s)
	}
}

func TestDispatchPanicRecovery(t *testing.T) {
	d, reg, _ := newDispatcher(t, dispatcher.DefaultConfig().WithMetrics())
	register(t, reg, "x", keymap.InlineFunc(func(*keymap.Command) {
		panic("boom")
	}))

	res := d.Dispatch(command("x", keymap.GlobalContext))
	if res.Status != dispatcher.StatusPanicked {
		t.Errorf("Status = %v, want panicked", res.Status)
	}
	if !errors.Is(res.Err, dispatcher.ErrPanic) {
		t.Fatalf("Err = %v, want ErrPanic", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "boom") {
		t.Errorf("Err %q does not carry the panic value", res.Err)
	}
	if d.Metrics().TotalPanics() != 1 {
		t.Errorf("TotalPanics = %d, want 1", d.Metrics().TotalPanics())
	}
}

func TestDispatchWithoutRecoveryPanics(t *testing.T) {
	d, reg, _ := newDispatcher(t, dispatcher.DefaultConfig().WithPanicRecovery(false))
	register(t, reg, "x", keymap.InlineFunc(func(*keymap.Command) {
		panic("boom")
	}))

	defer func() {
		if recover() == nil {
			t.Error("expected the handler panic to propagate")
		}
	}()
	d.Dispatch(command("x", keymap.GlobalContext))
}

func TestDispatchHooks(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig())
	register(t, reg, "ctrl+d", keymap.Named("delete"))
	register(t, reg, "ctrl+d", keymap.Named("delete").In("readonly"))

	ran := 0
	handlers.AddFunc("delete", func(*keymap.Command) { ran++ })

	var seen []dispatcher.Status
	d.RegisterPreHook(dispatcher.NewContextFilterHook("readonly"))
	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(_ *keymap.Command, r dispatcher.Result) {
		seen = append(seen, r.Status)
	}))

	res := d.Dispatch(command("ctrl+d", "readonly"))
	if res.Status != dispatcher.StatusCancelled {
		t.Errorf("Status = %v, want cancelled", res.Status)
	}
	if !errors.Is(res.Err, dispatcher.ErrCancelled) {
		t.Errorf("Err = %v, want ErrCancelled", res.Err)
	}

	d.Dispatch(command("ctrl+d", keymap.GlobalContext))
	d.Dispatch(command("ctrl+z", keymap.GlobalContext))

	if ran != 1 {
		t.Errorf("handler ran %d times, want 1", ran)
	}
	// Post hooks only see bound commands.
	if len(seen) != 2 || seen[0] != dispatcher.StatusCancelled || seen[1] != dispatcher.StatusHandled {
		t.Errorf("post hooks saw %v, want [cancelled handled]", seen)
	}
}

func TestPreHookSeesName(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig())
	register(t, reg, "ctrl+o", keymap.Named("open"))
	handlers.AddFunc("open", func(*keymap.Command) {})

	var name string
	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(cmd *keymap.Command) bool {
		name = cmd.Name
		return true
	}))

	d.Dispatch(command("ctrl+o", keymap.GlobalContext))
	if name != "open" {
		t.Errorf("pre hook saw name %q, want %q", name, "open")
	}
}

func TestMetrics(t *testing.T) {
	d, reg, handlers := newDispatcher(t, dispatcher.DefaultConfig().WithMetrics())
	register(t, reg, "a", keymap.Named("alpha"))
	register(t, reg, "b", keymap.Named("beta"))
	handlers.AddFunc("alpha", func(*keymap.Command) {})
	handlers.AddFunc("beta", func(*keymap.Command) {})

	for i := 0; i < 3; i++ {
		d.Dispatch(command("a", keymap.GlobalContext))
	}
	d.Dispatch(command("b", keymap.GlobalContext))

	m := d.Metrics()
	if m.TotalDispatches() != 4 {
		t.Errorf("TotalDispatches = %d, want 4", m.TotalDispatches())
	}

	alpha := m.CommandStats("alpha")
	if alpha == nil {
		t.Fatal("expected stats for alpha")
	}
	if alpha.DispatchCount != 3 {
		t.Errorf("alpha DispatchCount = %d, want 3", alpha.DispatchCount)
	}
	if alpha.LastStatus != dispatcher.StatusHandled {
		t.Errorf("alpha LastStatus = %v, want handled", alpha.LastStatus)
	}

	top := m.TopCommands(1)
	if len(top) != 1 || top[0].Name != "alpha" {
		t.Errorf("TopCommands(1) = %v, want [alpha]", top)
	}

	if snap := m.Snapshot(); snap.CommandCount != 2 {
		t.Errorf("Snapshot CommandCount = %d, want 2", snap.CommandCount)
	}

	m.Reset()
	if m.TotalDispatches() != 0 {
		t.Errorf("after Reset TotalDispatches = %d", m.TotalDispatches())
	}
	if m.CommandStats("alpha") != nil {
		t.Error("after Reset alpha stats should be gone")
	}
}

func TestMetricsDisabledByDefault(t *testing.T) {
	d, _, _ := newDispatcher(t, dispatcher.DefaultConfig())
	if d.Metrics() != nil {
		t.Error("expected nil metrics by default")
	}
	if !d.Config().RecoverFromPanic {
		t.Error("expected panic recovery by default")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status dispatcher.Status
		want   string
	}{
		{dispatcher.StatusNoHandler, "no-handler"},
		{dispatcher.Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
