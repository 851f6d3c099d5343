package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input/keymap"
)

type fixture struct {
	dir    string
	config string
	keys   string
	script string
}

func newFixture(t *testing.T, watch bool) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		keys:   filepath.Join(dir, "keys.toml"),
		script: filepath.Join(dir, "init.lua"),
	}

	write(t, f.keys, `
[keymaps.global]
"ctrl+q" = "app.quit"
"ctrl+s" = "save"
`)
	write(t, f.script, `keychord.map("ctrl+k, ctrl+c", "comment", "editor")`)
	// "terminal" has no table of its own, so its lookups fall back to global.
	write(t, f.config, fmt.Sprintf(`
wait = "200ms"
context = "terminal"

[keymaps]
files = [%q]
watch = %t

[plugins]
scripts = [%q]
`, f.keys, watch, f.script))
	return f
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newApp(t *testing.T, opts Options) *Application {
	t.Helper()
	opts.LogOutput = io.Discard
	app, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(app.Shutdown)
	return app
}

func TestNewLoadsEverything(t *testing.T) {
	f := newFixture(t, false)
	app := newApp(t, Options{ConfigPaths: []string{f.config}})

	e := app.Engine()
	assert.Equal(t, "terminal", e.Context())
	assert.Equal(t, 200*time.Millisecond, e.Wait())
	assert.Empty(t, app.LoadErrors())

	tags := map[string]string{}
	for _, entry := range e.Bindings() {
		tags[entry.Context+" "+string(entry.Keys)] = entry.Descriptor.Tag
	}
	assert.Equal(t, map[string]string{
		"global ctrl+q":        "app.quit",
		"global ctrl+s":        "save",
		"editor ctrl+k,ctrl+c": "comment",
	}, tags)

	for _, tag := range []string{CommandQuit, CommandReload, CommandResetContext} {
		_, ok := e.Handlers().Get(tag)
		assert.True(t, ok, tag)
	}
}

func TestLoadFailuresAreNotFatal(t *testing.T) {
	f := newFixture(t, false)
	bad := filepath.Join(f.dir, "bad.lua")
	write(t, bad, `keychord.map(`)

	app := newApp(t, Options{
		ConfigPaths: []string{f.config},
		KeymapFiles: []string{filepath.Join(f.dir, "missing.toml")},
		Scripts:     []string{bad},
	})

	errs := app.LoadErrors()
	assert.Len(t, errs, 2)
	assert.Len(t, app.Engine().Bindings(), 3)
}

func TestNewFailsOnBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	write(t, path, `combinator = "*"`)

	_, err := New(Options{ConfigPaths: []string{path}, LogOutput: io.Discard})
	require.Error(t, err)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "config", initErr.Component)
}

func TestLogLevelOverride(t *testing.T) {
	f := newFixture(t, false)
	_, err := New(Options{ConfigPaths: []string{f.config}, LogLevel: "loud", LogOutput: io.Discard})
	require.Error(t, err)
}

func TestRunDispatchesAndQuits(t *testing.T) {
	f := newFixture(t, false)
	fc := testingclock.NewFakeClock(time.Now())
	app := newApp(t, Options{ConfigPaths: []string{f.config}, Clock: fc})

	var (
		mu      sync.Mutex
		results []dispatcher.Result
	)
	app.OnCommand(func(r dispatcher.Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	})
	var saved []string
	app.Engine().AddCommandHandlerFunc("save", func(cmd *keymap.Command) {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, string(cmd.Keys))
	})

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), screen) }()
	require.Eventually(t, app.IsRunning, time.Second, 5*time.Millisecond)

	burst := func(k tcell.Key) {
		screen.InjectKey(k, 0, tcell.ModCtrl)
		require.Eventually(t, func() bool { return app.Engine().PendingKeys() != "" }, time.Second, 5*time.Millisecond)
		require.Eventually(t, fc.HasWaiters, time.Second, 5*time.Millisecond)
		fc.Step(200 * time.Millisecond)
	}

	burst(tcell.KeyCtrlS)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(saved) == 1
	}, time.Second, 5*time.Millisecond)

	burst(tcell.KeyCtrlQ)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQuit)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	assert.Equal(t, "save", results[0].Command.Name)
	assert.True(t, results[1].Handled())
}

func TestRunStopsWithContext(t *testing.T) {
	f := newFixture(t, false)
	app := newApp(t, Options{ConfigPaths: []string{f.config}})

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, screen) }()
	require.Eventually(t, app.IsRunning, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, app.Run(ctx, screen), ErrAlreadyRunning)

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReloadBuiltin(t *testing.T) {
	f := newFixture(t, false)
	app := newApp(t, Options{ConfigPaths: []string{f.config}})

	write(t, f.keys, "[keymaps.global]\n\"ctrl+w\" = \"close\"\n")
	require.NoError(t, app.Reload())

	keys := map[string]bool{}
	for _, entry := range app.Engine().Bindings() {
		keys[string(entry.Keys)] = true
	}
	assert.True(t, keys["ctrl+w"])
	assert.False(t, keys["ctrl+s"])
	assert.True(t, keys["ctrl+k,ctrl+c"], "script bindings survive a keymap reload")
}

func TestWatcherReloadsKeymaps(t *testing.T) {
	f := newFixture(t, true)
	app := newApp(t, Options{ConfigPaths: []string{f.config}})

	write(t, f.keys, "[keymaps.global]\n\"ctrl+w\" = \"close\"\n")
	require.Eventually(t, func() bool {
		for _, entry := range app.Engine().Bindings() {
			if entry.Keys == "ctrl+w" {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
}

func TestShutdownIsIdempotent(t *testing.T) {
	f := newFixture(t, true)
	app, err := New(Options{ConfigPaths: []string{f.config}, LogOutput: io.Discard})
	require.NoError(t, err)

	app.Shutdown()
	app.Shutdown()
	assert.True(t, app.Engine().IsClosed())

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	assert.ErrorIs(t, app.Run(context.Background(), screen), ErrShutdown)
}

func TestApplicationOwnsOneEngine(t *testing.T) {
	f := newFixture(t, false)
	first := newApp(t, Options{ConfigPaths: []string{f.config}})
	second := newApp(t, Options{ConfigPaths: []string{f.config}})

	require.NotSame(t, first.Engine(), second.Engine())
	assert.Same(t, first.Engine(), first.Engine())

	_, ok := first.Engine().Registry().Lookup("editor", "ctrl+k,ctrl+c")
	assert.True(t, ok, "scripts feed the application's engine")

	first.Shutdown()
	assert.True(t, first.Engine().IsClosed())
	assert.False(t, second.Engine().IsClosed())
}
