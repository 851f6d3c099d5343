package watcher

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/logging"
)

func newEngine(t *testing.T) *input.Engine {
	t.Helper()
	e, err := input.NewEngine(input.DefaultConfig().WithClock(testingclock.NewFakeClock(time.Now())))
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func bindingSet(e *input.Engine) map[string]string {
	set := make(map[string]string)
	for _, entry := range e.Bindings() {
		set[entry.Context+" "+string(entry.Keys)] = entry.Descriptor.Tag
	}
	return set
}

func TestReloaderLoad(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, `
[keymaps.global]
"ctrl+s" = "save"

[keymaps.editor]
"ctrl+k, ctrl+c" = "comment"
`)
	require.NoError(t, r.Load(path))
	assert.Equal(t, map[string]string{
		"global ctrl+s":        "save",
		"editor ctrl+k,ctrl+c": "comment",
	}, bindingSet(e))
	assert.Equal(t, 1, r.Files())
}

func TestReloaderRemovesStaleBindings(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, `
[keymaps.global]
"ctrl+s" = "save"
"ctrl+o" = "open"
`)
	require.NoError(t, r.Load(path))

	writeFile(t, path, `
[keymaps.global]
"Ctrl + S" = "save-all"
"ctrl+q" = "quit"
`)
	require.NoError(t, r.Load(path))

	assert.Equal(t, map[string]string{
		"global ctrl+s": "save-all",
		"global ctrl+q": "quit",
	}, bindingSet(e))
}

func TestReloaderKeepsBindingsOnParseError(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, `
[keymaps.global]
"ctrl+s" = "save"
`)
	require.NoError(t, r.Load(path))

	writeFile(t, path, `[keymaps.global`)
	require.Error(t, r.Load(path))
	assert.Equal(t, map[string]string{"global ctrl+s": "save"}, bindingSet(e))
}

func TestReloaderPartialFailure(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, `
[keymaps.global]
"ctrl+s" = "save"
"ctrl+nosuchkey" = "broken"
`)
	err := r.Load(path)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"global ctrl+s": "save"}, bindingSet(e))
}

func TestReloaderRemove(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")
	writeFile(t, a, "[keymaps.global]\n\"ctrl+a\" = \"all\"\n")
	writeFile(t, b, "[keymaps.global]\n\"ctrl+b\" = \"bold\"\n")
	require.NoError(t, r.Load(a))
	require.NoError(t, r.Load(b))

	require.NoError(t, os.Remove(a))
	r.Handle(Event{Path: a, Op: OpRemove})

	assert.Equal(t, map[string]string{"global ctrl+b": "bold"}, bindingSet(e))
	assert.Equal(t, 1, r.Files())
}

func TestReloaderKeepsBindingClaimedByAnotherFile(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")
	writeFile(t, a, "[keymaps.global]\n\"ctrl+k\" = \"from-a\"\n\"ctrl+j\" = \"other\"\n")
	writeFile(t, b, "[keymaps.global]\n\"ctrl+k\" = \"from-b\"\n")
	require.NoError(t, r.Load(a))
	require.NoError(t, r.Load(b))

	writeFile(t, a, "[keymaps.global]\n\"ctrl+j\" = \"other\"\n")
	require.NoError(t, r.Load(a))

	assert.Equal(t, map[string]string{
		"global ctrl+k": "from-b",
		"global ctrl+j": "other",
	}, bindingSet(e))
}

func TestReloaderRestoresEarlierFile(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")
	writeFile(t, a, "[keymaps.global]\n\"ctrl+k\" = \"from-a\"\n")
	writeFile(t, b, "[keymaps.global]\n\"ctrl+k\" = \"from-b\"\n")
	require.NoError(t, r.Load(a))
	require.NoError(t, r.Load(b))
	assert.Equal(t, "from-b", bindingSet(e)["global ctrl+k"])

	require.NoError(t, os.Remove(b))
	r.Handle(Event{Path: b, Op: OpRemove})

	assert.Equal(t, map[string]string{"global ctrl+k": "from-a"}, bindingSet(e))
}

func TestReloaderKeepsManualMapping(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, "[keymaps.global]\n\"ctrl+k\" = \"from-file\"\n")
	require.NoError(t, r.Load(path))

	require.NoError(t, e.MapCommand("ctrl+k", "manual"))

	writeFile(t, path, "[keymaps.global]\n\"ctrl+w\" = \"close\"\n")
	require.NoError(t, r.Load(path))

	assert.Equal(t, map[string]string{
		"global ctrl+k": "manual",
		"global ctrl+w": "close",
	}, bindingSet(e))
}

func TestReloaderLogsBindingErrors(t *testing.T) {
	e := newEngine(t)
	var buf bytes.Buffer
	r := NewReloader(e, logging.New(logging.Config{Output: &buf, Level: slog.LevelWarn}))

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, "[keymaps.global]\n\"ctrl+nosuchkey\" = \"broken\"\n")
	r.Handle(Event{Path: path, Op: OpWrite})

	assert.Contains(t, buf.String(), "keymap loaded with errors")
	assert.Contains(t, buf.String(), "nosuchkey")
}

func TestReloaderFollowsWatcher(t *testing.T) {
	e := newEngine(t)
	r := NewReloader(e, nil)

	path := filepath.Join(t.TempDir(), "keys.toml")
	writeFile(t, path, "[keymaps.global]\n\"ctrl+s\" = \"save\"\n")
	require.NoError(t, r.Load(path))

	w, err := New(WithDebounce(20 * time.Millisecond))
	require.NoError(t, err)
	defer w.Close()
	w.OnChange(r.Handle)
	require.NoError(t, w.Watch(path))

	writeFile(t, path, "[keymaps.global]\n\"ctrl+w\" = \"close\"\n")

	require.Eventually(t, func() bool {
		set := bindingSet(e)
		_, hasOld := set["global ctrl+s"]
		return set["global ctrl+w"] == "close" && !hasOld
	}, 2*time.Second, 10*time.Millisecond)
}

var _ Engine = (*input.Engine)(nil)
