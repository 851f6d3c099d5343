package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/logging"
)

// Engine is the part of the shortcut engine a Reloader updates.
type Engine interface {
	LoadBindings(bindings []keymap.Binding) error
	Unmap(keys, context string) (bool, error)
	Canonical(keys string) (chord.Sequence, error)
	Registry() *keymap.Registry
}

// bindingKey identifies a binding by context and canonical keys.
type bindingKey struct {
	context string
	keys    string
}

// Reloader keeps an engine in step with a set of keymap files.
//
// Loading a file maps every binding it contains. Reloading it maps the new
// contents and unmaps the bindings the previous version had and the new one
// lacks. A file that fails to parse leaves the engine as it was. Removing a
// file unmaps everything it contributed.
//
// A dropped binding is only touched while the engine still holds the
// command this file registered for it. When another loaded file defines the
// same keys in the same context, the most recently loaded one is restored
// instead of unmapping.
type Reloader struct {
	mu     sync.Mutex
	engine Engine
	loader *keymap.Loader
	logger *logging.Logger
	loaded map[string]map[bindingKey]keymap.Binding
	gen    map[string]uint64
	seq    uint64
}

// NewReloader creates a reloader for engine.
func NewReloader(engine Engine, logger *logging.Logger) *Reloader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reloader{
		engine: engine,
		loader: keymap.NewLoader(),
		logger: logger.WithComponent("reload"),
		loaded: make(map[string]map[bindingKey]keymap.Binding),
		gen:    make(map[string]uint64),
	}
}

// Load maps the bindings of path, replacing what an earlier load of the
// same path contributed.
func (r *Reloader) Load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	f, err := r.loader.LoadFile(abs)
	if err != nil {
		r.logger.Warn("keymap reload failed", "path", abs, "error", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bindings := f.All()
	next := make(map[bindingKey]keymap.Binding, len(bindings))
	for _, b := range bindings {
		next[r.identify(b)] = b
	}

	removed := r.unmapStale(abs, r.loaded[abs], next)
	err = r.engine.LoadBindings(bindings)
	r.loaded[abs] = next
	r.seq++
	r.gen[abs] = r.seq

	if err != nil {
		r.logger.Warn("keymap loaded with errors", "path", abs, "bindings", len(bindings), "removed", removed, "error", err)
		return fmt.Errorf("loading %s: %w", abs, err)
	}
	r.logger.Info("keymap loaded", "path", abs, "bindings", len(bindings), "removed", removed)
	return nil
}

// Remove unmaps every binding path contributed.
func (r *Reloader) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.unmapStale(abs, r.loaded[abs], nil)
	delete(r.loaded, abs)
	delete(r.gen, abs)
	r.logger.Info("keymap removed", "path", abs, "removed", removed)
}

// Handle applies a watcher event. It can be passed to Watcher.OnChange.
func (r *Reloader) Handle(event Event) {
	if event.Op.Has(OpRemove) || event.Op.Has(OpRename) {
		if _, err := os.Stat(event.Path); errors.Is(err, os.ErrNotExist) {
			r.Remove(event.Path)
			return
		}
	}
	// Load logs its own failures.
	_ = r.Load(event.Path)
}

// Files returns the number of files currently contributing bindings.
func (r *Reloader) Files() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loaded)
}

// unmapStale releases the bindings owner had in prev that are missing from
// next and returns how many were unmapped or handed back to another file.
// Must be called with r.mu held.
func (r *Reloader) unmapStale(owner string, prev, next map[bindingKey]keymap.Binding) int {
	removed := 0
	for id, b := range prev {
		if _, ok := next[id]; ok {
			continue
		}
		if !r.holds(id, b) {
			continue
		}
		if other, ok := r.fallback(owner, id); ok {
			if err := r.engine.LoadBindings([]keymap.Binding{other}); err != nil {
				r.logger.Debug("restore failed", "keys", other.Keys, "context", id.context, "error", err)
				continue
			}
			removed++
			continue
		}
		ok, err := r.engine.Unmap(b.Keys, id.context)
		if err != nil {
			r.logger.Debug("unmap failed", "keys", b.Keys, "context", id.context, "error", err)
			continue
		}
		if ok {
			removed++
		}
	}
	return removed
}

// holds reports whether the engine still maps id to the command b names.
func (r *Reloader) holds(id bindingKey, b keymap.Binding) bool {
	d, ok := r.engine.Registry().Lookup(id.context, chord.Sequence(id.keys))
	if !ok {
		return false
	}
	return d.Kind == keymap.KindNamed && d.Context == id.context && d.Tag == b.Command
}

// fallback finds the most recently loaded file other than owner that
// defines id.
func (r *Reloader) fallback(owner string, id bindingKey) (keymap.Binding, bool) {
	var (
		best    keymap.Binding
		bestGen uint64
		found   bool
	)
	for path, bindings := range r.loaded {
		if path == owner {
			continue
		}
		b, ok := bindings[id]
		if !ok || r.gen[path] < bestGen {
			continue
		}
		best, bestGen, found = b, r.gen[path], true
	}
	return best, found
}

func (r *Reloader) identify(b keymap.Binding) bindingKey {
	context := b.Context
	if context == "" {
		context = keymap.GlobalContext
	}
	keys := b.Keys
	if seq, err := r.engine.Canonical(b.Keys); err == nil {
		keys = string(seq)
	}
	return bindingKey{context: context, keys: keys}
}
