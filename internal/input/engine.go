package input

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/keychord/internal/dispatcher"
	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/logging"
)

// Engine owns the modifier state, pending buffer and binding tables, and
// turns key events into dispatched commands.
//
// All state changes happen under one lock, either in HandleKeyEvent or in the
// idle timer callback. Handlers run after the lock is released, so they may
// call SetContext, Map and the other registration methods.
type Engine struct {
	mu sync.Mutex

	config Config
	logger *logging.Logger

	normalizer *chord.Normalizer
	modifiers  key.State
	buffer     *chord.Buffer
	context    string

	registry   *keymap.Registry
	handlers   *keymap.HandlerTable
	dispatcher *dispatcher.Dispatcher

	hooks     []Hook
	listeners []func(dispatcher.Result)
	metrics   *Metrics

	closed bool
}

var (
	sharedMu sync.Mutex
	shared   *Engine
)

// Shared returns the process-wide engine, creating it from config on the
// first successful call. Later calls return the same engine and ignore
// config. A failed construction is not remembered.
func Shared(config Config) (*Engine, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}
	e, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	shared = e
	return e, nil
}

// NewEngine creates an independent engine.
// It fails when the combinator is neither "+" nor "-".
func NewEngine(config Config) (*Engine, error) {
	combinator, err := chord.ParseCombinator(config.Combinator)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	config.Combinator = string(combinator)

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	context := config.Context
	if context == "" {
		context = keymap.GlobalContext
	}

	registry := keymap.NewRegistry()
	handlers := keymap.NewHandlerTable()

	e := &Engine{
		config:     config,
		logger:     logger.WithComponent("input"),
		normalizer: chord.NewNormalizer(combinator, config.Table),
		buffer:     chord.NewBuffer(config.Wait, chord.NewScheduler(config.Clock)),
		context:    context,
		registry:   registry,
		handlers:   handlers,
		dispatcher: dispatcher.New(registry, handlers, dispatcher.Config{
			EnableMetrics:    config.EnableMetrics,
			RecoverFromPanic: config.RecoverFromPanic,
			Logger:           logger,
		}),
	}
	if config.EnableMetrics {
		e.metrics = NewMetrics()
	}
	return e, nil
}

// Map normalizes keys and binds them to d.
//
// A malformed descriptor leaves the tables untouched and reports
// keymap.ErrInvalidDescriptor before the keys are looked at. Keys that do
// not normalize report chord.ErrUnrecognizedCombination, also without
// touching the tables.
func (e *Engine) Map(keys string, d keymap.Descriptor) error {
	if err := d.Validate(); err != nil {
		e.logger.Debug("ignoring malformed descriptor", "keys", keys, "error", err)
		return err
	}

	seq, err := e.normalizer.ToCanonical(keys)
	if err != nil {
		return err
	}
	if err := e.registry.Register(seq, d); err != nil {
		return err
	}

	e.logger.Debug("mapped", "keys", seq, "descriptor", d.String())
	return nil
}

// Add is an alias of Map.
func (e *Engine) Add(keys string, d keymap.Descriptor) error {
	return e.Map(keys, d)
}

// MapCommand binds keys to a command tag in the global context.
func (e *Engine) MapCommand(keys, tag string) error {
	return e.Map(keys, keymap.Named(tag))
}

// MapFunc binds keys to an inline handler in the global context.
func (e *Engine) MapFunc(keys string, fn func(cmd *keymap.Command)) error {
	return e.Map(keys, keymap.InlineFunc(fn))
}

// Unmap removes the binding for keys in context. An empty context selects
// the global context. Returns true if a binding was removed.
func (e *Engine) Unmap(keys, context string) (bool, error) {
	seq, err := e.normalizer.ToCanonical(keys)
	if err != nil {
		return false, err
	}
	if context == "" {
		context = keymap.GlobalContext
	}
	return e.registry.Unregister(context, seq), nil
}

// LoadBindings maps a batch of file bindings. Every valid binding is
// registered; the failures are returned together.
func (e *Engine) LoadBindings(bindings []keymap.Binding) error {
	var errs []error
	for _, b := range bindings {
		if err := e.Map(b.Keys, b.Descriptor()); err != nil {
			errs = append(errs, fmt.Errorf("binding %q -> %q: %w", b.Keys, b.Command, err))
		}
	}
	return errors.Join(errs...)
}

// LoadKeymaps maps context -> chord text -> command tag tables.
func (e *Engine) LoadKeymaps(tables map[string]map[string]string) error {
	return e.LoadBindings(keymap.FromTables(tables))
}

// LoadFile loads a TOML, YAML or JSON keymap file and maps its bindings.
func (e *Engine) LoadFile(path string) (*keymap.File, error) {
	f, err := keymap.NewLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := e.LoadBindings(f.All()); err != nil {
		return f, fmt.Errorf("loading %s: %w", path, err)
	}
	e.logger.Info("keymap loaded", "path", path, "bindings", len(f.All()))
	return f, nil
}

// SetContext sets the active context. The empty name selects "global".
// The context is captured per key event, so a change affects only keys
// typed after it.
func (e *Engine) SetContext(name string) {
	if name == "" {
		name = keymap.GlobalContext
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.context = name
}

// Context returns the active context.
func (e *Engine) Context() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.context
}

// AddCommandHandler sets the handler for a command tag.
func (e *Engine) AddCommandHandler(tag string, h keymap.Handler) {
	e.handlers.Add(tag, h)
}

// AddCommandHandlerFunc sets a function handler for a command tag.
func (e *Engine) AddCommandHandlerFunc(tag string, fn func(cmd *keymap.Command)) {
	e.handlers.AddFunc(tag, fn)
}

// LoadCommandHandlers installs a batch of handlers. With override the
// handler table is replaced; otherwise the handlers are merged in.
func (e *Engine) LoadCommandHandlers(handlers map[string]keymap.Handler, override bool) {
	e.handlers.Load(handlers, override)
}

// AddHook registers a key event hook.
func (e *Engine) AddHook(h Hook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

// OnFlush registers fn to receive the result of every flushed burst,
// matched or not. fn runs on the flushing goroutine after dispatch.
func (e *Engine) OnFlush(fn func(dispatcher.Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// HandleKeyEvent processes one key-down event.
//
// Modifier keys mark their modifier as held. Other keys become a chord in the
// pending buffer; a key missing from the key table is dropped with an error
// wrapping chord.ErrUnrecognizedKey. Every event restarts the idle timer,
// including one consumed by a hook.
func (e *Engine) HandleKeyEvent(ev key.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	for _, h := range e.hooks {
		if h.PreKeyEvent(&ev) {
			if e.metrics != nil {
				e.metrics.RecordHookConsumption()
			}
			e.buffer.Restart(e.onIdle)
			return nil
		}
	}

	var err error
	if mod, ok := ev.ModifierKey(); ok {
		e.modifiers.MarkHeld(mod)
	} else {
		var c chord.Chord
		c, err = e.normalizer.FromEvent(ev, &e.modifiers)
		if err != nil {
			e.logger.Debug("dropping key", "error", err)
		} else {
			e.buffer.Append(c, ev, e.context)
		}
	}

	if e.metrics != nil {
		e.metrics.RecordKeyEvent(ev.IsModifierKey())
		if err != nil {
			e.metrics.RecordUnrecognized()
		} else if !ev.IsModifierKey() {
			e.metrics.RecordChord()
		}
	}

	e.buffer.Restart(e.onIdle)
	return err
}

// onIdle runs when the idle timer fires.
func (e *Engine) onIdle(h chord.Handle) {
	e.mu.Lock()
	if e.closed || !e.buffer.Live(h) {
		e.mu.Unlock()
		return
	}
	e.buffer.Release(h)
	p, ok := e.takePending()
	e.mu.Unlock()

	if ok {
		e.dispatch(p)
	}
}

// Flush closes the current burst now instead of waiting for the idle timer.
// It returns false when nothing was pending.
func (e *Engine) Flush() (dispatcher.Result, bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return dispatcher.Result{}, false
	}
	e.buffer.Cancel()
	p, ok := e.takePending()
	e.mu.Unlock()

	if !ok {
		return dispatcher.Result{}, false
	}
	return e.dispatch(p), true
}

// takePending drains the buffer and resets the modifier state.
// Must be called with e.mu held.
func (e *Engine) takePending() (chord.Pending, bool) {
	n := e.buffer.Len()
	p, ok := e.buffer.Drain()
	e.modifiers.Reset()
	if ok && e.metrics != nil {
		e.metrics.RecordFlush(n)
	}
	return p, ok
}

// dispatch runs a flushed burst. Must be called without e.mu held.
func (e *Engine) dispatch(p chord.Pending) dispatcher.Result {
	cmd := keymap.NewCommand(p.Keys, p.Context, p.Event)
	result := e.dispatcher.Dispatch(cmd)

	e.logger.Debug("flushed", "keys", p.Keys, "context", p.Context, "status", result.Status.String())

	e.mu.Lock()
	listeners := make([]func(dispatcher.Result), len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(result)
	}
	return result
}

// PendingKeys returns the chords buffered so far.
func (e *Engine) PendingKeys() chord.Sequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer.Keys()
}

// HeldModifiers returns the modifiers pressed since the last chord.
func (e *Engine) HeldModifiers() key.Modifier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modifiers.Held()
}

// Canonical normalizes chord text with the engine's combinator.
func (e *Engine) Canonical(keys string) (chord.Sequence, error) {
	return e.normalizer.ToCanonical(keys)
}

// Display formats a canonical sequence for people.
func (e *Engine) Display(seq chord.Sequence) string {
	return keymap.Display(seq, e.normalizer.Combinator())
}

// Bindings returns every registered binding.
func (e *Engine) Bindings() []keymap.Entry {
	return e.registry.Bindings()
}

// Registry returns the binding registry.
func (e *Engine) Registry() *keymap.Registry {
	return e.registry
}

// Handlers returns the command handler table.
func (e *Engine) Handlers() *keymap.HandlerTable {
	return e.handlers
}

// Dispatcher returns the dispatcher.
func (e *Engine) Dispatcher() *dispatcher.Dispatcher {
	return e.dispatcher
}

// Combinator returns the configured combinator.
func (e *Engine) Combinator() chord.Combinator {
	return e.normalizer.Combinator()
}

// Wait returns the idle window.
func (e *Engine) Wait() time.Duration {
	return e.buffer.Wait()
}

// Metrics returns the engine metrics (nil if disabled).
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Close stops the idle timer and discards any pending burst. Key events are
// rejected afterwards; registration keeps working.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	e.buffer.Cancel()
	e.buffer.Drain()
	e.modifiers.Reset()
}

// IsClosed returns whether the engine has been closed.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
