package keymap

import (
	"sort"
	"sync"
)

// HandlerTable maps command tags to handlers.
type HandlerTable struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewHandlerTable creates an empty handler table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{
		handlers: make(map[string]Handler),
	}
}

// Add sets the handler for tag, replacing any previous one.
// A nil handler removes the tag.
func (t *HandlerTable) Add(tag string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h == nil {
		delete(t.handlers, tag)
		return
	}
	t.handlers[tag] = h
}

// AddFunc is Add for a plain function.
func (t *HandlerTable) AddFunc(tag string, fn func(cmd *Command)) {
	if fn == nil {
		t.Add(tag, nil)
		return
	}
	t.Add(tag, HandlerFunc(fn))
}

// Load installs a batch of handlers. With override the table is replaced by
// exactly the given handlers; otherwise they are merged in, overwriting
// existing tags. Nil handlers are skipped.
func (t *HandlerTable) Load(handlers map[string]Handler, override bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if override {
		t.handlers = make(map[string]Handler, len(handlers))
	}
	for tag, h := range handlers {
		if h == nil {
			continue
		}
		t.handlers[tag] = h
	}
}

// Get returns the handler for tag.
func (t *HandlerTable) Get(tag string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[tag]
	return h, ok
}

// Remove deletes the handler for tag.
func (t *HandlerTable) Remove(tag string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, tag)
}

// Tags returns the registered tags, sorted.
func (t *HandlerTable) Tags() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tags := make([]string, 0, len(t.handlers))
	for tag := range t.handlers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered handlers.
func (t *HandlerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers)
}
