package dispatcher

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dshills/keychord/internal/input/keymap"
	"github.com/dshills/keychord/internal/logging"
)

// Dispatcher resolves flushed commands against a registry and handler table.
type Dispatcher struct {
	mu sync.RWMutex

	registry *keymap.Registry
	handlers *keymap.HandlerTable

	config  Config
	logger  *logging.Logger
	metrics *Metrics

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook
}

// New creates a dispatcher over registry and handlers.
func New(registry *keymap.Registry, handlers *keymap.HandlerTable, config Config) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	d := &Dispatcher{
		registry: registry,
		handlers: handlers,
		config:   config,
		logger:   logger.WithComponent("dispatcher"),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// Dispatch resolves cmd.Keys under cmd.Context and runs the bound handler.
// For named bindings cmd.Name is set to the tag before any hook runs.
func (d *Dispatcher) Dispatch(cmd *keymap.Command) Result {
	startTime := time.Now()

	desc, ok := d.registry.Lookup(cmd.Context, cmd.Keys)
	if !ok {
		d.logger.Debug("no binding", "keys", cmd.Keys, "context", cmd.Context)
		if d.metrics != nil {
			d.metrics.RecordUnmatched()
		}
		return Result{Status: StatusUnmatched, Command: cmd}
	}

	result := d.dispatchBound(cmd, desc)

	d.runPostHooks(cmd, result)

	if d.metrics != nil {
		d.metrics.RecordDispatch(metricName(cmd), time.Since(startTime), result.Status)
	}
	return result
}

func (d *Dispatcher) dispatchBound(cmd *keymap.Command, desc keymap.Descriptor) Result {
	h := desc.Handler
	if desc.Kind == keymap.KindNamed {
		cmd.Name = desc.Tag
		var ok bool
		if h, ok = d.handlers.Get(desc.Tag); !ok {
			d.logger.Debug("no handler", "command", desc.Tag, "keys", cmd.Keys)
			return Result{
				Status:  StatusNoHandler,
				Command: cmd,
				Err:     fmt.Errorf("%w: %s", ErrNoHandler, desc.Tag),
			}
		}
	}

	if !d.runPreHooks(cmd) {
		return Result{Status: StatusCancelled, Command: cmd, Err: ErrCancelled}
	}

	if d.config.RecoverFromPanic {
		return d.executeWithRecovery(h, cmd)
	}
	h.Handle(cmd)
	return Result{Status: StatusHandled, Command: cmd}
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h keymap.Handler, cmd *keymap.Command) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			d.logger.Error("handler panic",
				"command", metricName(cmd),
				"keys", cmd.Keys,
				"panic", r,
				"stack", string(stack[:n]))

			result = Result{
				Status:  StatusPanicked,
				Command: cmd,
				Err:     fmt.Errorf("%w: %s: %v", ErrPanic, metricName(cmd), r),
			}

			if d.metrics != nil {
				d.metrics.RecordPanic(metricName(cmd))
			}
		}
	}()

	h.Handle(cmd)
	return Result{Status: StatusHandled, Command: cmd}
}

// metricName names a command for metrics and logs.
func metricName(cmd *keymap.Command) string {
	if cmd.Name != "" {
		return cmd.Name
	}
	return "inline:" + string(cmd.Keys)
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// runPreHooks runs all pre-dispatch hooks.
// Returns false if any hook cancels the command.
func (d *Dispatcher) runPreHooks(cmd *keymap.Command) bool {
	d.mu.RLock()
	hooks := make([]PreDispatchHook, len(d.preHooks))
	copy(hooks, d.preHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(cmd) {
			return false
		}
	}
	return true
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(cmd *keymap.Command, result Result) {
	d.mu.RLock()
	hooks := make([]PostDispatchHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(cmd, result)
	}
}

// Registry returns the binding registry.
func (d *Dispatcher) Registry() *keymap.Registry {
	return d.registry
}

// Handlers returns the handler table.
func (d *Dispatcher) Handlers() *keymap.HandlerTable {
	return d.handlers
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
