package input

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Config configures an Engine.
type Config struct {
	// Combinator separates modifiers and key inside a chord: "+" or "-".
	// Empty selects "+". Anything else fails construction.
	Combinator string

	// Wait is the idle window that closes a burst of key events.
	// Default: 500ms
	Wait time.Duration

	// Clock drives the idle timer. Nil selects the real clock.
	Clock clock.WithDelayedExecution

	// Table maps key codes to names. Nil selects key.Default.
	Table *key.Table

	// Context is the initial active context. Empty selects "global".
	Context string

	// RecoverFromPanic recovers panicking handlers instead of crashing.
	RecoverFromPanic bool

	// EnableMetrics enables engine and dispatch statistics.
	EnableMetrics bool

	// Logger receives engine and dispatch logs. Nil disables logging.
	Logger *logging.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Combinator:       string(chord.DefaultCombinator),
		Wait:             chord.DefaultWait,
		RecoverFromPanic: true,
	}
}

// WithCombinator returns a copy of the config with the combinator set.
func (c Config) WithCombinator(combinator string) Config {
	c.Combinator = combinator
	return c
}

// WithWait returns a copy of the config with the idle window set.
func (c Config) WithWait(d time.Duration) Config {
	c.Wait = d
	return c
}

// WithClock returns a copy of the config with the timer clock set.
func (c Config) WithClock(clk clock.WithDelayedExecution) Config {
	c.Clock = clk
	return c
}

// WithLogger returns a copy of the config with the logger set.
func (c Config) WithLogger(l *logging.Logger) Config {
	c.Logger = l
	return c
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}
