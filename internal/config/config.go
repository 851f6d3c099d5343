package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dshills/keychord/internal/input"
	"github.com/dshills/keychord/internal/input/chord"
	"github.com/dshills/keychord/internal/logging"
)

// AppName names the configuration directory.
const AppName = "keychord"

// Config is the application configuration.
type Config struct {
	Combinator       string        `koanf:"combinator"`
	Wait             time.Duration `koanf:"wait"`
	Context          string        `koanf:"context"`
	RecoverFromPanic bool          `koanf:"recover_from_panic"`
	Metrics          bool          `koanf:"metrics"`

	Log     LogConfig     `koanf:"log"`
	Keymaps KeymapsConfig `koanf:"keymaps"`
	Plugins PluginsConfig `koanf:"plugins"`

	// Sources lists the files that were read, in order.
	Sources []string `koanf:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// KeymapsConfig lists keymap files to load.
type KeymapsConfig struct {
	Files []string `koanf:"files"`
	Watch bool     `koanf:"watch"`
}

// PluginsConfig lists Lua scripts to run at startup.
type PluginsConfig struct {
	Scripts []string `koanf:"scripts"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Combinator:       string(chord.DefaultCombinator),
		Wait:             chord.DefaultWait,
		Context:          "global",
		RecoverFromPanic: true,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SearchPaths returns the default configuration files, lowest priority first.
func SearchPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, AppName, "config.toml"),
		AppName + ".toml",
	}
}

// envOverrides maps environment variables to configuration keys.
var envOverrides = map[string]string{
	"KEYCHORD_COMBINATOR": "combinator",
	"KEYCHORD_WAIT":       "wait",
	"KEYCHORD_CONTEXT":    "context",
	"KEYCHORD_LOG_LEVEL":  "log.level",
	"KEYCHORD_LOG_FORMAT": "log.format",
	"KEYCHORD_LOG_FILE":   "log.file",
}

// Load reads paths in order, later files overriding earlier ones, applies
// environment overrides and validates the result. Missing files are
// skipped. With no paths it reads SearchPaths.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = SearchPaths()
	}

	k := koanf.New(".")
	var sources []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &ParseError{Path: path, Err: err}
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		sources = append(sources, path)
	}

	for env, key := range envOverrides {
		if v, ok := os.LookupEnv(env); ok {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("applying %s: %w", env, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Sources = sources

	cfg.Log.File = expandPath(cfg.Log.File)
	for i, f := range cfg.Keymaps.Files {
		cfg.Keymaps.Files[i] = expandPath(f)
	}
	for i, s := range cfg.Plugins.Scripts {
		cfg.Plugins.Scripts[i] = expandPath(s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	var errs []error
	if _, err := chord.ParseCombinator(c.Combinator); err != nil {
		errs = append(errs, fmt.Errorf("%w: combinator: %v", ErrInvalid, err))
	}
	if c.Wait <= 0 {
		errs = append(errs, fmt.Errorf("%w: wait must be positive, got %s", ErrInvalid, c.Wait))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %v", ErrInvalid, err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.format: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// EngineConfig returns the engine settings. The logger is left for the
// caller to attach.
func (c *Config) EngineConfig() input.Config {
	cfg := input.DefaultConfig().
		WithCombinator(c.Combinator).
		WithWait(c.Wait)
	cfg.Context = c.Context
	cfg.RecoverFromPanic = c.RecoverFromPanic
	if c.Metrics {
		cfg = cfg.WithMetrics()
	}
	return cfg
}

// LoggingConfig returns the logger settings. Without a log file, output goes
// to stderr.
func (c *Config) LoggingConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, err
	}
	format, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return logging.Config{}, err
	}

	lc := logging.Config{
		FilePath:   c.Log.File,
		Level:      level,
		Format:     format,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
	if lc.FilePath == "" {
		lc.Output = os.Stderr
	}
	return lc, nil
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
