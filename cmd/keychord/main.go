// Package main is the entry point for keychord, a tool for trying out and
// inspecting chord-sequence keymaps.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/keychord/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	app     app.Options
	search  string
	context string
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, cmd, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "keychord %s (%s)\n", version, commit)
		return 0
	case "run", "tea":
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintf(stderr, "Error: %s needs an interactive terminal\n", cmd)
			return 1
		}
		opts.app.LogOutput = io.Discard
	case "list", "export", "check":
		opts.app.NoWatch = true
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n", cmd)
		return 2
	}

	application, err := app.New(opts.app)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	switch cmd {
	case "list":
		styled := isTerminal(stdout)
		if err := listBindings(stdout, application.Engine(), opts.search, opts.context, styled); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "export":
		if err := exportBindings(stdout, application.Engine()); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	case "check":
		return check(stdout, application)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd == "tea" {
		err = runTea(ctx, application)
	} else {
		err = runScreen(ctx, application)
	}
	if err != nil && !errors.Is(err, app.ErrQuit) && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, string, error) {
	var (
		opts    options
		configs stringList
		keymaps stringList
		scripts stringList
	)

	fs := flag.NewFlagSet("keychord", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&configs, "config", "Configuration file (repeatable, replaces the default search path)")
	fs.Var(&keymaps, "keymap", "Additional keymap file: .toml, .yaml or .json (repeatable)")
	fs.Var(&scripts, "script", "Additional Lua script (repeatable)")
	fs.StringVar(&opts.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.app.NoWatch, "no-watch", false, "Do not reload keymap files when they change")
	fs.StringVar(&opts.search, "search", "", "Fuzzy filter for list")
	fs.StringVar(&opts.context, "context", "", "Context pattern for list, for example 'git*'")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "keychord - chord-sequence keyboard shortcuts\n\n")
		fmt.Fprintf(stderr, "Usage: keychord [options] [command]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  run       Type key sequences and watch them dispatch (default)\n")
		fmt.Fprintf(stderr, "  tea       Same as run, driven by a bubbletea program\n")
		fmt.Fprintf(stderr, "  list      List bindings\n")
		fmt.Fprintf(stderr, "  export    Print bindings as JSON\n")
		fmt.Fprintf(stderr, "  check     Load configuration, keymaps and scripts and report problems\n")
		fmt.Fprintf(stderr, "  version   Show version information\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, "", err
	}

	opts.app.ConfigPaths = configs
	opts.app.KeymapFiles = keymaps
	opts.app.Scripts = scripts

	cmd := "run"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}
	return opts, cmd, nil
}

func check(w io.Writer, application *app.Application) int {
	cfg := application.Config()
	if len(cfg.Sources) == 0 {
		fmt.Fprintln(w, "configuration: defaults")
	}
	for _, src := range cfg.Sources {
		fmt.Fprintf(w, "configuration: %s\n", src)
	}
	fmt.Fprintf(w, "bindings: %d\n", len(application.Engine().Bindings()))

	errs := application.LoadErrors()
	for _, err := range errs {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	if len(errs) > 0 {
		return 1
	}
	fmt.Fprintln(w, "ok")
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
