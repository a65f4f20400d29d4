package linecut

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sokinpui/linecut/cli"
	"github.com/sokinpui/linecut/internal/clipboard"
	"github.com/sokinpui/linecut/internal/dispatch"
	"github.com/sokinpui/linecut/internal/fs"
	"github.com/sokinpui/linecut/internal/host"
	"github.com/sokinpui/linecut/internal/nvim"
	"github.com/sokinpui/linecut/internal/tui"
	"github.com/sokinpui/linecut/internal/ui"
	"github.com/sokinpui/linecut/model"
)

// DetailedError enhances a standard error with a stack trace.
type DetailedError = dispatch.DetailedError

// App orchestrates the entire application logic.
type App struct {
	cfg        *cli.Config
	command    dispatch.Command
	dispatcher *dispatch.Dispatcher
	closers    []func()
}

// New creates a new App instance, connecting to the configured host.
func New(cfg *cli.Config) (*App, error) {
	command, ok := dispatch.Lookup(cfg.Command)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}
	ui.SetVerbose(cfg.Verbose)

	a := &App{cfg: cfg, command: command}
	h, err := a.buildHost()
	if err != nil {
		a.Close()
		return nil, err
	}

	d, err := dispatch.New(h, dispatch.WithCaseSensitive(cfg.CaseSensitive))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.dispatcher = d
	return a, nil
}

// NewWithHost creates an App that runs command against a caller-supplied host.
func NewWithHost(h host.Host, command string, caseSensitive bool) (*App, error) {
	cmd, ok := dispatch.Lookup(command)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", command)
	}
	d, err := dispatch.New(h, dispatch.WithCaseSensitive(caseSensitive))
	if err != nil {
		return nil, err
	}
	return &App{cfg: &cli.Config{Command: command}, command: cmd, dispatcher: d}, nil
}

func (a *App) buildHost() (host.Host, error) {
	cfg := a.cfg
	h := host.Host{Notifier: ui.Terminal{}}

	var manager *nvim.Manager
	if cfg.Backend == cli.BackendNvim {
		addr := cfg.Server
		if addr == "" {
			addr = nvim.ServerAddress()
		}
		if addr == "" && cfg.Prompt == cli.PromptNvim && !cfg.HasPattern {
			return host.Host{}, fmt.Errorf("--prompt=nvim needs a running nvim instance")
		}
		m, err := nvim.New(addr, cfg.File, cfg.Write)
		if err != nil {
			return host.Host{}, err
		}
		a.closers = append(a.closers, m.Close)
		manager = m
		h.Editor = m
		if addr != "" {
			// A user is looking at this instance; tell them there too.
			h.Notifier = host.Notifiers{ui.Terminal{}, m}
		}
	} else {
		e, err := fs.NewFileEditor(cfg.File)
		if err != nil {
			return host.Host{}, err
		}
		ui.Debug("editing %s", e.Path())
		if cfg.Write {
			ui.Warning("--write has no effect with --backend=file; files are always written.")
		}
		h.Editor = e
	}

	switch cfg.Clipboard {
	case cli.ClipboardNvim:
		h.Clipboard = manager.Register(cfg.Register)
	default:
		c, err := clipboard.New()
		if err != nil {
			return host.Host{}, err
		}
		h.Clipboard = c
	}

	switch {
	case cfg.HasPattern:
		h.Prompter = host.StaticPrompter{Request: model.SearchRequest{Pattern: cfg.Pattern, CaseSensitive: cfg.CaseSensitive}}
	case cfg.Prompt == cli.PromptNvim:
		h.Prompter = manager
	default:
		h.Prompter = tui.Prompter{}
	}
	return h, nil
}

// Execute runs the configured command once.
func (a *App) Execute(ctx context.Context) (outcome model.Outcome, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	ui.Debug("running %s", a.command.Name)
	return a.dispatcher.Execute(ctx, a.command)
}

// Close releases the host connection.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
