package main

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/hayeah/goo"
	"github.com/spf13/afero"

	"github.com/hayeah/focustree/internal/config"
	"github.com/hayeah/focustree/internal/logging"
	"github.com/hayeah/focustree/internal/state"
	"github.com/hayeah/focustree/tree"
	"github.com/hayeah/focustree/watch"
)

// App holds the assembled collaborators shared by every subcommand.
type App struct {
	Workspace string
	Config    *config.Config
	Logger    *slog.Logger
	Store     *state.Store
	Provider  *tree.Provider
	Reveal    *Reveal
	Out       io.Writer
}

// Reveal forwards the provider's reveal requests to whichever surface is
// currently showing the tree.
type Reveal struct {
	mu sync.Mutex
	fn func()
}

// Set installs fn as the reveal target. nil disables revealing.
func (r *Reveal) Set(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn = fn
}

// Reveal implements tree.Revealer.
func (r *Reveal) Reveal() {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func ProvideConfig(workspace string, args Args) (*config.Config, error) {
	if args.Config != "" {
		return config.LoadFromPath(args.Config, workspace)
	}
	return config.Load(workspace)
}

// ProvideLogger logs to stderr so stdout stays clean for command output.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func ProvideStore(cfg *config.Config, logger *slog.Logger) (*state.Store, func(), error) {
	store, err := state.Open(cfg.StatePath, goo.TypedLogger(logger, (*state.Store)(nil)))
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close state store", "path", store.Path(), "err", err)
		}
	}
	return store, cleanup, nil
}

func ProvideFs() afero.Fs {
	return afero.NewOsFs()
}

// ProvideWatcher returns nil when watching is disabled or the command is
// one-shot; the provider then only refreshes on explicit requests. Only the
// panel outlives a single render.
func ProvideWatcher(cfg *config.Config, args Args, logger *slog.Logger) tree.Watcher {
	if !cfg.Watch.Enabled || args.Panel == nil {
		return nil
	}
	return watch.New(watch.Options{
		Gitignore: cfg.Watch.Gitignore,
		Exclude:   cfg.Watch.Exclude,
		Logger:    goo.TypedLogger(logger, (*watch.Watcher)(nil)),
	})
}

func ProvideReveal() *Reveal {
	return &Reveal{}
}

func ProvideProvider(fs afero.Fs, watcher tree.Watcher, store tree.Store, reveal *Reveal, logger *slog.Logger) (*tree.Provider, func()) {
	p := tree.NewProvider(tree.Options{
		Fs:       fs,
		Watcher:  watcher,
		Store:    store,
		Revealer: reveal,
		Logger:   goo.TypedLogger(logger, (*tree.Provider)(nil)),
	})
	cleanup := func() {
		if err := p.Close(); err != nil {
			logger.Warn("failed to close provider", "err", err)
		}
	}
	return p, cleanup
}

func ProvideOut() io.Writer {
	return os.Stdout
}
