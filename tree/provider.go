// Package tree implements the focused subtree provider: it lists and orders
// the children of any folder under a focused root, describes entries for a
// host tree widget and announces when the visible tree may be stale.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
)

// Options wires a Provider to its host collaborators. Only Fs is required.
type Options struct {
	Fs       afero.Fs
	Watcher  Watcher
	Store    Store
	Revealer Revealer
	Logger   *slog.Logger
}

// Provider answers tree queries for the focused subtree.
type Provider struct {
	fs       afero.Fs
	watcher  Watcher
	store    Store
	revealer Revealer
	logger   *slog.Logger

	// focusMu orders focus transitions so the persisted key and the focus
	// pointer always agree. It is held across store I/O; mu is not.
	focusMu sync.Mutex

	mu      sync.Mutex
	root    string
	focused bool
	watch   Watch
	gen     atomic.Uint64 // bumped on every focus change; stale watch events are dropped

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewProvider constructs an unfocused Provider.
func NewProvider(opts Options) *Provider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		fs:       opts.Fs,
		watcher:  opts.Watcher,
		store:    opts.Store,
		revealer: opts.Revealer,
		logger:   logger,
		subs:     make(map[int]func()),
	}
}

// Root returns the focused root and whether one is set.
func (p *Provider) Root() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.root, p.focused
}

// RootNode returns the synthetic root node, if a root is focused.
func (p *Provider) RootNode() (Node, bool) {
	root, ok := p.Root()
	if !ok {
		return Node{}, false
	}
	return RootNode(root), true
}

// Children lists the direct entries of parent, or of the focused root when
// parent is nil or the root marker. Without a focused root the listing is
// empty.
func (p *Provider) Children(ctx context.Context, parent *Node) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, ok := p.Root()
	if !ok {
		return nil, nil
	}

	dir := root
	if parent != nil && !parent.IsRoot() {
		dir = filepath.Clean(parent.Path)
		if !within(root, dir) {
			return nil, fmt.Errorf("failed to list %s: %w", dir, ErrInvalidName)
		}
	}

	infos, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sortEntries(infos)

	nodes := make([]Node, 0, len(infos))
	for _, fi := range infos {
		nodes = append(nodes, EntryNode(filepath.Join(dir, fi.Name())))
	}
	return nodes, nil
}

// Focus makes path the focused root. path must be an existing directory.
func (p *Provider) Focus(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	fi, err := p.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to focus %s: %w", path, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("failed to focus %s: %w", path, ErrNotDirectory)
	}

	p.focusMu.Lock()
	if p.store != nil {
		if err := p.store.Set(ctx, FocusKey, path); err != nil {
			p.focusMu.Unlock()
			return fmt.Errorf("failed to persist focus: %w", err)
		}
	}
	p.swap(path, true)
	p.focusMu.Unlock()

	p.logger.Info("focused", "root", path)
	p.Refresh()
	if p.revealer != nil {
		p.revealer.Reveal()
	}
	return nil
}

// Clear drops the focused root and its watch.
func (p *Provider) Clear(ctx context.Context) error {
	p.focusMu.Lock()
	if p.store != nil {
		if err := p.store.Delete(ctx, FocusKey); err != nil {
			p.focusMu.Unlock()
			return fmt.Errorf("failed to persist focus: %w", err)
		}
	}
	p.swap("", false)
	p.focusMu.Unlock()

	p.logger.Info("focus cleared")
	p.Refresh()
	return nil
}

// Restore focuses the root persisted by a previous session. A persisted root
// that is no longer a directory is forgotten.
func (p *Provider) Restore(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	restored, err := p.restore(ctx)
	if err != nil || !restored {
		return err
	}
	p.Refresh()
	return nil
}

func (p *Provider) restore(ctx context.Context) (bool, error) {
	p.focusMu.Lock()
	defer p.focusMu.Unlock()

	path, ok, err := p.store.Get(ctx, FocusKey)
	if err != nil {
		return false, fmt.Errorf("failed to load focus: %w", err)
	}
	if !ok || path == "" {
		return false, nil
	}

	fi, err := p.fs.Stat(path)
	if err != nil || !fi.IsDir() {
		p.logger.Warn("forgetting stale focus", "root", path, "err", err)
		if err := p.store.Delete(ctx, FocusKey); err != nil {
			return false, fmt.Errorf("failed to drop stale focus: %w", err)
		}
		return false, nil
	}

	p.swap(path, true)
	p.logger.Debug("focus restored", "root", path)
	return true, nil
}

// swap replaces the focus pointer and its watch. The previous watch is
// closed before the next one is installed.
func (p *Provider) swap(path string, focused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.gen.Add(1)
	if p.watch != nil {
		if err := p.watch.Close(); err != nil {
			p.logger.Warn("failed to close watch", "root", p.root, "err", err)
		}
		p.watch = nil
	}
	p.root, p.focused = path, focused

	if !focused || p.watcher == nil {
		return
	}
	w, err := p.watcher.Watch(path, func(ev Event) {
		if p.gen.Load() != gen {
			return
		}
		p.logger.Debug("watch event", "op", ev.Op, "path", ev.Path)
		p.Refresh()
	})
	if err != nil {
		// The tree still works; it just won't notice external changes.
		p.logger.Warn("failed to watch focused root", "root", path, "err", err)
		return
	}
	p.watch = w
}

// Watching reports whether a watch is live.
func (p *Provider) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watch != nil
}

// OnDidChange registers fn to be called whenever the tree may be stale.
// The returned func unregisters it.
func (p *Provider) OnDidChange(fn func()) (cancel func()) {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.subMu.Unlock()

	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// Refresh fires a change notification.
func (p *Provider) Refresh() {
	p.subMu.Lock()
	fns := make([]func(), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close disposes the live watch. The focus pointer is left as is.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen.Add(1)
	if p.watch == nil {
		return nil
	}
	err := p.watch.Close()
	p.watch = nil
	return err
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
