// Package watch watches a whole directory subtree with fsnotify.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/hayeah/focustree/ignore"
	"github.com/hayeah/focustree/tree"
)

// Options controls which directories a watch covers.
type Options struct {
	// Gitignore skips directories ignored by the root's .gitignore files.
	Gitignore bool
	// Exclude holds extra gitignore-style patterns for skipped directories.
	Exclude []string
	Logger  *slog.Logger
}

// Watcher installs recursive fsnotify watches. It implements tree.Watcher.
type Watcher struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Watcher.
func New(opts Options) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{opts: opts, logger: logger}
}

// Watch starts watching every non-ignored directory under root. fn is
// called from the watch goroutine for each create, change, delete or rename.
func (w *Watcher) Watch(root string, fn func(tree.Event)) (tree.Watch, error) {
	ig, err := ignore.NewIgnore(root, w.opts.Gitignore, w.opts.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	s := &subtree{
		root:   root,
		ig:     ig,
		fw:     fw,
		fn:     fn,
		logger: w.logger.With("root", root),
		done:   make(chan struct{}),
	}
	if err := ig.WalkDirs(root, s.add); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", root, err)
	}

	go s.loop()
	return s, nil
}

// subtree is one live recursive watch.
type subtree struct {
	root   string
	ig     *ignore.Ignore
	fw     *fsnotify.Watcher
	fn     func(tree.Event)
	logger *slog.Logger

	done     chan struct{}
	once     sync.Once
	closeErr error

	mu    sync.Mutex
	count int
}

func (s *subtree) add(dir string) error {
	if err := s.fw.Add(dir); err != nil {
		return err
	}
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	return nil
}

// dirs reports how many directories have been added to the watch.
func (s *subtree) dirs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *subtree) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.fw.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case err, ok := <-s.fw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watch error", "err", err)
		}
	}
}

func (s *subtree) handle(ev fsnotify.Event) {
	op, ok := translate(ev.Op)
	if !ok {
		return
	}

	// fsnotify is not recursive; pick up directories created under the root.
	if op == tree.OpCreate {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := s.ig.WalkDirs(ev.Name, s.add); err != nil {
				s.logger.Warn("failed to watch new directory", "path", ev.Name, "err", err)
			}
		}
	}

	select {
	case <-s.done:
		return
	default:
	}
	s.fn(tree.Event{Op: op, Path: ev.Name})
}

// Close stops the watch. It is safe to call more than once.
func (s *subtree) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.closeErr = s.fw.Close()
	})
	return s.closeErr
}

func translate(op fsnotify.Op) (tree.Op, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return tree.OpCreate, true
	case op.Has(fsnotify.Remove):
		return tree.OpDelete, true
	case op.Has(fsnotify.Rename):
		return tree.OpRename, true
	case op.Has(fsnotify.Write):
		return tree.OpChange, true
	default:
		// chmod only
		return 0, false
	}
}
