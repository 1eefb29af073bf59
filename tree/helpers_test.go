package tree

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// memFs lays out a tree under root in an in-memory filesystem. Keys ending
// in "/" are directories.
func memFs(t *testing.T, root string, entries ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	for _, e := range entries {
		path := filepath.Join(root, e)
		if strings.HasSuffix(e, "/") {
			require.NoError(t, fsys.MkdirAll(path, 0o755))
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte("x"), 0o644))
	}
	return fsys
}

func names(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}

type fakeWatch struct {
	w      *fakeWatcher
	root   string
	fn     func(Event)
	closed bool
}

func (fw *fakeWatch) Close() error {
	fw.w.mu.Lock()
	defer fw.w.mu.Unlock()
	fw.closed = true
	return nil
}

// fakeWatcher records every watch it hands out so tests can fire events
// and check disposal.
type fakeWatcher struct {
	mu      sync.Mutex
	watches []*fakeWatch
	err     error
}

func (w *fakeWatcher) Watch(root string, fn func(Event)) (Watch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	fw := &fakeWatch{w: w, root: root, fn: fn}
	w.watches = append(w.watches, fw)
	return fw, nil
}

func (w *fakeWatcher) live() []*fakeWatch {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*fakeWatch
	for _, fw := range w.watches {
		if !fw.closed {
			out = append(out, fw)
		}
	}
	return out
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// counter counts change notifications.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
