package tree

import (
	"context"
	"errors"
	"fmt"
)

// Op is the kind of change a watch observed.
type Op int

const (
	OpCreate Op = iota
	OpChange
	OpDelete
	OpRename
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpChange:
		return "change"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a single change under a watched root. The provider only uses it
// as an invalidation pulse.
type Event struct {
	Op   Op
	Path string
}

// Watcher installs a watch over a whole subtree. fn may be called from any
// goroutine until the returned Watch is closed.
type Watcher interface {
	Watch(root string, fn func(Event)) (Watch, error)
}

// Watch is a live subtree watch.
type Watch interface {
	Close() error
}

// Store persists string values across sessions.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Revealer asks the host to show the tree panel.
type Revealer interface {
	Reveal()
}

// RevealFunc adapts a plain function to Revealer.
type RevealFunc func()

func (f RevealFunc) Reveal() { f() }

// FocusKey is the store key holding the focused root.
const FocusKey = "focus.root"

var (
	ErrNoFocus      = errors.New("no folder is focused")
	ErrEmptyName    = errors.New("name is empty")
	ErrInvalidName  = errors.New("name escapes the target folder")
	ErrNotDirectory = errors.New("not a directory")
	ErrExists       = errors.New("already exists")
)

// ExistsError reports that Create found an entry at the target path.
type ExistsError struct {
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

func (e *ExistsError) Is(target error) bool {
	return target == ErrExists
}
