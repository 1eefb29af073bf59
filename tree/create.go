package tree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Create makes an empty file or folder called name inside parent, or inside
// the focused root when parent is nil. If parent is a file, its folder is
// used. An existing entry at the target is reported as an *ExistsError and
// left untouched.
//
// The existence check and the create are not atomic; a concurrent create of
// the same name surfaces as a plain I/O error.
func (p *Provider) Create(ctx context.Context, parent *Node, name string, kind EntryKind) (Node, error) {
	if err := ctx.Err(); err != nil {
		return Node{}, err
	}
	root, ok := p.Root()
	if !ok {
		return Node{}, ErrNoFocus
	}
	if strings.TrimSpace(name) == "" {
		return Node{}, ErrEmptyName
	}

	base, err := p.baseFolder(root, parent)
	if err != nil {
		return Node{}, err
	}
	if filepath.IsAbs(name) {
		return Node{}, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	target := filepath.Join(base, name)
	if target == base || !within(base, target) {
		return Node{}, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}

	if _, err := p.fs.Stat(target); err == nil {
		return Node{}, &ExistsError{Path: target}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Node{}, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	switch kind {
	case Directory:
		if err := p.fs.MkdirAll(target, 0o755); err != nil {
			return Node{}, fmt.Errorf("failed to create folder %s: %w", target, err)
		}
	default:
		if err := p.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return Node{}, fmt.Errorf("failed to create folder %s: %w", filepath.Dir(target), err)
		}
		f, err := p.fs.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			return Node{}, fmt.Errorf("failed to create file %s: %w", target, err)
		}
		if err := f.Close(); err != nil {
			return Node{}, fmt.Errorf("failed to create file %s: %w", target, err)
		}
	}

	p.logger.Info("created", "kind", kind, "path", target)
	p.Refresh()
	return EntryNode(target), nil
}

func (p *Provider) baseFolder(root string, parent *Node) (string, error) {
	if parent == nil || parent.IsRoot() {
		return root, nil
	}
	base := filepath.Clean(parent.Path)
	if !within(root, base) {
		return "", fmt.Errorf("%s: %w", base, ErrInvalidName)
	}
	fi, err := p.fs.Stat(base)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", base, err)
	}
	if !fi.IsDir() {
		base = filepath.Dir(base)
	}
	return base, nil
}
