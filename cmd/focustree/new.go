package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hayeah/focustree/tree"
)

// NewEntryCmd defines the arguments shared by new:file and new:folder.
type NewEntryCmd struct {
	Name string `arg:"positional,required" help:"Name of the entry; may contain subfolders"`
	In   string `arg:"--in" help:"Folder to create in, relative to the focused root"`
}

// NewEntryRunner creates a file or folder inside the focused tree.
type NewEntryRunner struct {
	Args NewEntryCmd
	Kind tree.EntryKind
	App  *App
}

func NewNewEntryRunner(args NewEntryCmd, kind tree.EntryKind, app *App) *NewEntryRunner {
	return &NewEntryRunner{Args: args, Kind: kind, App: app}
}

func (r *NewEntryRunner) Run(ctx context.Context) error {
	var parent *tree.Node
	if root, ok := r.App.Provider.Root(); ok && r.Args.In != "" {
		n := tree.EntryNode(filepath.Join(root, r.Args.In))
		parent = &n
	}

	node, err := r.App.Provider.Create(ctx, parent, r.Args.Name, r.Kind)
	var exists *tree.ExistsError
	switch {
	case errors.Is(err, tree.ErrNoFocus):
		fmt.Fprintln(r.App.Out, noFocusMessage)
		return nil
	case errors.As(err, &exists):
		fmt.Fprintf(r.App.Out, "%s already exists.\n", r.relative(exists.Path))
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(r.App.Out, "✅ Created %s %s\n", r.Kind, r.relative(node.Path))
	return nil
}

// relative shortens path against the focused root for display.
func (r *NewEntryRunner) relative(path string) string {
	root, ok := r.App.Provider.Root()
	if !ok {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
