package main

import (
	"context"
	"fmt"
)

// FocusCmd focuses the tree on a folder.
type FocusCmd struct {
	Path  string `arg:"positional,required" help:"Folder to focus, relative to the workspace"`
	Depth int    `arg:"-d,--depth" default:"1" help:"Depth of the printed tree (0 for unlimited)"`
}

// FocusRunner focuses a folder, records it in the history and reveals the
// new tree on stdout.
type FocusRunner struct {
	Args FocusCmd
	App  *App
}

func NewFocusRunner(args FocusCmd, app *App) *FocusRunner {
	return &FocusRunner{Args: args, App: app}
}

func (r *FocusRunner) Run(ctx context.Context) error {
	path := resolvePath(r.App.Workspace, r.Args.Path)

	var revealErr error
	r.App.Reveal.Set(func() {
		revealErr = r.App.Provider.WriteDiagram(ctx, r.App.Out, r.Args.Depth)
	})
	defer r.App.Reveal.Set(nil)

	if err := r.App.Provider.Focus(ctx, path); err != nil {
		return err
	}
	if err := r.App.Store.RecordFocus(ctx, path); err != nil {
		return err
	}
	return revealErr
}

// ClearCmd clears the focused folder.
type ClearCmd struct{}

type ClearRunner struct {
	App *App
}

func NewClearRunner(app *App) *ClearRunner {
	return &ClearRunner{App: app}
}

func (r *ClearRunner) Run(ctx context.Context) error {
	if _, ok := r.App.Provider.Root(); !ok {
		fmt.Fprintln(r.App.Out, noFocusMessage)
		return nil
	}
	if err := r.App.Provider.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.App.Out, "Focus cleared.")
	return nil
}

// ShowCmd prints the focused tree.
type ShowCmd struct {
	Depth int `arg:"-d,--depth" default:"0" help:"Depth of the printed tree (0 for unlimited)"`
}

type ShowRunner struct {
	Args ShowCmd
	App  *App
}

func NewShowRunner(args ShowCmd, app *App) *ShowRunner {
	return &ShowRunner{Args: args, App: app}
}

func (r *ShowRunner) Run(ctx context.Context) error {
	if _, ok := r.App.Provider.Root(); !ok {
		fmt.Fprintln(r.App.Out, noFocusMessage)
		return nil
	}
	return r.App.Provider.WriteDiagram(ctx, r.App.Out, r.Args.Depth)
}

const noFocusMessage = "No folder is focused. Run `focustree focus <path>` first."
