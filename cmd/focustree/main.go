package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/hayeah/focustree/tree"
)

// Args defines the command-line arguments with subcommands
type Args struct {
	Workspace string `arg:"-w,--workspace" help:"Workspace root (default: current directory)"`
	Config    string `arg:"-c,--config" help:"Read configuration from this file instead of the user and workspace configs"`

	Focus              *FocusCmd              `arg:"subcommand:focus" help:"Focus the tree on a folder"`
	Clear              *ClearCmd              `arg:"subcommand:clear" help:"Clear the focused folder"`
	Show               *ShowCmd               `arg:"subcommand:show" help:"Print the focused tree"`
	NewFile            *NewEntryCmd           `arg:"subcommand:new:file" help:"Create an empty file in the focused tree"`
	NewFolder          *NewEntryCmd           `arg:"subcommand:new:folder" help:"Create an empty folder in the focused tree"`
	Preset             *PresetCmd             `arg:"subcommand:preset" help:"Focus a preset or recently focused folder"`
	Panel              *PanelCmd              `arg:"subcommand:panel" help:"Browse the focused tree interactively"`
	InstallVSCodeTasks *InstallVSCodeTasksCmd `arg:"subcommand:install:vscode:tasks" help:"Install VS Code tasks for focustree"`
}

// hasSubcommand reports whether any subcommand was given.
func (a Args) hasSubcommand() bool {
	return a.Focus != nil || a.Clear != nil || a.Show != nil || a.NewFile != nil ||
		a.NewFolder != nil || a.Preset != nil || a.Panel != nil || a.InstallVSCodeTasks != nil
}

// Runner encapsulates the state and behavior for the CLI
type Runner struct {
	Args Args
	App  *App
}

// NewRunner creates and initializes a new Runner
func NewRunner(args Args, app *App) *Runner {
	return &Runner{
		Args: args,
		App:  app,
	}
}

// Run restores the persisted focus and dispatches to the subcommand.
func (r *Runner) Run(ctx context.Context) error {
	if r.Args.InstallVSCodeTasks != nil {
		return NewInstallVSCodeTasksRunner(*r.Args.InstallVSCodeTasks, r.App.Workspace, r.App.Out).Run()
	}

	if err := r.App.Provider.Restore(ctx); err != nil {
		return err
	}

	switch {
	case r.Args.Focus != nil:
		return NewFocusRunner(*r.Args.Focus, r.App).Run(ctx)
	case r.Args.Clear != nil:
		return NewClearRunner(r.App).Run(ctx)
	case r.Args.Show != nil:
		return NewShowRunner(*r.Args.Show, r.App).Run(ctx)
	case r.Args.NewFile != nil:
		return NewNewEntryRunner(*r.Args.NewFile, tree.File, r.App).Run(ctx)
	case r.Args.NewFolder != nil:
		return NewNewEntryRunner(*r.Args.NewFolder, tree.Directory, r.App).Run(ctx)
	case r.Args.Preset != nil:
		return NewPresetRunner(*r.Args.Preset, r.App).Run(ctx)
	case r.Args.Panel != nil:
		return NewPanelRunner(r.App).Run(ctx)
	default:
		return fmt.Errorf("no subcommand specified, use 'focus', 'clear', 'show', 'new:file', 'new:folder', 'preset', 'panel' or 'install:vscode:tasks'")
	}
}

// resolveWorkspace returns the absolute workspace root.
func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// resolvePath makes p absolute against the workspace root.
func resolvePath(workspace, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workspace, p)
}

// main is our entrypoint: parse args, assemble the app and run the subcommand
func main() {
	var args Args
	parser := arg.MustParse(&args)

	// If no subcommand is specified, show help
	if !args.hasSubcommand() {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	workspace, err := resolveWorkspace(args.Workspace)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := BuildApp(workspace, args)
	if err != nil {
		log.Fatal(err)
	}

	err = NewRunner(args, app).Run(ctx)
	cleanup()
	if err != nil {
		log.Fatal(err)
	}
}
