package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/focustree/internal/assert"
	"github.com/hayeah/focustree/internal/config"
	"github.com/hayeah/focustree/internal/state"
	"github.com/hayeah/focustree/tree"
)

var workspaceLayout = map[string]string{
	"project/cmd/main.go": "package main",
	"project/README.md":   "# project",
	"project/docs/":       "",
	"other/notes.txt":     "notes",
	"loose.txt":           "loose",
}

// newTestApp assembles an App over a temp workspace. Watching is disabled;
// statePath lets two apps share one database.
func newTestApp(t *testing.T, workspace, statePath string) (*App, *bytes.Buffer) {
	t.Helper()

	store, err := state.Open(statePath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.DiscardHandler)
	reveal := ProvideReveal()
	provider, cleanup := ProvideProvider(afero.NewOsFs(), nil, store, reveal, logger)
	t.Cleanup(cleanup)

	var out bytes.Buffer
	return &App{
		Workspace: workspace,
		Config:    &config.Config{StatePath: statePath, Editor: "true"},
		Logger:    logger,
		Store:     store,
		Provider:  provider,
		Reveal:    reveal,
		Out:       &out,
	}, &out
}

func setupWorkspace(t *testing.T) (string, *App, *bytes.Buffer) {
	t.Helper()
	ws := t.TempDir()
	assert.New(t).Tree(ws, workspaceLayout)
	app, out := newTestApp(t, ws, filepath.Join(ws, ".focustree", "state.db"))
	return ws, app, out
}

func TestFocusRunner(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	ws, app, out := setupWorkspace(t)

	err := NewFocusRunner(FocusCmd{Path: "project", Depth: 1}, app).Run(ctx)
	assert.NoError(err)

	project := filepath.Join(ws, "project")
	assert.Equal(project+"\n├── cmd/\n├── docs/\n└── README.md\n", out.String())

	root, ok := app.Provider.Root()
	assert.True(ok)
	assert.Equal(project, root)

	persisted, ok, err := app.Store.Get(ctx, tree.FocusKey)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(project, persisted)

	recent, err := app.Store.RecentFoci(ctx, 5)
	assert.NoError(err)
	if assert.Len(recent, 1) {
		assert.Equal(project, recent[0].Path)
	}

	t.Run("a file cannot be focused", func(t *testing.T) {
		err := NewFocusRunner(FocusCmd{Path: "loose.txt"}, app).Run(ctx)
		assert.ErrorIs(err, tree.ErrNotDirectory)

		root, _ := app.Provider.Root()
		assert.Equal(project, root)
	})
}

func TestShowAndClearRunner(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	ws, app, out := setupWorkspace(t)

	assert.NoError(NewShowRunner(ShowCmd{}, app).Run(ctx))
	assert.Equal(noFocusMessage+"\n", out.String())

	assert.NoError(app.Provider.Focus(ctx, filepath.Join(ws, "project")))
	out.Reset()
	assert.NoError(NewShowRunner(ShowCmd{}, app).Run(ctx))
	assert.Contains(out.String(), "├── cmd/\n│   └── main.go\n")

	out.Reset()
	assert.NoError(NewClearRunner(app).Run(ctx))
	assert.Equal("Focus cleared.\n", out.String())
	_, ok := app.Provider.Root()
	assert.False(ok)

	_, ok, err := app.Store.Get(ctx, tree.FocusKey)
	assert.NoError(err)
	assert.False(ok)
}

func TestNewEntryRunner(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	ws, app, out := setupWorkspace(t)
	project := filepath.Join(ws, "project")

	err := NewNewEntryRunner(NewEntryCmd{Name: "a.txt"}, tree.File, app).Run(ctx)
	assert.NoError(err)
	assert.Equal(noFocusMessage+"\n", out.String())
	assert.NoFileExists(filepath.Join(ws, "a.txt"))

	assert.NoError(app.Provider.Focus(ctx, project))

	out.Reset()
	assert.NoError(NewNewEntryRunner(NewEntryCmd{Name: "notes.md"}, tree.File, app).Run(ctx))
	assert.Equal("✅ Created file notes.md\n", out.String())
	assert.FileExists(filepath.Join(project, "notes.md"))

	out.Reset()
	assert.NoError(NewNewEntryRunner(NewEntryCmd{Name: "pkg", In: "cmd"}, tree.Directory, app).Run(ctx))
	assert.Equal("✅ Created folder cmd/pkg\n", out.String())
	assert.DirExists(filepath.Join(project, "cmd", "pkg"))

	out.Reset()
	assert.NoError(NewNewEntryRunner(NewEntryCmd{Name: "README.md"}, tree.File, app).Run(ctx))
	assert.Equal("README.md already exists.\n", out.String())

	err = NewNewEntryRunner(NewEntryCmd{Name: "../escape.txt"}, tree.File, app).Run(ctx)
	assert.ErrorIs(err, tree.ErrInvalidName)
	assert.NoFileExists(filepath.Join(ws, "escape.txt"))
}

func TestPresetRunner(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	ws, app, out := setupWorkspace(t)

	assert.NoError(NewPresetRunner(PresetCmd{Recent: 10}, app).Run(ctx))
	assert.Equal("No presets configured and no folders focused yet.\n", out.String())

	app.Config.Presets = []config.Preset{{Name: "proj", Path: filepath.Join(ws, "project")}}
	assert.NoError(app.Store.RecordFocus(ctx, filepath.Join(ws, "other")))

	out.Reset()
	assert.NoError(NewPresetRunner(PresetCmd{Recent: 10}, app).Run(ctx))
	assert.Contains(out.String(), "proj   "+filepath.Join(ws, "project")+"  (preset)\n")
	assert.Contains(out.String(), "other  "+filepath.Join(ws, "other")+"  (recent)\n")

	out.Reset()
	assert.NoError(NewPresetRunner(PresetCmd{Query: "oth", Recent: 10}, app).Run(ctx))
	root, ok := app.Provider.Root()
	assert.True(ok)
	assert.Equal(filepath.Join(ws, "other"), root)
	assert.Contains(out.String(), "└── notes.txt\n")

	err := NewPresetRunner(PresetCmd{Query: "zzzz", Recent: 10}, app).Run(ctx)
	assert.Error(err)
}

func TestRunner_RestoresFocus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	ws, app, _ := setupWorkspace(t)
	statePath := app.Config.StatePath

	assert.NoError(NewRunner(Args{Focus: &FocusCmd{Path: "other"}}, app).Run(ctx))
	assert.NoError(app.Provider.Close())
	assert.NoError(app.Store.Close())

	next, out := newTestApp(t, ws, statePath)
	assert.NoError(NewRunner(Args{Show: &ShowCmd{}}, next).Run(ctx))
	assert.Equal(filepath.Join(ws, "other")+"\n└── notes.txt\n", out.String())
}

func TestResolvePath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("/ws/a/b", resolvePath("/ws", "a/b"))
	assert.Equal("/abs", resolvePath("/ws", "/abs/"))
	assert.Equal("/ws", resolvePath("/ws", "."))
}
