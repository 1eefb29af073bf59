package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("EDITOR", "")
}

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)
	isolate(t)
	workspace := t.TempDir()

	cfg, err := Load(workspace)
	require.NoError(t, err)

	assert.Equal(filepath.Join(workspace, ".focustree", "state.db"), cfg.StatePath)
	assert.Equal("info", cfg.Log.Level)
	assert.Equal("text", cfg.Log.Format)
	assert.True(cfg.Watch.Enabled)
	assert.True(cfg.Watch.Gitignore)
	assert.Equal([]string{"node_modules/"}, cfg.Watch.Exclude)
	assert.Equal("vi", cfg.Editor)
	assert.Empty(cfg.Presets)
}

func TestLoad_Layers(t *testing.T) {
	assert := assert.New(t)
	isolate(t)
	workspace := t.TempDir()

	userDir := UserConfigDir()
	require.NoError(t, os.MkdirAll(userDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(`
log:
  level: debug
  format: dev
editor: nano
`), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(workspace, ProjectFile), []byte(`
editor: code --wait
watch:
  gitignore: false
presets:
  - name: api
    path: services/api
  - path: /srv/shared
`), 0644))

	t.Setenv("FOCUSTREE_LOG_LEVEL", "warn")

	cfg, err := Load(workspace)
	require.NoError(t, err)

	assert.Equal("warn", cfg.Log.Level)
	assert.Equal("dev", cfg.Log.Format)
	assert.Equal("code --wait", cfg.Editor)
	assert.False(cfg.Watch.Gitignore)
	assert.True(cfg.Watch.Enabled)
	assert.Equal([]Preset{
		{Name: "api", Path: filepath.Join(workspace, "services", "api")},
		{Name: "shared", Path: "/srv/shared"},
	}, cfg.Presets)
}

func TestLoadFromPath(t *testing.T) {
	assert := assert.New(t)
	isolate(t)
	t.Setenv("EDITOR", "hx")
	workspace := t.TempDir()

	path := filepath.Join(t.TempDir(), "focus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
state_path: state/focus.db
watch:
  enabled: false
  exclude: [dist/, "*.tmp"]
`), 0644))

	cfg, err := LoadFromPath(path, workspace)
	require.NoError(t, err)
	assert.Equal(filepath.Join(workspace, "state", "focus.db"), cfg.StatePath)
	assert.False(cfg.Watch.Enabled)
	assert.Equal([]string{"dist/", "*.tmp"}, cfg.Watch.Exclude)
	assert.Equal("hx", cfg.Editor)

	_, err = LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"), workspace)
	assert.Error(err)
}
