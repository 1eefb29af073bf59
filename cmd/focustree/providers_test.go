package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/hayeah/focustree/internal/assert"
	"github.com/hayeah/focustree/internal/config"
)

func TestProvideWatcher(t *testing.T) {
	assert := assert.New(t)
	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{Watch: config.WatchConfig{Enabled: true}}

	// one-shot commands render once and exit
	assert.Nil(ProvideWatcher(cfg, Args{Focus: &FocusCmd{Path: "."}}, logger))
	assert.Nil(ProvideWatcher(cfg, Args{Show: &ShowCmd{}}, logger))
	assert.Nil(ProvideWatcher(cfg, Args{Preset: &PresetCmd{}}, logger))

	assert.NotNil(ProvideWatcher(cfg, Args{Panel: &PanelCmd{}}, logger))

	cfg.Watch.Enabled = false
	assert.Nil(ProvideWatcher(cfg, Args{Panel: &PanelCmd{}}, logger))
}

func TestProvideStore_TagsMigrationLogs(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := &config.Config{StatePath: filepath.Join(t.TempDir(), "state.db")}

	store, cleanup, err := ProvideStore(cfg, logger)
	assert.NoError(err)
	defer cleanup()

	assert.Equal(cfg.StatePath, store.Path())
	assert.Contains(buf.String(), "_type=Store")
	assert.Contains(buf.String(), "name=create_focus_history")
}
