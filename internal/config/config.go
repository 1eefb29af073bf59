// Package config loads focustree settings from the user config, the
// workspace config and FOCUSTREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ProjectFile is the workspace-level config file name.
const ProjectFile = ".focustree.yaml"

// Config holds all configuration for focustree.
type Config struct {
	// StatePath is the SQLite file for persisted state. Empty means
	// <workspace>/.focustree/state.db.
	StatePath string      `mapstructure:"state_path"`
	Log       LogConfig   `mapstructure:"log"`
	Watch     WatchConfig `mapstructure:"watch"`
	Editor    string      `mapstructure:"editor"`
	Presets   []Preset    `mapstructure:"presets"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WatchConfig holds watcher settings.
type WatchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Gitignore bool     `mapstructure:"gitignore"`
	Exclude   []string `mapstructure:"exclude"`
}

// Preset is a named folder the user can focus quickly.
type Preset struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// Load reads configuration for workspace.
// Precedence (highest to lowest):
// 1. Environment variables (FOCUSTREE_LOG_LEVEL, FOCUSTREE_EDITOR, ...)
// 2. Workspace config (<workspace>/.focustree.yaml)
// 3. User config ($XDG_CONFIG_HOME/focustree/config.yaml)
// 4. Built-in defaults
func Load(workspace string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read user config: %w", err)
		}
	}

	projectConfig := filepath.Join(workspace, ProjectFile)
	if _, err := os.Stat(projectConfig); err == nil {
		v.SetConfigFile(projectConfig)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", projectConfig, err)
		}
	}

	return unmarshal(v, workspace)
}

// LoadFromPath loads configuration from a single file, on top of defaults
// and the environment.
func LoadFromPath(path, workspace string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}
	return unmarshal(v, workspace)
}

func unmarshal(v *viper.Viper, workspace string) (*Config, error) {
	v.SetEnvPrefix("FOCUSTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.resolve(workspace)
	return cfg, nil
}

// resolve fills derived defaults and makes paths absolute against workspace.
func (c *Config) resolve(workspace string) {
	if c.StatePath == "" {
		c.StatePath = filepath.Join(workspace, ".focustree", "state.db")
	} else {
		c.StatePath = expandPath(c.StatePath, workspace)
	}
	if c.Editor == "" {
		c.Editor = os.Getenv("EDITOR")
	}
	if c.Editor == "" {
		c.Editor = "vi"
	}
	for i := range c.Presets {
		c.Presets[i].Path = expandPath(c.Presets[i].Path, workspace)
		if c.Presets[i].Name == "" {
			c.Presets[i].Name = filepath.Base(c.Presets[i].Path)
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.gitignore", true)
	v.SetDefault("watch.exclude", []string{"node_modules/"})
	v.SetDefault("editor", "")
}

// UserConfigDir returns the XDG config directory for focustree.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "focustree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "focustree")
	}
	return filepath.Join(home, ".config", "focustree")
}

// expandPath expands ~ and resolves relative paths against base.
func expandPath(path, base string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}
