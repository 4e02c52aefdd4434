// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "interview", cfg.DefaultMode)
	assert.Equal(t, 25, cfg.Timer.DefaultMinutes)
	assert.True(t, cfg.Heartbeat.Enabled)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultModel = "llama3.2"
	cfg.DefaultMode = "coach"
	cfg.Timer.DefaultMinutes = 40
	cfg.Cloud.OpenRouterKey = "sk-or-test"
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", loaded.DefaultModel)
	assert.Equal(t, "coach", loaded.DefaultMode)
	assert.Equal(t, 40, loaded.Timer.DefaultMinutes)
	assert.Equal(t, "sk-or-test", loaded.Cloud.OpenRouterKey)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `default_model = "qwen2.5-coder:14b"

[timer]
default_minutes = 15
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder:14b", cfg.DefaultModel)
	assert.Equal(t, 15, cfg.Timer.DefaultMinutes)
	assert.Equal(t, "interview", cfg.DefaultMode)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Local.OllamaURL)
	assert.Equal(t, 200, cfg.Storage.MaxTranscripts)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := `default_mode = "wizard"

[timer]
default_minutes = 999
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_mode")
	assert.Contains(t, err.Error(), "timer.default_minutes")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad mode", func(c *Config) { c.DefaultMode = "socratic" }, "default_mode"},
		{"negative minutes", func(c *Config) { c.Timer.DefaultMinutes = -1 }, "timer.default_minutes"},
		{"bad ollama url", func(c *Config) { c.Local.OllamaURL = "not a url" }, "local.ollama_url"},
		{"azure key without endpoint", func(c *Config) { c.Cloud.AzureKey = "k" }, "cloud.azure_endpoint"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRILLRUN_MODEL", "gpt-4o-mini")
	t.Setenv("DRILLRUN_MODE", "teach")
	t.Setenv("DRILLRUN_TIMER_MINUTES", "45")
	t.Setenv("DRILLRUN_OPENAI_KEY", "sk-env")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "gpt-4o-mini", cfg.DefaultModel)
	assert.Equal(t, "teach", cfg.DefaultMode)
	assert.Equal(t, 45, cfg.Timer.DefaultMinutes)
	assert.Equal(t, "sk-env", cfg.Cloud.OpenAIKey)
}

func TestLoadTightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))
	require.NoError(t, os.Chmod(path, 0644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	cfg.Cloud.AzureDeployments = []string{"gpt-4o"}

	clone := cfg.Clone()
	clone.Cloud.AzureDeployments[0] = "mutated"

	assert.Equal(t, "gpt-4o", cfg.Cloud.AzureDeployments[0])
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	updated := Default()
	updated.DefaultModel = "llama3.2"
	require.NoError(t, SaveTOML(updated, path))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "llama3.2", cfg.DefaultModel)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reloaded")
	}
}

func TestWatcherSkipsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config) {
		reloaded <- cfg
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`default_mode = "wizard"`), 0600))

	select {
	case <-reloaded:
		t.Fatal("invalid config must not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
