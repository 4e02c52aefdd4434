// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for drillrun.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.drillrun/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete drillrun configuration.
type Config struct {
	// General settings
	DefaultModel string `toml:"default_model"`
	DefaultMode  string `toml:"default_mode"`

	// Timer configuration
	Timer TimerConfig `toml:"timer"`

	// Heartbeat configuration
	Heartbeat HeartbeatConfig `toml:"heartbeat"`

	// Local (Ollama) configuration
	Local LocalConfig `toml:"local"`

	// Cloud provider configuration
	Cloud CloudConfig `toml:"cloud"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// TimerConfig contains countdown defaults.
type TimerConfig struct {
	// DefaultMinutes is the countdown length for a new attempt.
	// 0 means an untimed attempt.
	DefaultMinutes int `toml:"default_minutes"`
}

// HeartbeatConfig controls the idle nudge during timed interviews.
type HeartbeatConfig struct {
	// Enabled turns the idle heartbeat on or off.
	Enabled bool `toml:"enabled"`
}

// LocalConfig contains local Ollama configuration.
type LocalConfig struct {
	// OllamaURL is the URL of the Ollama server
	OllamaURL string `toml:"ollama_url"`
	// AutoStart launches the Ollama server when it is not running
	AutoStart bool `toml:"auto_start"`
}

// CloudConfig contains cloud provider credentials and endpoints.
// Empty keys disable the corresponding provider.
type CloudConfig struct {
	// OpenAIKey is the OpenAI API key
	OpenAIKey string `toml:"openai_key"`
	// OpenRouterKey is the OpenRouter API key
	OpenRouterKey string `toml:"openrouter_key"`
	// AzureEndpoint is the Azure OpenAI resource endpoint
	AzureEndpoint string `toml:"azure_endpoint"`
	// AzureKey is the Azure OpenAI API key
	AzureKey string `toml:"azure_key"`
	// AzureAPIVersion selects the Azure REST API version
	AzureAPIVersion string `toml:"azure_api_version"`
	// AzureDeployments lists the deployment names to expose as models
	AzureDeployments []string `toml:"azure_deployments"`
}

// StorageConfig contains persistence paths.
type StorageConfig struct {
	// DatabasePath is the SQLite database location (empty = default)
	DatabasePath string `toml:"database_path"`
	// TranscriptDir is the transcript store directory (empty = default)
	TranscriptDir string `toml:"transcript_dir"`
	// MaxTranscripts caps how many transcripts are retained
	MaxTranscripts int `toml:"max_transcripts"`
	// ExportDir is where transcript exports are written (empty = default)
	ExportDir string `toml:"export_dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// ShowStats displays token and timing stats under responses
	ShowStats bool `toml:"show_stats"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DefaultModel: "",
		DefaultMode:  "interview",

		Timer: TimerConfig{
			DefaultMinutes: 25,
		},

		Heartbeat: HeartbeatConfig{
			Enabled: true,
		},

		Local: LocalConfig{
			OllamaURL: "http://127.0.0.1:11434",
			AutoStart: true,
		},

		Cloud: CloudConfig{
			AzureAPIVersion: "2024-06-01",
		},

		Storage: StorageConfig{
			MaxTranscripts: 200,
		},

		UI: UIConfig{
			Theme:     "dark",
			ShowStats: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the drillrun configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".drillrun"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file may hold API keys, so anything looser than 0600 is tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all filesystems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file: %w", err)
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults. A file that sets
// a field to the zero value on purpose keeps it only where zero is invalid.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.DefaultMode == "" {
		cfg.DefaultMode = defaults.DefaultMode
	}
	if cfg.Local.OllamaURL == "" {
		cfg.Local.OllamaURL = defaults.Local.OllamaURL
	}
	if cfg.Cloud.AzureAPIVersion == "" {
		cfg.Cloud.AzureAPIVersion = defaults.Cloud.AzureAPIVersion
	}
	if cfg.Storage.MaxTranscripts <= 0 {
		cfg.Storage.MaxTranscripts = defaults.Storage.MaxTranscripts
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# drillrun configuration file")
	fmt.Fprintln(file, "# Generated by drillrun - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var validModes = map[string]bool{
	"interview": true,
	"coach":     true,
	"teach":     true,
}

var validThemes = map[string]bool{
	"dark":  true,
	"light": true,
	"auto":  true,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !validModes[c.DefaultMode] {
		errs = append(errs, ValidationError{
			Field:   "default_mode",
			Message: fmt.Sprintf("must be interview, coach, or teach (got %q)", c.DefaultMode),
		})
	}

	if c.Timer.DefaultMinutes < 0 || c.Timer.DefaultMinutes > 180 {
		errs = append(errs, ValidationError{
			Field:   "timer.default_minutes",
			Message: fmt.Sprintf("must be 0-180 (got %d)", c.Timer.DefaultMinutes),
		})
	}

	if u, err := url.Parse(c.Local.OllamaURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "local.ollama_url",
			Message: fmt.Sprintf("must be a valid URL (got %q)", c.Local.OllamaURL),
		})
	}

	if c.Cloud.AzureKey != "" && c.Cloud.AzureEndpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "cloud.azure_endpoint",
			Message: "required when cloud.azure_key is set",
		})
	}

	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be dark, light, or auto (got %q)", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - DRILLRUN_MODEL: overrides default_model
//   - DRILLRUN_MODE: overrides default_mode
//   - DRILLRUN_TIMER_MINUTES: overrides timer.default_minutes
//   - DRILLRUN_OLLAMA_URL: overrides local.ollama_url
//   - DRILLRUN_OPENAI_KEY: overrides cloud.openai_key
//   - DRILLRUN_OPENROUTER_KEY: overrides cloud.openrouter_key
//   - DRILLRUN_AZURE_ENDPOINT: overrides cloud.azure_endpoint
//   - DRILLRUN_AZURE_KEY: overrides cloud.azure_key
//   - DRILLRUN_DB_PATH: overrides storage.database_path
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("DRILLRUN_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if mode := os.Getenv("DRILLRUN_MODE"); mode != "" {
		c.DefaultMode = mode
	}
	if minutes := os.Getenv("DRILLRUN_TIMER_MINUTES"); minutes != "" {
		var n int
		if _, err := fmt.Sscanf(minutes, "%d", &n); err == nil {
			c.Timer.DefaultMinutes = n
		}
	}
	if ollamaURL := os.Getenv("DRILLRUN_OLLAMA_URL"); ollamaURL != "" {
		c.Local.OllamaURL = ollamaURL
	}
	if key := os.Getenv("DRILLRUN_OPENAI_KEY"); key != "" {
		c.Cloud.OpenAIKey = key
	}
	if key := os.Getenv("DRILLRUN_OPENROUTER_KEY"); key != "" {
		c.Cloud.OpenRouterKey = key
	}
	if endpoint := os.Getenv("DRILLRUN_AZURE_ENDPOINT"); endpoint != "" {
		c.Cloud.AzureEndpoint = endpoint
	}
	if key := os.Getenv("DRILLRUN_AZURE_KEY"); key != "" {
		c.Cloud.AzureKey = key
	}
	if dbPath := os.Getenv("DRILLRUN_DB_PATH"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Cloud.AzureDeployments = append([]string(nil), c.Cloud.AzureDeployments...)
	return &clone
}
