// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for infinipedia.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.infinipedia/config.toml
//   - ~/.infinipedia/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/infinipedia-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete infinipedia configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API configuration (the generative-text endpoint)
	API APIConfig `toml:"api" json:"api"`

	// Generation behavior
	Generation GenerationConfig `toml:"generation" json:"generation"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// APIConfig contains the chat endpoint configuration.
type APIConfig struct {
	// Key is the bearer token for the chat API.
	Key string `toml:"key" json:"key"`
	// BaseURL is the API base URL (OpenRouter-compatible).
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model identifier used for all generations.
	Model string `toml:"model" json:"model"`
	// Temperature for generations.
	Temperature float64 `toml:"temperature" json:"temperature"`
	// MaxTokens caps generation length (0 = provider default).
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
}

// GenerationConfig controls content-generation behavior.
type GenerationConfig struct {
	// DefaultTopic seeds the tree when no persisted state exists.
	DefaultTopic string `toml:"default_topic" json:"default_topic"`
	// RecentLimit is how many nodes the recents strip shows.
	RecentLimit int `toml:"recent_limit" json:"recent_limit"`
	// RelatedQuestions enables the best-effort follow-up question batch.
	RelatedQuestions bool `toml:"related_questions" json:"related_questions"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowWordCounts displays session word totals in the status line.
	ShowWordCounts bool `toml:"show_word_counts" json:"show_word_counts"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// DataDir is where state documents live (empty = ~/.infinipedia).
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			Key:         "",
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "openrouter/auto",
			Temperature: 0.7,
			MaxTokens:   0,
		},

		Generation: GenerationConfig{
			DefaultTopic:     "Hypertext",
			RecentLimit:      10,
			RelatedQuestions: true,
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowWordCounts: true,
			CompactMode:    false,
		},

		Storage: StorageConfig{
			DataDir: "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the infinipedia configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".infinipedia"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to
// protect the API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	// Return defaults, with any load error for informational purposes.
	return cfg, loadErr
}

// finishLoad applies env overrides, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# infinipedia configuration file")
	fmt.Fprintln(file, "# Generated by infinipedia - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", c.API.BaseURL),
		})
	}
	if c.API.Temperature < 0 || c.API.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "api.temperature",
			Message: fmt.Sprintf("must be in [0, 2], got %g", c.API.Temperature),
		})
	}
	if c.API.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.max_tokens",
			Message: "must not be negative",
		})
	}
	if c.Generation.RecentLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "generation.recent_limit",
			Message: "must not be negative",
		})
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be dark, light, or auto, got %q", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Model == "" {
		c.API.Model = defaults.API.Model
	}
	if c.API.Temperature == 0 {
		c.API.Temperature = defaults.API.Temperature
	}
	if c.Generation.DefaultTopic == "" {
		c.Generation.DefaultTopic = defaults.Generation.DefaultTopic
	}
	if c.Generation.RecentLimit == 0 {
		c.Generation.RecentLimit = defaults.Generation.RecentLimit
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - INFINIPEDIA_API_KEY: overrides api.key
//   - OPENROUTER_API_KEY: fallback for api.key
//   - INFINIPEDIA_BASE_URL: overrides api.base_url
//   - INFINIPEDIA_MODEL: overrides api.model
//   - INFINIPEDIA_DATA_DIR: overrides storage.data_dir
//   - INFINIPEDIA_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("INFINIPEDIA_API_KEY"); key != "" {
		c.API.Key = key
	} else if key := os.Getenv("OPENROUTER_API_KEY"); key != "" && c.API.Key == "" {
		c.API.Key = key
	}

	if url := os.Getenv("INFINIPEDIA_BASE_URL"); url != "" {
		c.API.BaseURL = url
	}
	if model := os.Getenv("INFINIPEDIA_MODEL"); model != "" {
		c.API.Model = model
	}
	if dir := os.Getenv("INFINIPEDIA_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
	if theme := os.Getenv("INFINIPEDIA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Log but don't fail - use defaults.
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
