// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.API.BaseURL == "" {
		t.Error("default base URL is empty")
	}
	if cfg.API.Model == "" {
		t.Error("default model is empty")
	}
	if cfg.Generation.DefaultTopic == "" {
		t.Error("default topic is empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://nope" }, true},
		{"negative temperature", func(c *Config) { c.API.Temperature = -1 }, true},
		{"huge temperature", func(c *Config) { c.API.Temperature = 3 }, true},
		{"negative max tokens", func(c *Config) { c.API.MaxTokens = -5 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"negative recent limit", func(c *Config) { c.Generation.RecentLimit = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults_FillsMissing(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	if cfg.API.BaseURL == "" || cfg.API.Model == "" || cfg.UI.Theme == "" {
		t.Errorf("SetDefaults left blanks: %+v", cfg)
	}
	if cfg.Generation.DefaultTopic != "Hypertext" {
		t.Errorf("default topic = %q", cfg.Generation.DefaultTopic)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("INFINIPEDIA_API_KEY", "sk-or-env-key")
	t.Setenv("INFINIPEDIA_MODEL", "env/model")
	t.Setenv("INFINIPEDIA_DATA_DIR", "/tmp/envdata")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Key != "sk-or-env-key" {
		t.Errorf("API key override failed: %q", cfg.API.Key)
	}
	if cfg.API.Model != "env/model" {
		t.Errorf("model override failed: %q", cfg.API.Model)
	}
	if cfg.Storage.DataDir != "/tmp/envdata" {
		t.Errorf("data dir override failed: %q", cfg.Storage.DataDir)
	}
}

func TestApplyEnvOverrides_OpenRouterFallback(t *testing.T) {
	t.Setenv("INFINIPEDIA_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-fallback")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.API.Key != "sk-or-fallback" {
		t.Errorf("fallback key not applied: %q", cfg.API.Key)
	}
}

func TestLoadTOML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0.0"

[api]
key = "sk-or-from-file"
model = "anthropic/claude-3.5-haiku"

[generation]
default_topic = "Entropy"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if cfg.API.Key != "sk-or-from-file" {
		t.Errorf("key = %q", cfg.API.Key)
	}
	if cfg.API.Model != "anthropic/claude-3.5-haiku" {
		t.Errorf("model = %q", cfg.API.Model)
	}
	if cfg.Generation.DefaultTopic != "Entropy" {
		t.Errorf("default topic = %q", cfg.Generation.DefaultTopic)
	}
	// Values absent from the file keep their defaults.
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("base URL lost default: %q", cfg.API.BaseURL)
	}
}

func TestLoadTOML_FixesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`version = "1.0.0"`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions not tightened: %o", perm)
	}
}

// Global(), SetGlobal() and readers must be race-free.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}
