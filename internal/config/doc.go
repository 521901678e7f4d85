// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for infinipedia.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: chat endpoint settings (key, base URL, model)
//   - GenerationConfig: content-generation behavior
//   - UIConfig: theme and layout settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (INFINIPEDIA_*)
//   - ~/.infinipedia/config.toml
//   - ~/.infinipedia/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.API.Model
//	topic := cfg.Generation.DefaultTopic
package config
