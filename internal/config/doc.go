// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for backoffice.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - SessionConfig: expiry warning window
//   - AuthConfig: refresh/logout backend, token file, retry and pacing
//   - AuditConfig, LogConfig, UIConfig: local trail, log file, theme
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (BACKOFFICE_*)
//   - --config path, or ~/.backoffice/config.toml, or ~/.backoffice/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	window := cfg.WarningWindow()
package config
