// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BACKOFFICE_WARNING_WINDOW_SECS",
		"BACKOFFICE_AUTH_MODE",
		"BACKOFFICE_BASE_URL",
		"BACKOFFICE_TOKEN_FILE",
		"BACKOFFICE_LOG_LEVEL",
		"BACKOFFICE_AUDIT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 30*time.Second, cfg.WarningWindow())
	require.Equal(t, 10*time.Second, cfg.RequestTimeout())
	require.Equal(t, 15*time.Second, cfg.RetryMaxElapsed())
	require.True(t, cfg.Audit.Enabled)
}

func TestConfig_ResolvedPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := Default()
	require.Equal(t, filepath.Join(home, ".backoffice", "session.json"), cfg.TokenFile())
	require.Equal(t, filepath.Join(home, ".backoffice", "audit.db"), cfg.AuditPath())
	require.Equal(t, filepath.Join(home, ".backoffice", "backoffice.log"), cfg.LogFile())

	cfg.Auth.TokenFile = "~/tokens/me.json"
	require.Equal(t, filepath.Join(home, "tokens", "me.json"), cfg.TokenFile())

	cfg.Audit.Path = "/var/lib/backoffice/audit.db"
	require.Equal(t, "/var/lib/backoffice/audit.db", cfg.AuditPath())
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoadFromPath_TOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", `
[session]
warning_window_secs = 45

[auth]
mode = "OAuth2"

[auth.oauth2]
client_id = "backoffice"
token_url = "https://idp.example.com/oauth/token"
scopes = ["openid", "offline_access"]

[log]
level = "WARNING"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	require.Equal(t, 45, cfg.Session.WarningWindowSecs)
	require.Equal(t, AuthModeOAuth2, cfg.Auth.Mode)
	require.Equal(t, []string{"openid", "offline_access"}, cfg.Auth.OAuth2.Scopes)
	require.Equal(t, "warn", cfg.Log.Level)
	// Untouched keys keep defaults
	require.Equal(t, "/api/auth/refresh", cfg.Auth.RefreshPath)
	require.Equal(t, "dark", cfg.UI.Theme)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "permissions tightened on load")
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{"session":{"warning_window_secs":60},"audit":{"enabled":false}}`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 60, cfg.Session.WarningWindowSecs)
	require.False(t, cfg.Audit.Enabled)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", "[session]\nwarning_window = 30\n")

	_, err := LoadFromPath(path)
	require.ErrorContains(t, err, "unknown config keys: session.warning_window")
}

func TestLoadFromPath_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", "[session]\nwarning_window_secs = 2\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	require.Equal(t, "session.warning_window_secs", verrs[0].Field)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().Session, cfg.Session)
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Session.WarningWindowSecs = 90
	cfg.Auth.BaseURL = "https://admin.example.com"
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"window too small", func(c *Config) { c.Session.WarningWindowSecs = 4 }, "session.warning_window_secs"},
		{"window too large", func(c *Config) { c.Session.WarningWindowSecs = 601 }, "session.warning_window_secs"},
		{"bad mode", func(c *Config) { c.Auth.Mode = "saml" }, "auth.mode"},
		{"bad base url", func(c *Config) { c.Auth.BaseURL = "ftp://x" }, "auth.base_url"},
		{"relative refresh path", func(c *Config) { c.Auth.RefreshPath = "refresh" }, "auth.refresh_path"},
		{"oauth2 without client", func(c *Config) {
			c.Auth.Mode = AuthModeOAuth2
			c.Auth.OAuth2.TokenURL = "https://idp/token"
		}, "auth.oauth2.client_id"},
		{"oauth2 without token url", func(c *Config) {
			c.Auth.Mode = AuthModeOAuth2
			c.Auth.OAuth2.ClientID = "x"
		}, "auth.oauth2.token_url"},
		{"timeout zero", func(c *Config) { c.Auth.RequestTimeoutSecs = 0 }, "auth.request_timeout_secs"},
		{"negative rate", func(c *Config) { c.Auth.RequestsPerSecond = -1 }, "auth.requests_per_second"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			require.Contains(t, fields, tt.field)
		})
	}
}

func TestValidate_WindowBoundsInclusive(t *testing.T) {
	for _, secs := range []int{MinWarningWindowSecs, MaxWarningWindowSecs} {
		cfg := Default()
		cfg.Session.WarningWindowSecs = secs
		require.NoError(t, cfg.Validate())
	}
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKOFFICE_WARNING_WINDOW_SECS", "120")
	t.Setenv("BACKOFFICE_BASE_URL", "https://admin.example.com/")
	t.Setenv("BACKOFFICE_TOKEN_FILE", "/tmp/tok.json")
	t.Setenv("BACKOFFICE_LOG_LEVEL", "debug")
	t.Setenv("BACKOFFICE_AUDIT", "0")

	cfg := Default()
	require.NoError(t, cfg.finish())

	require.Equal(t, 120, cfg.Session.WarningWindowSecs)
	require.Equal(t, "https://admin.example.com", cfg.Auth.BaseURL)
	require.Equal(t, "/tmp/tok.json", cfg.TokenFile())
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Audit.Enabled)
}

func TestApplyEnvOverrides_IgnoresNonNumericWindow(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKOFFICE_WARNING_WINDOW_SECS", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	require.Equal(t, 30, cfg.Session.WarningWindowSecs)
}

// =============================================================================
// DOT NOTATION
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("session.warning_window_secs", "75"))
	require.NoError(t, cfg.Set("auth.oauth2.client_id", "ops"))
	require.NoError(t, cfg.Set("auth.oauth2.scopes", "openid, profile"))
	require.NoError(t, cfg.Set("audit.enabled", "false"))
	require.NoError(t, cfg.Set("auth.requests_per_second", "0.5"))

	v, err := cfg.Get("session.warning_window_secs")
	require.NoError(t, err)
	require.Equal(t, 75, v)
	require.Equal(t, "ops", cfg.Auth.OAuth2.ClientID)
	require.Equal(t, []string{"openid", "profile"}, cfg.Auth.OAuth2.Scopes)
	require.False(t, cfg.Audit.Enabled)
	require.Equal(t, 0.5, cfg.Auth.RequestsPerSecond)

	_, err = cfg.Get("session.nope")
	require.ErrorContains(t, err, "unknown field")
	require.Error(t, cfg.Set("session.warning_window_secs", "abc"))
	require.Error(t, cfg.Set("session.warning_window_secs.x", "1"))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		require.NoError(t, err, key)
	}
}
