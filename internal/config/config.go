// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/backoffice-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete backoffice configuration.
type Config struct {
	Session SessionConfig `toml:"session" json:"session"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`
	Audit   AuditConfig   `toml:"audit" json:"audit"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// SessionConfig controls the expiry warning.
type SessionConfig struct {
	// Seconds before token expiry the countdown starts (5..600)
	WarningWindowSecs int `toml:"warning_window_secs" json:"warning_window_secs"`
}

// AuthConfig controls how sessions are refreshed and ended.
type AuthConfig struct {
	// "rest" for the back-office JSON API, "oauth2" for a standard token endpoint
	Mode string `toml:"mode" json:"mode"`

	BaseURL     string `toml:"base_url" json:"base_url"`
	RefreshPath string `toml:"refresh_path" json:"refresh_path"`
	LogoutPath  string `toml:"logout_path" json:"logout_path"`

	// Empty means ~/.backoffice/session.json
	TokenFile string `toml:"token_file" json:"token_file"`

	RequestTimeoutSecs  int     `toml:"request_timeout_secs" json:"request_timeout_secs"`
	RetryMaxElapsedSecs int     `toml:"retry_max_elapsed_secs" json:"retry_max_elapsed_secs"`
	RequestsPerSecond   float64 `toml:"requests_per_second" json:"requests_per_second"`

	OAuth2 OAuth2Config `toml:"oauth2" json:"oauth2"`
}

// OAuth2Config is used when auth.mode is "oauth2".
type OAuth2Config struct {
	ClientID     string   `toml:"client_id" json:"client_id"`
	ClientSecret string   `toml:"client_secret" json:"client_secret"`
	TokenURL     string   `toml:"token_url" json:"token_url"`
	RevokeURL    string   `toml:"revoke_url" json:"revoke_url"`
	Scopes       []string `toml:"scopes" json:"scopes"`
}

// AuditConfig controls the local session audit trail.
type AuditConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`

	// Empty means ~/.backoffice/audit.db
	Path string `toml:"path" json:"path"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `toml:"level" json:"level"`

	// Empty means ~/.backoffice/backoffice.log
	File string `toml:"file" json:"file"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Theme string `toml:"theme" json:"theme"`
}

// Auth modes.
const (
	AuthModeREST   = "rest"
	AuthModeOAuth2 = "oauth2"
)

// Warning window bounds in seconds.
const (
	MinWarningWindowSecs = 5
	MaxWarningWindowSecs = 600
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			WarningWindowSecs: 30,
		},
		Auth: AuthConfig{
			Mode:                AuthModeREST,
			BaseURL:             "http://127.0.0.1:8080",
			RefreshPath:         "/api/auth/refresh",
			LogoutPath:          "/api/auth/logout",
			RequestTimeoutSecs:  10,
			RetryMaxElapsedSecs: 15,
			RequestsPerSecond:   2,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the backoffice configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".backoffice"), nil
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
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: config may hold an OAuth2 client secret, so 0600 only.
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

// inConfigDir resolves name inside the config directory.
func inConfigDir(name string) string {
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// TokenFile returns the credentials file path.
func (c *Config) TokenFile() string {
	if c.Auth.TokenFile != "" {
		return expandHome(c.Auth.TokenFile)
	}
	return inConfigDir("session.json")
}

// AuditPath returns the audit database path.
func (c *Config) AuditPath() string {
	if c.Audit.Path != "" {
		return expandHome(c.Audit.Path)
	}
	return inConfigDir("audit.db")
}

// LogFile returns the log file path.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	return inConfigDir("backoffice.log")
}

// WarningWindow returns the countdown length.
func (c *Config) WarningWindow() time.Duration {
	return time.Duration(c.Session.WarningWindowSecs) * time.Second
}

// RequestTimeout returns the per-attempt HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Auth.RequestTimeoutSecs) * time.Second
}

// RetryMaxElapsed returns the total retry budget per auth call.
func (c *Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.Auth.RetryMaxElapsedSecs) * time.Second
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default location.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return cfg, cfg.finish()
}

// LoadTOML decodes a TOML file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
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

// LoadFromPath loads configuration from a specific file with full validation.
// Keys missing from the file keep their default values.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.Migrate()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
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
// SECURITY: 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# backoffice configuration file\n")
	buf.WriteString("# Generated by backoffice - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600, 0700); err != nil {
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
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

var validThemes = map[string]bool{"dark": true, "light": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Session
	if w := c.Session.WarningWindowSecs; w < MinWarningWindowSecs || w > MaxWarningWindowSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_window_secs",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinWarningWindowSecs, MaxWarningWindowSecs, w),
		})
	}

	// Auth
	switch c.Auth.Mode {
	case AuthModeREST:
		if err := validateURL(c.Auth.BaseURL); err != nil {
			errs = append(errs, ValidationError{Field: "auth.base_url", Message: err.Error()})
		}
		for field, path := range map[string]string{
			"auth.refresh_path": c.Auth.RefreshPath,
			"auth.logout_path":  c.Auth.LogoutPath,
		} {
			if !strings.HasPrefix(path, "/") {
				errs = append(errs, ValidationError{Field: field, Message: "must start with '/'"})
			}
		}
	case AuthModeOAuth2:
		if c.Auth.OAuth2.ClientID == "" {
			errs = append(errs, ValidationError{Field: "auth.oauth2.client_id", Message: "required in oauth2 mode"})
		}
		if err := validateURL(c.Auth.OAuth2.TokenURL); err != nil {
			errs = append(errs, ValidationError{Field: "auth.oauth2.token_url", Message: err.Error()})
		}
		if c.Auth.OAuth2.RevokeURL != "" {
			if err := validateURL(c.Auth.OAuth2.RevokeURL); err != nil {
				errs = append(errs, ValidationError{Field: "auth.oauth2.revoke_url", Message: err.Error()})
			}
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "auth.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: rest, oauth2", c.Auth.Mode),
		})
	}

	if c.Auth.RequestTimeoutSecs < 1 || c.Auth.RequestTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "auth.request_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Auth.RequestTimeoutSecs),
		})
	}
	if c.Auth.RetryMaxElapsedSecs < 0 {
		errs = append(errs, ValidationError{Field: "auth.retry_max_elapsed_secs", Message: "must not be negative"})
	}
	if c.Auth.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "auth.requests_per_second", Message: "must not be negative"})
	}

	// Log
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	// UI
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// SetDefaults fills zero-value fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Session.WarningWindowSecs == 0 {
		c.Session.WarningWindowSecs = defaults.Session.WarningWindowSecs
	}

	if c.Auth.Mode == "" {
		c.Auth.Mode = defaults.Auth.Mode
	}
	if c.Auth.BaseURL == "" {
		c.Auth.BaseURL = defaults.Auth.BaseURL
	}
	if c.Auth.RefreshPath == "" {
		c.Auth.RefreshPath = defaults.Auth.RefreshPath
	}
	if c.Auth.LogoutPath == "" {
		c.Auth.LogoutPath = defaults.Auth.LogoutPath
	}
	if c.Auth.RequestTimeoutSecs == 0 {
		c.Auth.RequestTimeoutSecs = defaults.Auth.RequestTimeoutSecs
	}
	if c.Auth.RetryMaxElapsedSecs == 0 {
		c.Auth.RetryMaxElapsedSecs = defaults.Auth.RetryMaxElapsedSecs
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Migrate normalizes legacy spellings.
func (c *Config) Migrate() {
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	if c.Auth.Mode == "oauth" {
		c.Auth.Mode = AuthModeOAuth2
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch c.Log.Level {
	case "warning":
		c.Log.Level = "warn"
	case "off", "none":
		c.Log.Level = "disabled"
	}

	c.Auth.BaseURL = strings.TrimRight(c.Auth.BaseURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - BACKOFFICE_WARNING_WINDOW_SECS: overrides session.warning_window_secs
//   - BACKOFFICE_AUTH_MODE: overrides auth.mode
//   - BACKOFFICE_BASE_URL: overrides auth.base_url
//   - BACKOFFICE_TOKEN_FILE: overrides auth.token_file
//   - BACKOFFICE_LOG_LEVEL: overrides log.level
//   - BACKOFFICE_AUDIT: "1"/"true" enables, "0"/"false" disables the audit trail
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BACKOFFICE_WARNING_WINDOW_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.WarningWindowSecs = secs
		}
	}

	if v := os.Getenv("BACKOFFICE_AUTH_MODE"); v != "" {
		c.Auth.Mode = v
	}

	if v := os.Getenv("BACKOFFICE_BASE_URL"); v != "" {
		c.Auth.BaseURL = v
	}

	if v := os.Getenv("BACKOFFICE_TOKEN_FILE"); v != "" {
		c.Auth.TokenFile = v
	}

	if v := os.Getenv("BACKOFFICE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("BACKOFFICE_AUDIT"); v != "" {
		c.Audit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "auth.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "session.warning_window_secs").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, item := range strings.Split(strVal, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"session.warning_window_secs",
		"auth.mode",
		"auth.base_url",
		"auth.refresh_path",
		"auth.logout_path",
		"auth.token_file",
		"auth.request_timeout_secs",
		"auth.retry_max_elapsed_secs",
		"auth.requests_per_second",
		"auth.oauth2.client_id",
		"auth.oauth2.client_secret",
		"auth.oauth2.token_url",
		"auth.oauth2.revoke_url",
		"auth.oauth2.scopes",
		"audit.enabled",
		"audit.path",
		"log.level",
		"log.file",
		"ui.theme",
	}
}
