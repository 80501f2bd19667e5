// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// ScopeUser stores registry state per user.
	ScopeUser Scope = "user"
	// ScopeMachine stores registry state machine-wide.
	ScopeMachine Scope = "machine"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidScope is returned when a Scope value is not recognized.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFeedURL is returned when a feed endpoint is not an absolute URL.
	ErrInvalidFeedURL = errors.New("invalid feed URL")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Scope selects where registry state lives: per user or machine-wide.
	Scope string

	// ColorScheme controls terminal color output.
	ColorScheme string

	// Config is the tool configuration loaded from config.toml, environment
	// variables, and flags.
	Config struct {
		// DefaultFeed is the feed consulted when a command does not name one.
		// It can be a feed name from feeds.toml or a bare endpoint URL.
		DefaultFeed string `mapstructure:"default_feed" toml:"default_feed"`
		// DefaultScope selects which registry commands operate on by default.
		DefaultScope Scope `mapstructure:"default_scope" toml:"default_scope"`
		// RegistryRoot overrides the platform-default registry root when set.
		RegistryRoot string `mapstructure:"registry_root" toml:"registry_root,omitempty"`
		// UserName overrides the recorded installer identity.
		UserName string   `mapstructure:"user_name" toml:"user_name,omitempty"`
		UI       UIConfig `mapstructure:"ui" toml:"ui"`
	}

	// UIConfig holds display preferences.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme" toml:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose" toml:"verbose"`
	}

	// InvalidConfigError reports a configuration that failed validation.
	InvalidConfigError struct {
		Field  string
		Reason string
	}
)

// Error describes the invalid field and why it was rejected.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Unwrap links the error to ErrInvalidConfig for errors.Is checks.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks that s is a recognized scope.
func (s Scope) Validate() error {
	switch s {
	case ScopeUser, ScopeMachine:
		return nil
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidScope, string(s), ScopeUser, ScopeMachine)
	}
}

// Validate checks that c is a recognized color scheme.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorScheme, string(c))
	}
}

// Validate checks the whole configuration for consistency.
func (c *Config) Validate() error {
	if err := c.DefaultScope.Validate(); err != nil {
		return &InvalidConfigError{Field: "default_scope", Reason: err.Error()}
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		return &InvalidConfigError{Field: "ui.color_scheme", Reason: err.Error()}
	}
	// A default feed that looks like a URL must be a usable absolute one;
	// anything else is treated as a feeds.toml name and resolved later.
	if looksLikeURL(c.DefaultFeed) {
		if err := validateFeedURL(c.DefaultFeed); err != nil {
			return &InvalidConfigError{Field: "default_feed", Reason: err.Error()}
		}
	}
	return nil
}

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultScope: ScopeUser,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// looksLikeURL reports whether s carries a URL scheme prefix.
func looksLikeURL(s string) bool {
	return strings.Contains(s, "://")
}

// validateFeedURL checks that s parses as an absolute http(s) URL.
func validateFeedURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidFeedURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidFeedURL, s)
	}
	return nil
}
