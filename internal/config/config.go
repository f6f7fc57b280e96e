package config

import "strings"

// Themes accepted by the console
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds the lpmsctl settings
type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	Token      string `yaml:"token,omitempty"`
	DevSub     string `yaml:"dev_sub,omitempty"` // sent as X-Debug-Sub when no token is set
	Theme      string `yaml:"theme"`
	LogLevel   string `yaml:"log_level"`
	Debug      bool   `yaml:"debug,omitempty"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingAPIBaseURL
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return ErrInvalidAPIBaseURL
	}

	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return ErrInvalidTheme
	}

	return nil
}

// Authenticated reports whether requests will carry credentials
func (c *Config) Authenticated() bool {
	return c.Token != "" || c.DevSub != ""
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL: "http://localhost:8081",
		Theme:      ThemeDark,
		LogLevel:   "info",
	}
}
