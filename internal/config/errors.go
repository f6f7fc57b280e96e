package config

import "errors"

var (
	// ErrMissingAPIBaseURL indicates that the API base URL is not configured
	ErrMissingAPIBaseURL = errors.New("api_base_url is required in configuration")

	// ErrInvalidAPIBaseURL indicates that the API base URL is not an http(s) URL
	ErrInvalidAPIBaseURL = errors.New("api_base_url must start with http:// or https://")

	// ErrInvalidTheme indicates an unsupported theme name
	ErrInvalidTheme = errors.New("theme must be dark or light")

	// ErrConfigFileNotFound indicates that the config file was not found
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFormat indicates that the config file has invalid YAML
	ErrInvalidConfigFormat = errors.New("invalid configuration file format")
)
