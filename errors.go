// FILE: lixenwraith/config/errors.go
package config

import "errors"

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	// Builders treat it as non-fatal: the application runs on defaults.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrPathNotFound is returned by typed getters for an absent path with no default.
	ErrPathNotFound = errors.New("configuration path not found")

	// ErrTypeMismatch is returned when a path holds a value of another type.
	ErrTypeMismatch = errors.New("configuration value type mismatch")

	// ErrInvalidPath is returned for malformed paths and for includes that
	// escape the configuration directory.
	ErrInvalidPath = errors.New("invalid configuration path")

	// ErrCLIParse wraps command-line override failures.
	ErrCLIParse = errors.New("failed to parse command-line arguments")

	// ErrValueSize is returned when a command-line value exceeds MaxValueSize.
	ErrValueSize = errors.New("value exceeds maximum size")

	// ErrFileTooLarge is returned when a configuration file exceeds the
	// configured MaxFileSize.
	ErrFileTooLarge = errors.New("configuration file exceeds maximum size")
)
