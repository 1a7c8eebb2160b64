// File: lixenwraith/config/builder.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lixenwraith/config/hocon"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	opts       LoadOptions
	defaults   any
	prefix     string
	file       string
	fileFlag   string // Discovery flag consumed from args, never treated as an override
	args       []string
	resolver   hocon.Resolver
	sources    []string
	logger     *slog.Logger
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		opts:       DefaultLoadOptions(),
		args:       os.Args[1:],
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithPrefix sets the prefix for struct registration
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithResolver sets the resolver used for named sources
func (b *Builder) WithResolver(resolver hocon.Resolver) *Builder {
	b.resolver = resolver
	return b
}

// WithSource adds a named document, resolved through the resolver and merged
// after the file. Sources are applied in the order they are added.
func (b *Builder) WithSource(name string) *Builder {
	if name == "" {
		b.err = errors.Join(b.err, fmt.Errorf("%w: empty source name", ErrInvalidPath))
		return b
	}
	b.sources = append(b.sources, name)
	return b
}

// WithSecurityOptions sets the file security limits
func (b *Builder) WithSecurityOptions(opts SecurityOptions) *Builder {
	b.opts.Security = opts
	return b
}

// WithStrictIncludes makes a missing include a load error
func (b *Builder) WithStrictIncludes(strict bool) *Builder {
	b.opts.StrictIncludes = strict
	return b
}

// WithTagName sets the struct tag used for registration and scanning
func (b *Builder) WithTagName(tagName string) *Builder {
	switch tagName {
	case "hocon", "json", "yaml", "toml":
		b.opts.TagName = tagName
	default:
		b.err = errors.Join(b.err, fmt.Errorf("unsupported tag name %q, must be one of: hocon, json, yaml, toml", tagName))
	}
	return b
}

// WithLogger sets the logger for include resolution and hot reload
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config instance with all specified options.
// A missing configuration file is not fatal: the Config is returned together
// with ErrConfigNotFound and carries defaults and overrides.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	cfg := NewWithOptions(b.opts)
	if b.logger != nil {
		cfg.SetLogger(b.logger)
	}
	cfg.SetResolver(b.resolver)

	// Register defaults if provided
	if b.defaults != nil {
		if err := cfg.RegisterStruct(b.prefix, b.defaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	var loadErr error
	if b.file != "" {
		if err := cfg.LoadFile(b.file); err != nil {
			if !errors.Is(err, ErrConfigNotFound) {
				return nil, err
			}
			loadErr = err
		}
	}

	if len(b.sources) > 0 && b.resolver == nil {
		return nil, fmt.Errorf("named sources require a resolver")
	}
	for _, name := range b.sources {
		if err := cfg.Parse(name); err != nil {
			return nil, fmt.Errorf("failed to parse source %q: %w", name, err)
		}
	}

	if args := b.overrideArgs(); len(args) > 0 {
		if err := cfg.LoadCLI(args); err != nil {
			return nil, err
		}
	}

	// Run validators
	for _, validator := range b.validators {
		if err := validator(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	// ErrConfigNotFound or nil
	return cfg, loadErr
}

// overrideArgs returns args without the file discovery flag and its value.
func (b *Builder) overrideArgs() []string {
	if b.fileFlag == "" {
		return b.args
	}
	result := make([]string, 0, len(b.args))
	for i := 0; i < len(b.args); i++ {
		arg := b.args[i]
		if arg == b.fileFlag {
			i++
			continue
		}
		if strings.HasPrefix(arg, b.fileFlag+"=") {
			continue
		}
		result = append(result, arg)
	}
	return result
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		// Ignore ErrConfigNotFound as it is not a fatal error for MustBuild.
		// The application can proceed with defaults and overrides.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return cfg
}

// BuildAndScan builds and unmarshals the final configuration into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	cfg, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return err
	}

	// The prefix used during registration is the base path for scanning.
	if err := cfg.Scan(target, b.prefix); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}

	// ErrConfigNotFound or nil
	return err
}
