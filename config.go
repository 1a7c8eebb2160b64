// FILE: lixenwraith/config/config.go
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/lixenwraith/config/hocon"
)

// Config manages application configuration parsed from HOCON documents,
// registered defaults and command-line overrides.
type Config struct {
	store     *hocon.MapStore // Current merged state, replaced as a whole on every update
	defaults  *hocon.MapStore // Registered defaults, seed of every file load
	overrides []override      // Command-line overrides, replayed after every file load
	resolver  hocon.Resolver  // Resolves names passed to Parse
	options   LoadOptions
	logger    *slog.Logger
	filePath  string   // Root file of the last LoadFile
	files     []string // Files read by the last LoadFile, root first
	mutex     sync.RWMutex
	watcher   *watcher
}

// New creates and initializes a new Config instance with default options.
func New() *Config {
	return NewWithOptions(DefaultLoadOptions())
}

// NewWithOptions creates a new Config instance with the given load options.
func NewWithOptions(opts LoadOptions) *Config {
	return &Config{
		store:    hocon.NewMapStore(),
		defaults: hocon.NewMapStore(),
		options:  opts.withDefaults(),
		logger:   slog.Default(),
	}
}

// SetLogger replaces the logger used for include resolution and hot reload.
func (c *Config) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

// SetResolver sets the resolver used by Parse.
func (c *Config) SetResolver(resolver hocon.Resolver) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.resolver = resolver
}

// Parse resolves name through the configured resolver and merges the document
// into the current state. Includes are resolved by the same resolver.
func (c *Config) Parse(name string) error {
	return c.update(func(r *hocon.Reader) error {
		return r.Read(name)
	})
}

// ParseString merges a document held in memory into the current state.
func (c *Config) ParseString(content string) error {
	return c.update(func(r *hocon.Reader) error {
		return r.ReadString(content)
	})
}

// ParseStream merges a document read from in into the current state.
// UTF-8 and BOM-marked UTF-16 input are accepted.
func (c *Config) ParseStream(in io.Reader) error {
	return c.update(func(r *hocon.Reader) error {
		return r.ReadStream(in)
	})
}

// update parses into a copy of the current store and swaps it in on success,
// so a failed parse leaves the visible state untouched.
func (c *Config) update(read func(*hocon.Reader) error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	next := c.store.Clone()
	reader := hocon.NewReader(next, c.resolver, hocon.WithLogger(c.logger))
	if err := read(reader); err != nil {
		return err
	}
	c.store = next
	return nil
}

// current returns the store visible to readers.
func (c *Config) current() *hocon.MapStore {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.store
}

// Get retrieves the raw value stored at path. Object scopes are returned as
// hocon.Node. The second return value reports whether the path exists.
func (c *Config) Get(path string) (any, bool) {
	return c.current().Get(path)
}

// HasPath reports whether path exists, as an object scope or a value.
func (c *Config) HasPath(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// HasValue reports whether path holds a value rather than an object scope.
func (c *Config) HasValue(path string) bool {
	v, ok := c.Get(path)
	return ok && !hocon.IsNode(v)
}

// Set writes a value at path, creating missing parent scopes. The value lives
// until the next file load rebuilds the state.
func (c *Config) Set(path string, value any) error {
	if err := validatePath(path); err != nil {
		return err
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return fmt.Errorf("cannot set %q: %w", path, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	next := c.store.Clone()
	if err := putValue(next, path, normalized, true); err != nil {
		return err
	}
	c.store = next
	return nil
}

// Paths returns every path under prefix in canonical order. An empty prefix
// returns all paths.
func (c *Config) Paths(prefix string) []string {
	prefix = strings.TrimSuffix(prefix, ".")

	var entries []hocon.Entry
	if prefix == "" {
		entries = c.current().Entries()
	} else {
		entries = c.current().Prefix(prefix)
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// Entries returns a snapshot of all entries in canonical order.
func (c *Config) Entries() []hocon.Entry {
	return c.current().Entries()
}

// FilePath returns the root file of the last successful LoadFile.
func (c *Config) FilePath() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.filePath
}

// Files returns every file read by the last successful LoadFile, root first.
func (c *Config) Files() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return append([]string(nil), c.files...)
}
