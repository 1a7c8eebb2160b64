// File: lixenwraith/config/convenience.go
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lixenwraith/config/hocon"
)

// Quick creates a fully configured Config instance with a single call.
// Defaults come from structDefaults, the file at configFile is loaded when it
// exists, and "--path=value" arguments from os.Args override both.
func Quick(structDefaults any, configFile string) (*Config, error) {
	b := NewBuilder().WithFile(configFile)
	if structDefaults != nil {
		b = b.WithDefaults(structDefaults)
	}
	return b.Build()
}

// MustQuick is like Quick but panics on error. A missing file is not an error.
func MustQuick(structDefaults any, configFile string) *Config {
	return NewBuilder().WithDefaults(structDefaults).WithFile(configFile).MustBuild()
}

// Validate checks that every required path holds a value. Object scopes do not count.
func (c *Config) Validate(required ...string) error {
	var missing []string
	for _, path := range required {
		if !c.HasValue(path) {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration: %s", ErrPathNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted string showing every value with its default and
// the loaded files.
func (c *Config) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "File: %s\n", c.filePath)
	for _, f := range c.files {
		fmt.Fprintf(&b, "  read: %s\n", f)
	}
	for _, o := range c.overrides {
		fmt.Fprintf(&b, "Override: %s = %s\n", o.path, o.value)
	}
	b.WriteString("Current values:\n")

	for _, e := range c.store.Entries() {
		if e.IsNode() {
			continue
		}
		fmt.Fprintf(&b, "  %s:\n", e.Path)
		fmt.Fprintf(&b, "    Current: %s\n", hocon.FormatValue(e.Value))
		if def, ok := c.defaults.Get(e.Path); ok {
			fmt.Fprintf(&b, "    Default: %s\n", hocon.FormatValue(def))
		}
	}

	return b.String()
}

// Dump writes the current configuration in canonical form to w, or to stdout
// when w is nil.
func (c *Config) Dump(w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	return c.Export(w, FormatHOCON)
}

// Clone creates an independent copy of the configuration: current values,
// defaults, overrides and options. The copy does not watch files.
func (c *Config) Clone() *Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return &Config{
		store:     c.store.Clone(),
		defaults:  c.defaults.Clone(),
		overrides: append([]override(nil), c.overrides...),
		resolver:  c.resolver,
		options:   c.options,
		logger:    c.logger,
		filePath:  c.filePath,
		files:     append([]string(nil), c.files...),
	}
}
