// File: lixenwraith/config/io.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lixenwraith/config/hocon"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Format names an output format for Export.
type Format string

const (
	FormatHOCON Format = "hocon"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// ParseFormat maps a format name (case-insensitive, "conf" and "yml" accepted)
// to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "hocon", "conf":
		return FormatHOCON, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported format %q", name)
}

// Save writes the current configuration to path in canonical HOCON form.
// The write is atomic: the file is either fully replaced or left untouched.
func (c *Config) Save(path string) error {
	return c.SaveWithHeader(path, "")
}

// SaveWithHeader is Save with a comment header above the configuration.
func (c *Config) SaveWithHeader(path, header string) error {
	data := hocon.WriteString(c.Entries(), header)
	return atomicWriteFile(path, []byte(data))
}

// Export writes the current configuration to w in the given format. Decimals
// keep their exact text in HOCON and JSON; YAML and TOML carry them as floats.
func (c *Config) Export(w io.Writer, format Format) error {
	entries := c.Entries()

	var data []byte
	switch format {
	case FormatHOCON, "":
		data = []byte(hocon.WriteString(entries, ""))

	case FormatJSON:
		nested := nestEntries(entries, exportValue(func(d decimal.Decimal) any {
			return json.Number(d.String())
		}))
		out, err := json.MarshalIndent(nested, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		data = append(out, '\n')

	case FormatYAML:
		nested := nestEntries(entries, exportValue(floatDecimal))
		out, err := yaml.Marshal(nested)
		if err != nil {
			return fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		data = out

	case FormatTOML:
		nested := nestEntries(entries, exportValue(floatDecimal))
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(nested); err != nil {
			return fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		data = buf.Bytes()

	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	return nil
}

func floatDecimal(d decimal.Decimal) any {
	return d.InexactFloat64()
}

// exportValue converts decimals, including those inside lists, with fn.
func exportValue(fn func(decimal.Decimal) any) func(any) any {
	var convert func(any) any
	convert = func(v any) any {
		switch val := v.(type) {
		case decimal.Decimal:
			return fn(val)
		case []any:
			out := make([]any, len(val))
			for i, item := range val {
				out[i] = convert(item)
			}
			return out
		}
		return v
	}
	return convert
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file in '%s': %w", dir, err)
	}

	tempPath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temp config file '%s': %w", tempPath, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp config file '%s': %w", tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file '%s': %w", tempPath, err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temporary config file '%s': %w", tempPath, err)
	}

	// Atomically replace the original file
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file '%s' to '%s': %w", tempPath, path, err)
	}
	removed = true

	return nil
}
