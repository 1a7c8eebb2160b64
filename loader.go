// FILE: lixenwraith/config/loader.go
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/lixenwraith/config/hocon"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// DefaultMaxFileSize caps every configuration file read from disk
	DefaultMaxFileSize = 10 << 20
	// MaxValueSize caps a single command-line value
	MaxValueSize = 1 << 20
)

// SecurityOptions restricts which files a load may read
type SecurityOptions struct {
	// PreventPathTraversal rejects includes that resolve outside the directory
	// of the root configuration file
	PreventPathTraversal bool

	// MaxFileSize limits each file read, 0 disables the check
	MaxFileSize int64
}

// DefaultSecurityOptions returns the standard security options
func DefaultSecurityOptions() SecurityOptions {
	return SecurityOptions{
		PreventPathTraversal: true,
		MaxFileSize:          DefaultMaxFileSize,
	}
}

// LoadOptions configures how configuration files are loaded
type LoadOptions struct {
	// Extensions are probed, in order, for include names without an extension
	// Default: [".conf", ".hocon"]
	Extensions []string

	// StrictIncludes turns a missing include into an error instead of empty text
	StrictIncludes bool

	// TagName is the struct tag used by RegisterStruct and Scan
	// Default: "hocon"
	TagName string

	// Security limits applied to the root file and every include
	Security SecurityOptions
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Extensions: []string{".conf", ".hocon"},
		TagName:    "hocon",
		Security:   DefaultSecurityOptions(),
	}
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Extensions == nil {
		o.Extensions = []string{".conf", ".hocon"}
	}
	if o.TagName == "" {
		o.TagName = "hocon"
	}
	return o
}

// FileResolver resolves include names to files relative to a base directory.
// Names without an extension are probed with each configured extension.
type FileResolver struct {
	baseDir string
	opts    LoadOptions
	logger  *slog.Logger
	files   []string
}

// NewFileResolver creates a resolver rooted at baseDir. A nil logger discards output.
func NewFileResolver(baseDir string, opts LoadOptions, logger *slog.Logger) *FileResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &FileResolver{
		baseDir: baseDir,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

// Resolve returns the text of the file named by name. A file that does not
// exist resolves to empty text unless StrictIncludes is set.
func (r *FileResolver) Resolve(name string) (string, error) {
	candidate := name
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(r.baseDir, candidate)
	}
	candidate = filepath.Clean(candidate)

	if r.opts.Security.PreventPathTraversal {
		rel, err := filepath.Rel(r.baseDir, candidate)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %q resolves outside %s", ErrInvalidPath, name, r.baseDir)
		}
	}

	path, info, found := r.probe(candidate)
	if !found {
		if r.opts.StrictIncludes {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		r.logger.Warn("config include not found", "name", name, "dir", r.baseDir)
		return "", nil
	}

	if limit := r.opts.Security.MaxFileSize; limit > 0 && info.Size() > limit {
		return "", fmt.Errorf("%w: '%s' is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), limit)
	}

	content, err := readConfigFile(path, r.opts.Security.MaxFileSize)
	if err != nil {
		return "", err
	}
	r.files = append(r.files, path)
	return content, nil
}

// Files returns the files resolved so far, in resolution order.
func (r *FileResolver) Files() []string {
	return append([]string(nil), r.files...)
}

// probe finds the first regular file among candidate and, when it has no
// extension, candidate with each configured extension appended.
func (r *FileResolver) probe(candidate string) (string, os.FileInfo, bool) {
	paths := []string{candidate}
	if filepath.Ext(candidate) == "" {
		for _, ext := range r.opts.Extensions {
			paths = append(paths, candidate+ext)
		}
	}

	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, info, true
		}
	}
	return "", nil, false
}

// readConfigFile reads a file through a size limit, decoding a UTF-8 or
// UTF-16 byte order mark.
func readConfigFile(path string, limit int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if limit > 0 {
		reader = io.LimitReader(file, limit)
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(reader, decoder))
	if err != nil {
		return "", fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return string(data), nil
}

// LoadFile rebuilds the configuration from the registered defaults, the file
// at path with everything it includes, and the command-line overrides. The new
// state replaces the old one only when every step succeeds.
func (c *Config) LoadFile(path string) error {
	store, files, err := c.rebuild(path)
	if err != nil {
		return err
	}
	c.commit(path, store, files)
	return nil
}

// rebuild produces the state LoadFile would swap in, without touching c.
func (c *Config) rebuild(path string) (*hocon.MapStore, []string, error) {
	c.mutex.RLock()
	opts := c.options
	logger := c.logger
	defaults := c.defaults.Clone()
	overrides := append([]override(nil), c.overrides...)
	c.mutex.RUnlock()

	store, files, err := loadFile(path, defaults, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range overrides {
		if store, err = o.apply(store); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrCLIParse, err)
		}
	}
	return store, files, nil
}

func (c *Config) commit(path string, store *hocon.MapStore, files []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store = store
	c.filePath = path
	c.files = files
}

// loadFile parses the root file into store and returns the files read.
func loadFile(path string, store *hocon.MapStore, opts LoadOptions, logger *slog.Logger) (*hocon.MapStore, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: '%s' is a directory", ErrInvalidPath, path)
	}

	resolver := NewFileResolver(filepath.Dir(path), opts, logger)
	reader := hocon.NewReader(store, resolver, hocon.WithLogger(logger))
	if err := reader.Read(filepath.Base(path)); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}

	files := resolver.Files()
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	return store, files, nil
}

// override is one command-line assignment.
type override struct {
	path  string
	value string
}

// apply parses the assignment onto a copy of store. The value is first read
// as a document value (so numbers, booleans, lists and substitutions keep
// their meaning) and falls back to a quoted string.
func (o override) apply(store *hocon.MapStore) (*hocon.MapStore, error) {
	attempt := store.Clone()
	if err := hocon.NewReader(attempt, nil).ReadString(o.path + " : " + o.value); err == nil && o.confined(store, attempt) {
		return attempt, nil
	}

	quoted := `"` + strings.ReplaceAll(o.value, `"`, `""`) + `"`
	attempt = store.Clone()
	if err := hocon.NewReader(attempt, nil).ReadString(o.path + " : " + quoted); err != nil {
		return nil, fmt.Errorf("override %s: %w", o.path, err)
	}
	return attempt, nil
}

// confined reports whether after differs from before only at the override
// path, its ancestors and its descendants. A value such as "1, other: 2" would
// otherwise write a second property.
func (o override) confined(before, after *hocon.MapStore) bool {
	for _, e := range after.Entries() {
		if e.Path == o.path || strings.HasPrefix(e.Path, o.path+".") || strings.HasPrefix(o.path, e.Path+".") {
			continue
		}
		prev, ok := before.Get(e.Path)
		if !ok || !reflect.DeepEqual(prev, e.Value) {
			return false
		}
	}
	return true
}

// LoadCLI replaces the command-line overrides with those parsed from args and
// applies them to the current state. Overrides are replayed after every
// subsequent file load.
func (c *Config) LoadCLI(args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	store := c.store
	for _, o := range parsed {
		if store, err = o.apply(store); err != nil {
			return fmt.Errorf("%w: %w", ErrCLIParse, err)
		}
	}

	c.overrides = parsed
	c.store = store
	return nil
}

// parseArgs processes command-line arguments into overrides.
// Accepted forms: "--key=value", "--key value" and "--booleanflag".
func parseArgs(args []string) ([]override, error) {
	var result []override
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var keyPath string
		var valueStr string

		if key, value, ok := strings.Cut(argContent, "="); ok {
			keyPath = key
			valueStr = value
			i++
		} else {
			keyPath = argContent
			// Boolean flag when the next arg is another flag or there is none
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if err := validatePath(keyPath); err != nil {
			return nil, fmt.Errorf("command-line key %q: %w", keyPath, err)
		}
		if len(valueStr) > MaxValueSize {
			return nil, fmt.Errorf("command-line key %q: %w", keyPath, ErrValueSize)
		}

		result = append(result, override{path: keyPath, value: valueStr})
	}

	return result, nil
}
