// FILE: lixenwraith/config/discovery.go
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions describes where to look for the root configuration file
type FileDiscoveryOptions struct {
	// Name is the file name without extension, also the XDG directory name
	Name string

	// Extensions tried in order for every search directory
	Extensions []string

	// Paths are searched before the current and XDG directories
	Paths []string

	// EnvVar names an environment variable holding an explicit file path
	EnvVar string

	// CLIFlag names a flag holding an explicit file path (e.g., "--config").
	// The flag and its value are not treated as overrides.
	CLIFlag string

	// UseXDG adds $XDG_CONFIG_HOME/<name> and $XDG_CONFIG_DIRS/<name>
	UseXDG bool

	// UseCurrentDir adds the working directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns discovery options for appName: .conf and
// .hocon files, APPNAME_CONFIG, --config, the working directory and XDG.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".conf", ".hocon"},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery sets the configuration file from the first source that
// names one: the CLI flag, then the environment variable, then the search
// directories. Call WithArgs first when args other than os.Args are used.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.file = discoverFile(opts, b.args)
	if opts.CLIFlag != "" {
		b.fileFlag = opts.CLIFlag
	}
	return b
}

// discoverFile returns the discovered path, or "" when nothing names a file.
// A missing file is not an error, the app can run with defaults.
func discoverFile(opts FileDiscoveryOptions, args []string) string {
	if path, ok := flagValue(args, opts.CLIFlag); ok {
		return path
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}
	for _, dir := range searchDirs(opts) {
		if path, ok := findIn(dir, opts.Name, opts.Extensions); ok {
			return path
		}
	}
	return ""
}

// flagValue returns the value of flag in either "--flag value" or
// "--flag=value" form.
func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value, true
		}
	}
	return "", false
}

func searchDirs(opts FileDiscoveryOptions) []string {
	dirs := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, getXDGConfigPaths(opts.Name)...)
	}
	return dirs
}

// findIn returns the first regular file dir/name+ext.
func findIn(dir, name string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// getXDGConfigPaths returns the XDG config directories for appName, user
// directory first.
func getXDGConfigPaths(appName string) []string {
	var paths []string

	switch home := os.Getenv("XDG_CONFIG_HOME"); {
	case home != "":
		paths = append(paths, filepath.Join(home, appName))
	case os.Getenv("HOME") != "":
		paths = append(paths, filepath.Join(os.Getenv("HOME"), ".config", appName))
	}

	dirs := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(dirs) == 0 {
		dirs = []string{"/etc/xdg", "/etc"}
	}
	for _, dir := range dirs {
		paths = append(paths, filepath.Join(dir, appName))
	}
	return paths
}
