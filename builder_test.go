// FILE: lixenwraith/config/builder_test.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/config/hocon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builderConfig struct {
	Host  string `hocon:"host"`
	Port  int    `hocon:"port"`
	Debug bool   `hocon:"debug"`
}

func writeConf(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeFile(t, path, content)
	return path
}

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("BasicBuilder", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Host: "localhost", Port: 8080}).
			WithArgs(nil).
			Build()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		val, exists := cfg.Get("host")
		assert.True(t, exists)
		assert.Equal(t, "localhost", val)
	})

	t.Run("Layering", func(t *testing.T) {
		path := writeConf(t, t.TempDir(), "app.conf", `
host : filehost
port : 9000
`)
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Host: "localhost", Port: 8080}).
			WithFile(path).
			WithArgs([]string{"--port=9999", "--debug"}).
			Build()
		require.NoError(t, err)

		host, _ := cfg.String("host")
		port, _ := cfg.Int64("port")
		debug, _ := cfg.Bool("debug")
		assert.Equal(t, "filehost", host, "file overrides defaults")
		assert.Equal(t, int64(9999), port, "CLI overrides file")
		assert.True(t, debug)
		assert.Equal(t, path, cfg.FilePath())
	})

	t.Run("WithPrefix", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Host: "localhost"}).
			WithPrefix("app.server").
			WithArgs(nil).
			Build()
		require.NoError(t, err)

		host, err := cfg.String("app.server.host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", host)
	})

	t.Run("MissingFileNotFatal", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Port: 8080}).
			WithFile(filepath.Join(t.TempDir(), "missing.conf")).
			WithArgs([]string{"--port=81"}).
			Build()
		require.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, cfg, "config is usable without a file")

		port, _ := cfg.Int64("port")
		assert.Equal(t, int64(81), port)
	})

	t.Run("ParseErrorIsFatal", func(t *testing.T) {
		path := writeConf(t, t.TempDir(), "bad.conf", "server { port : 80")
		cfg, err := NewBuilder().WithFile(path).WithArgs(nil).Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, hocon.ErrSyntax)
		assert.Nil(t, cfg)
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		_, err := NewBuilder().WithArgs([]string{"--bad..path=1"}).Build()
		assert.ErrorIs(t, err, ErrCLIParse)
	})

	t.Run("InvalidTagName", func(t *testing.T) {
		_, err := NewBuilder().WithTagName("xml").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported tag name")
	})

	t.Run("TagName", func(t *testing.T) {
		type jsonConfig struct {
			Name string `json:"service_name"`
		}
		cfg, err := NewBuilder().
			WithTagName("json").
			WithDefaults(&jsonConfig{Name: "api"}).
			WithArgs(nil).
			Build()
		require.NoError(t, err)
		assert.True(t, cfg.HasValue("service_name"))
	})

	t.Run("InvalidDefaults", func(t *testing.T) {
		_, err := NewBuilder().WithDefaults("not a struct").WithArgs(nil).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register defaults")
	})
}

// TestBuilderSources tests named documents merged through the resolver
func TestBuilderSources(t *testing.T) {
	resolver := hocon.MapResolver{
		"base":    "port : 7000\nhost : base",
		"overlay": "port : 7001",
	}

	t.Run("AppliedInOrder", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Port: 8080}).
			WithResolver(resolver).
			WithSource("base").
			WithSource("overlay").
			WithArgs(nil).
			Build()
		require.NoError(t, err)

		port, _ := cfg.Int64("port")
		host, _ := cfg.String("host")
		assert.Equal(t, int64(7001), port)
		assert.Equal(t, "base", host)
	})

	t.Run("ArgsWinOverSources", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithResolver(resolver).
			WithSource("base").
			WithArgs([]string{"--host=cli"}).
			Build()
		require.NoError(t, err)

		host, _ := cfg.String("host")
		assert.Equal(t, "cli", host)
	})

	t.Run("RequiresResolver", func(t *testing.T) {
		_, err := NewBuilder().WithSource("base").WithArgs(nil).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "require a resolver")
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := NewBuilder().WithResolver(resolver).WithSource("").Build()
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

// TestBuilderValidation tests validators run after loading
func TestBuilderValidation(t *testing.T) {
	t.Run("ValidationPasses", func(t *testing.T) {
		var seen int64
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Port: 8080}).
			WithArgs(nil).
			WithValidator(func(c *Config) error {
				seen, _ = c.Int64("port")
				return nil
			}).
			Build()
		require.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.Equal(t, int64(8080), seen)
	})

	t.Run("ValidationFails", func(t *testing.T) {
		errLowPort := errors.New("port below 1024")
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Port: 80}).
			WithArgs(nil).
			WithValidator(func(c *Config) error {
				if port, _ := c.Int64("port"); port < 1024 {
					return errLowPort
				}
				return nil
			}).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, errLowPort)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.Nil(t, cfg)
	})

	t.Run("ValidatorsRunInOrder", func(t *testing.T) {
		var order []int
		_, err := NewBuilder().
			WithArgs(nil).
			WithValidator(func(*Config) error { order = append(order, 1); return nil }).
			WithValidator(nil).
			WithValidator(func(*Config) error { order = append(order, 2); return nil }).
			Build()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, order)
	})
}

// TestBuildAndScan tests building straight into a struct
func TestBuildAndScan(t *testing.T) {
	path := writeConf(t, t.TempDir(), "app.conf", `app { host : scanned, port : 1234 }`)

	var out builderConfig
	err := NewBuilder().
		WithDefaults(&builderConfig{Host: "localhost", Port: 8080, Debug: true}).
		WithPrefix("app").
		WithFile(path).
		WithArgs(nil).
		BuildAndScan(&out)
	require.NoError(t, err)
	assert.Equal(t, builderConfig{Host: "scanned", Port: 1234, Debug: true}, out)

	t.Run("MissingFileStillScans", func(t *testing.T) {
		var out builderConfig
		err := NewBuilder().
			WithDefaults(&builderConfig{Host: "localhost"}).
			WithFile(filepath.Join(t.TempDir(), "none.conf")).
			WithArgs(nil).
			BuildAndScan(&out)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		assert.Equal(t, "localhost", out.Host)
	})
}

// TestMustBuild tests panicking on fatal errors only
func TestMustBuild(t *testing.T) {
	assert.NotPanics(t, func() {
		cfg := NewBuilder().
			WithDefaults(&builderConfig{Port: 1}).
			WithFile(filepath.Join(t.TempDir(), "missing.conf")).
			WithArgs(nil).
			MustBuild()
		assert.NotNil(t, cfg)
	})

	assert.Panics(t, func() {
		NewBuilder().WithTagName("ini").MustBuild()
	})
}

// TestFileDiscovery tests locating the configuration file
func TestFileDiscovery(t *testing.T) {
	dir := t.TempDir()
	flagFile := writeConf(t, dir, "flag.conf", "port : 1001")
	envFile := writeConf(t, dir, "env.conf", "port : 1002")
	searchDir := filepath.Join(dir, "search")
	writeConf(t, searchDir, "myapp.hocon", "port : 1003")

	port := func(t *testing.T, cfg *Config) int64 {
		t.Helper()
		p, err := cfg.Int64("port")
		require.NoError(t, err)
		return p
	}

	opts := DefaultDiscoveryOptions("myapp")
	opts.UseXDG = false
	opts.UseCurrentDir = false
	opts.Paths = []string{searchDir}

	t.Run("CLIFlag", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", envFile)
		cfg, err := NewBuilder().
			WithArgs([]string{"--config", flagFile, "--debug"}).
			WithFileDiscovery(opts).
			Build()
		require.NoError(t, err)
		assert.Equal(t, flagFile, cfg.FilePath())
		assert.Equal(t, int64(1001), port(t, cfg))
		assert.False(t, cfg.HasPath("config"), "discovery flag is not an override")
		assert.True(t, cfg.HasValue("debug"))
	})

	t.Run("CLIFlagEqualsForm", func(t *testing.T) {
		cfg, err := NewBuilder().
			WithArgs([]string{fmt.Sprintf("--config=%s", flagFile)}).
			WithFileDiscovery(opts).
			Build()
		require.NoError(t, err)
		assert.Equal(t, int64(1001), port(t, cfg))
		assert.False(t, cfg.HasPath("config"))
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", envFile)
		cfg, err := NewBuilder().WithArgs(nil).WithFileDiscovery(opts).Build()
		require.NoError(t, err)
		assert.Equal(t, int64(1002), port(t, cfg))
	})

	t.Run("SearchPaths", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", "")
		cfg, err := NewBuilder().WithArgs(nil).WithFileDiscovery(opts).Build()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(searchDir, "myapp.hocon"), cfg.FilePath())
		assert.Equal(t, int64(1003), port(t, cfg))
	})

	t.Run("XDG", func(t *testing.T) {
		xdg := t.TempDir()
		writeConf(t, filepath.Join(xdg, "myapp"), "myapp.conf", "port : 1004")
		t.Setenv("MYAPP_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", xdg)

		xdgOpts := DefaultDiscoveryOptions("myapp")
		xdgOpts.UseCurrentDir = false
		cfg, err := NewBuilder().WithArgs(nil).WithFileDiscovery(xdgOpts).Build()
		require.NoError(t, err)
		assert.Equal(t, int64(1004), port(t, cfg))
	})

	t.Run("NothingFound", func(t *testing.T) {
		t.Setenv("MYAPP_CONFIG", "")
		empty := opts
		empty.Paths = []string{t.TempDir()}
		cfg, err := NewBuilder().
			WithDefaults(&builderConfig{Port: 8080}).
			WithArgs(nil).
			WithFileDiscovery(empty).
			Build()
		require.NoError(t, err, "no file configured means nothing to report")
		assert.Equal(t, "", cfg.FilePath())
		assert.Equal(t, int64(8080), port(t, cfg))
	})

	t.Run("DefaultOptions", func(t *testing.T) {
		d := DefaultDiscoveryOptions("my-app")
		assert.Equal(t, "MY_APP_CONFIG", d.EnvVar)
		assert.Equal(t, "--config", d.CLIFlag)
		assert.Equal(t, []string{".conf", ".hocon"}, d.Extensions)
	})
}
