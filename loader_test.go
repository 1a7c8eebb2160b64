// FILE: lixenwraith/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lixenwraith/config/hocon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// TestFileLoading tests loading a root file with includes
func TestFileLoading(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "app.conf")
	writeFile(t, root, `
include "common"
server {
    host : "example.com"
    include "conf.d/limits.hocon"
}
`)
	writeFile(t, filepath.Join(dir, "common.conf"), `
server { host : localhost, port : 8080 }
log.level : info
`)
	writeFile(t, filepath.Join(dir, "conf.d", "limits.hocon"), `max_conns : 100`)

	cfg := New()
	require.NoError(t, cfg.LoadFile(root))

	host, err := cfg.String("server.host")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)

	port, err := cfg.Int64("server.port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	level, err := cfg.String("log.level")
	require.NoError(t, err)
	assert.Equal(t, "info", level)

	maxConns, err := cfg.Int64("server.max_conns")
	require.NoError(t, err)
	assert.Equal(t, int64(100), maxConns)

	assert.Equal(t, root, cfg.FilePath())
	files := cfg.Files()
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "app.conf"), files[0])
	assert.Equal(t, filepath.Join(dir, "common.conf"), files[1])
	assert.Equal(t, filepath.Join(dir, "conf.d", "limits.hocon"), files[2])

	t.Run("MissingFile", func(t *testing.T) {
		err := New().LoadFile(filepath.Join(dir, "absent.conf"))
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("Directory", func(t *testing.T) {
		err := New().LoadFile(dir)
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("MissingIncludeIsEmpty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "root.conf")
		writeFile(t, path, "a : 1\ninclude \"nowhere\"\nb : 2")

		cfg := New()
		require.NoError(t, cfg.LoadFile(path))
		assert.True(t, cfg.HasValue("a"))
		assert.True(t, cfg.HasValue("b"))
		assert.Len(t, cfg.Files(), 1)
	})

	t.Run("StrictIncludes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "root.conf")
		writeFile(t, path, "a : 1\ninclude \"nowhere\"")

		cfg := NewWithOptions(LoadOptions{StrictIncludes: true})
		err := cfg.LoadFile(path)
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("IncludeCycle", func(t *testing.T) {
		d := t.TempDir()
		writeFile(t, filepath.Join(d, "a.conf"), "x : 1\ninclude \"b\"")
		writeFile(t, filepath.Join(d, "b.conf"), "y : 2\ninclude \"b\"")

		err := New().LoadFile(filepath.Join(d, "a.conf"))
		assert.ErrorIs(t, err, hocon.ErrAlreadyIncluded)
	})

	t.Run("UTF16File", func(t *testing.T) {
		encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("name : \"wide\"")
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "wide.conf")
		writeFile(t, path, encoded)

		cfg := New()
		require.NoError(t, cfg.LoadFile(path))
		name, err := cfg.String("name")
		require.NoError(t, err)
		assert.Equal(t, "wide", name)
	})
}

// TestReloadRebuildsState tests that every load starts from the registered defaults
func TestReloadRebuildsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")

	cfg := New()
	require.NoError(t, cfg.Register("defaults.port", 22))
	require.NoError(t, cfg.Register("server.timeout", "30s"))

	writeFile(t, path, `
server {
    port : $(defaults.port)
    extra : true
}
`)
	require.NoError(t, cfg.LoadFile(path))

	port, err := cfg.Int64("server.port")
	require.NoError(t, err)
	assert.Equal(t, int64(22), port, "documents substitute defaults")

	timeout, err := cfg.String("server.timeout")
	require.NoError(t, err)
	assert.Equal(t, "30s", timeout)

	writeFile(t, path, `server { port : 2222 }`)
	require.NoError(t, cfg.LoadFile(path))

	assert.False(t, cfg.HasPath("server.extra"), "values dropped from the file disappear")
	port, _ = cfg.Int64("server.port")
	assert.Equal(t, int64(2222), port)
	timeout, _ = cfg.String("server.timeout")
	assert.Equal(t, "30s", timeout)

	t.Run("FailedLoadKeepsState", func(t *testing.T) {
		writeFile(t, path, `server { port : }`)
		err := cfg.LoadFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, hocon.ErrSyntax)

		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(2222), port)
	})

	t.Run("RebuildDoesNotCommit", func(t *testing.T) {
		other := filepath.Join(dir, "other.conf")
		writeFile(t, other, `server { port : 3333 }`)

		store, files, err := cfg.rebuild(other)
		require.NoError(t, err)
		assert.Equal(t, []string{other}, files)

		// A discarded rebuild, as after a reload timeout, leaves the config as is
		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(2222), port)
		assert.Equal(t, path, cfg.FilePath())

		cfg.commit(other, store, files)
		port, _ = cfg.Int64("server.port")
		assert.Equal(t, int64(3333), port)
		assert.Equal(t, other, cfg.FilePath())
		assert.Equal(t, []string{other}, cfg.Files())
	})
}

// TestExtendsDefaults tests documents extending a registered default scope
func TestExtendsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.conf")
	writeFile(t, path, `
primary : $(templates.db) {
    host : primary.local
}
`)

	cfg := New()
	require.NoError(t, cfg.Register("templates.db.host", "localhost"))
	require.NoError(t, cfg.Register("templates.db.port", 5432))
	require.NoError(t, cfg.LoadFile(path))

	host, _ := cfg.String("primary.host")
	port, _ := cfg.Int64("primary.port")
	assert.Equal(t, "primary.local", host)
	assert.Equal(t, int64(5432), port)
}

// TestSecurityOptions tests the path traversal guard and the size limit
func TestSecurityOptions(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "conf")
	writeFile(t, filepath.Join(base, "secret.conf"), "token : abc")

	t.Run("PathTraversal", func(t *testing.T) {
		path := filepath.Join(dir, "app.conf")
		writeFile(t, path, `include "../secret"`)

		err := New().LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalidPath)

		opts := DefaultLoadOptions()
		opts.Security.PreventPathTraversal = false
		cfg := NewWithOptions(opts)
		require.NoError(t, cfg.LoadFile(path))
		token, _ := cfg.String("token")
		assert.Equal(t, "abc", token)
	})

	t.Run("MaxFileSize", func(t *testing.T) {
		path := filepath.Join(dir, "large.conf")
		writeFile(t, path, "value : \""+strings.Repeat("x", 200)+"\"")

		opts := DefaultLoadOptions()
		opts.Security.MaxFileSize = 100
		err := NewWithOptions(opts).LoadFile(path)
		assert.ErrorIs(t, err, ErrFileTooLarge)

		opts.Security.MaxFileSize = 0
		require.NoError(t, NewWithOptions(opts).LoadFile(path))
	})
}

// TestFileResolver tests extension probing
func TestFileResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "only.hocon"), "a : 1")
	writeFile(t, filepath.Join(dir, "both.conf"), "from : conf")
	writeFile(t, filepath.Join(dir, "both.hocon"), "from : hocon")

	r := NewFileResolver(dir, DefaultLoadOptions(), nil)

	text, err := r.Resolve("only")
	require.NoError(t, err)
	assert.Equal(t, "a : 1", text)

	text, err = r.Resolve("both")
	require.NoError(t, err)
	assert.Equal(t, "from : conf", text, ".conf is probed first")

	text, err = r.Resolve("missing")
	require.NoError(t, err)
	assert.Empty(t, text)

	assert.Equal(t, []string{filepath.Join(dir, "only.hocon"), filepath.Join(dir, "both.conf")}, r.Files())
}

// TestCLIParsing tests command-line override parsing
func TestCLIParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []override
		errIs    error
	}{
		{
			name:     "EqualsForm",
			args:     []string{"--server.port=9090"},
			expected: []override{{path: "server.port", value: "9090"}},
		},
		{
			name:     "SpaceForm",
			args:     []string{"--server.host", "example.com"},
			expected: []override{{path: "server.host", value: "example.com"}},
		},
		{
			name:     "BooleanFlags",
			args:     []string{"--debug", "--verbose"},
			expected: []override{{path: "debug", value: "true"}, {path: "verbose", value: "true"}},
		},
		{
			name:     "SkipsPositionalAndSeparator",
			args:     []string{"serve", "--", "-x", "--a=1"},
			expected: []override{{path: "a", value: "1"}},
		},
		{
			name:     "EmptyValue",
			args:     []string{"--name="},
			expected: []override{{path: "name", value: ""}},
		},
		{
			name:  "InvalidPath",
			args:  []string{"--server..port=1"},
			errIs: ErrInvalidPath,
		},
		{
			name:  "ValueTooLarge",
			args:  []string{"--blob=" + strings.Repeat("x", MaxValueSize+1)},
			errIs: ErrValueSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestLoadCLI tests applying overrides and their survival across reloads
func TestLoadCLI(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.ParseString(`server { port : 80, host : localhost }`))

	require.NoError(t, cfg.LoadCLI([]string{
		"--server.port=9090",
		"--server.name", "hello world",
		"--server.ratio=0.5",
		"--server.tags=[a, b]",
		"--server.tls",
		"--server.alias=$(server.host)",
		"--server.inject=1, injected : 2",
		`--server.quote=say "hi"`,
	}))

	port, _ := cfg.Int64("server.port")
	assert.Equal(t, int64(9090), port)

	name, _ := cfg.String("server.name")
	assert.Equal(t, "hello world", name)

	ratio, _ := cfg.Float64("server.ratio")
	assert.Equal(t, 0.5, ratio)

	tags, _ := cfg.StringList("server.tags")
	assert.Equal(t, []string{"a", "b"}, tags)

	tls, _ := cfg.Bool("server.tls")
	assert.True(t, tls)

	alias, _ := cfg.String("server.alias")
	assert.Equal(t, "localhost", alias)

	inject, _ := cfg.String("server.inject")
	assert.Equal(t, "1, injected : 2", inject)
	assert.False(t, cfg.HasPath("injected"))

	quote, _ := cfg.String("server.quote")
	assert.Equal(t, `say "hi"`, quote)

	t.Run("SurvivesReload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.conf")
		writeFile(t, path, `server { port : 8080, host : filehost }`)
		require.NoError(t, cfg.LoadFile(path))

		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(9090), port)
		alias, _ := cfg.String("server.alias")
		assert.Equal(t, "filehost", alias)
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		err := cfg.LoadCLI([]string{"--bad..path=1"})
		assert.ErrorIs(t, err, ErrCLIParse)
		assert.ErrorIs(t, err, ErrInvalidPath)

		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(9090), port, "a rejected override set changes nothing")
	})
}

// BenchmarkLoadFile benchmarks a full rebuild from defaults, file and an include
func BenchmarkLoadFile(b *testing.B) {
	dir := b.TempDir()
	root := filepath.Join(dir, "bench.conf")
	content := `
server {
    host : localhost
    port : 8080
}
database.url : "postgres://localhost/db"
cache { ttl : 300, sizes : [1, 2, 3] }
include "extra"
`
	if err := os.WriteFile(root, []byte(content), 0644); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra.conf"), []byte("cache.ttl : 600\n"), 0644); err != nil {
		b.Fatal(err)
	}

	cfg := New()
	cfg.Register("server.host", "")
	cfg.Register("server.port", 0)
	cfg.Register("cache.ttl", 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cfg.LoadFile(root); err != nil {
			b.Fatal(err)
		}
	}
}
