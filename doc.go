// File: lixenwraith/config/doc.go

// Package config provides thread-safe configuration management for Go
// applications on top of HOCON-style documents (see package hocon): object
// blocks, includes, substitutions, extends, registered defaults and
// command-line overrides.
//
// Features:
//   - Documents with includes, $(path) substitutions and "base : $(other) { ... }" extends
//   - Exact decimals (shopspring/decimal) alongside int64, bool and string values
//   - Thread-safe reads; every update builds a new state and swaps it in atomically
//   - Struct registration for defaults and mapstructure-based Scan
//   - Builder pattern, XDG file discovery and validators
//   - Hot reload through fsnotify, following included files
//   - Export to HOCON, JSON, YAML and TOML
//
// Quick Start:
//
//	type AppConfig struct {
//	    Server struct {
//	        Host string `hocon:"host"`
//	        Port int64  `hocon:"port"`
//	    } `hocon:"server"`
//	}
//
//	defaults := AppConfig{}
//	defaults.Server.Host = "localhost"
//	defaults.Server.Port = 8080
//
//	cfg, err := config.Quick(defaults, "app.conf")
//	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
//	    log.Fatal(err)
//	}
//
//	host, _ := cfg.String("server.host")
//	port, _ := cfg.Int64("server.port")
//
// Layering (later wins):
//  1. Registered defaults
//  2. Configuration file and its includes
//  3. Command-line arguments (--server.port=9090)
//
// Every LoadFile rebuilds the state from these layers, so a document can
// substitute or extend a default and a command-line override survives reloads.
//
// Thread Safety:
// All operations are thread-safe. Readers see either the state before an
// update or the state after it, never a partially applied document.
package config
