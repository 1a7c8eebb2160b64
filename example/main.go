// FILE: lixenwraith/config/example/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/config"
)

// AppConfig defines a richer configuration structure to showcase more features.
type AppConfig struct {
	Server struct {
		Host     string        `hocon:"host"`
		Port     int64         `hocon:"port"`
		LogLevel string        `hocon:"log_level"`
		Timeout  time.Duration `hocon:"timeout"`
	} `hocon:"server"`
	Admin struct {
		Host string `hocon:"host"`
		Port int64  `hocon:"port"`
	} `hocon:"admin"`
	FeatureFlags map[string]bool `hocon:"feature_flags"`
}

const (
	configFilePath   = "app.conf"
	featuresFilePath = "features.conf"
)

// The admin block extends server and replaces only the port.
const initialDocument = `
server {
    host : localhost
    port : 8080
    log_level : info
    timeout : "30s"
}

admin : $(server) {
    port : 9090
}

include "features"
`

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write a root file and an included file for the program to read.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating initial configuration files...")

	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.Remove(configFilePath)
		os.Remove(featuresFilePath)
		log.Printf("Removed %s and %s.", configFilePath, featuresFilePath)
	}()

	if err := createInitialConfigFiles(); err != nil {
		log.Fatalf("❌ Failed during initial file creation: %v", err)
	}
	log.Printf("✅ Initial configuration saved to %s.", configFilePath)

	// =========================================================================
	// PART 2: RECOMMENDED CONFIGURATION USING THE BUILDER
	// This demonstrates layering (defaults < file < CLI) and validation.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Configuring manager with the Builder...")

	defaults := &AppConfig{}
	defaults.Server.Host = "0.0.0.0"
	defaults.Server.Port = 80
	defaults.Server.LogLevel = "warn"
	defaults.FeatureFlags = map[string]bool{"enable_metrics": false}

	validator := func(c *config.Config) error {
		port, err := c.Int64("server.port")
		if err != nil {
			return err
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	// CLI argument usage example to override the server port:
	// ./example --server.port=8888
	cfg, err := config.NewBuilder().
		WithDefaults(defaults).
		WithFile(configFilePath).
		WithArgs(os.Args[1:]).
		WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))).
		WithValidator(validator).
		Build()
	if err != nil {
		log.Fatalf("❌ Builder failed: %v", err)
	}

	log.Println("✅ Builder finished successfully. Initial values loaded.")
	printCurrentState(cfg, "Initial State (File over Defaults)")

	// =========================================================================
	// PART 3: DYNAMIC RELOADING WITH THE WATCHER
	// Modify the included file and verify the watcher updates the config.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Testing the file watcher...")

	watchOpts := config.WatchOptions{
		Debounce:      100 * time.Millisecond,
		ReloadTimeout: 2 * time.Second,
	}
	if err := cfg.AutoUpdateWithOptions(watchOpts); err != nil {
		log.Fatalf("❌ Failed to start watcher: %v", err)
	}
	defer cfg.StopAutoUpdate()
	changes := cfg.Watch()
	log.Println("✅ Watcher is now active with custom options.")

	var wg sync.WaitGroup
	wg.Add(1)
	go modifyFeaturesOnDisk(&wg)
	log.Println("   (Modifier goroutine dispatched to change the included file in 1 second...)")

	log.Println("   (Waiting for watcher notification...)")
	select {
	case path := <-changes:
		log.Printf("✅ Watcher detected a change for path: '%s'", path)

		level, err := cfg.String("server.log_level")
		if err != nil {
			log.Fatalf("❌ Lookup failed after update: %v", err)
		}
		if level != "debug" {
			log.Fatalf("❌ VERIFICATION FAILED: Expected log_level 'debug', but got '%s'.", level)
		}

		log.Println("✅ VERIFICATION SUCCESSFUL: In-memory config was updated by the watcher.")
		printCurrentState(cfg, "Final State (Updated by Watcher)")

	case <-time.After(5 * time.Second):
		log.Fatalf("❌ TEST FAILED: Timed out waiting for watcher notification.")
	}

	wg.Wait()

	log.Println("---")
	log.Println("➡️  Canonical form of the final configuration:")
	if err := cfg.Dump(os.Stdout); err != nil {
		log.Fatalf("❌ Dump failed: %v", err)
	}
}

// createInitialConfigFiles is a helper to set up the initial file state.
func createInitialConfigFiles() error {
	if err := os.WriteFile(configFilePath, []byte(initialDocument), 0644); err != nil {
		return err
	}

	features := config.New()
	if err := features.Register("feature_flags.enable_metrics", true); err != nil {
		return err
	}
	return features.SaveWithHeader(featuresFilePath, "Feature flags, included by "+configFilePath)
}

// modifyFeaturesOnDisk simulates an external program changing the included file.
func modifyFeaturesOnDisk(wg *sync.WaitGroup) {
	defer wg.Done()
	time.Sleep(1 * time.Second)
	log.Println("   (Modifier goroutine: now changing file on disk...)")

	modifierCfg := config.New()
	if err := modifierCfg.LoadFile(featuresFilePath); err != nil {
		log.Fatalf("❌ Modifier failed to load file: %v", err)
	}

	// Raise the log level from the include and add a new feature flag.
	if err := modifierCfg.Set("server.log_level", "debug"); err != nil {
		log.Fatalf("❌ Modifier failed to set value: %v", err)
	}
	if err := modifierCfg.Set("feature_flags.enable_tracing", false); err != nil {
		log.Fatalf("❌ Modifier failed to set value: %v", err)
	}

	if err := modifierCfg.Save(featuresFilePath); err != nil {
		log.Fatalf("❌ Modifier failed to save file: %v", err)
	}
	log.Println("   (Modifier goroutine: finished.)")
}

// printCurrentState scans the configuration and displays the typed state.
func printCurrentState(cfg *config.Config, title string) {
	var app AppConfig
	if err := cfg.Scan(&app); err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}

	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server:           %s:%d\n", app.Server.Host, app.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", app.Server.LogLevel)
	fmt.Printf("     Server Timeout:   %s\n", app.Server.Timeout)
	fmt.Printf("     Admin:            %s:%d\n", app.Admin.Host, app.Admin.Port)
	fmt.Printf("     Feature Flags:    %v\n", app.FeatureFlags)
	fmt.Println("   --------------------------------------------------")
}
