// FILE: lixenwraith/config/timing.go
package config

import "time"

// Core timing constants for production use.
// These define the fundamental timing behavior of the config package.
const (
	ShutdownTimeout      = 100 * time.Millisecond // Graceful watcher termination window
	MinDebounce          = 10 * time.Millisecond  // Hard floor for change coalescence
	DefaultDebounce      = 500 * time.Millisecond // File change coalescence period
	DefaultReloadTimeout = 5 * time.Second        // Maximum duration for reload operations
)

// DefaultMaxWatchers caps subscriber channels per watcher
const DefaultMaxWatchers = 100

// subscriberBuffer is the capacity of each subscriber channel. Notifications
// to a full channel are dropped.
const subscriberBuffer = 16
