// Package debug prints diagnostic lines when a run is started with DEBUG
// enabled. Every helper is a no-op when disabled.
package debug

import (
	"fmt"
	"log"
	"time"
)

// Section logs a banner for a pipeline stage and returns the function that
// closes it.
func Section(enabled bool, title string) func() {
	if !enabled {
		return func() {}
	}
	log.Printf("=== %s ===", title)
	return func() {
		log.Printf("=== end %s ===", title)
	}
}

// Printf logs a timestamped diagnostic line.
func Printf(enabled bool, format string, args ...interface{}) {
	if enabled {
		timestamp := time.Now().Format("15:04:05.000")
		log.Printf("[%s] %s", timestamp, fmt.Sprintf(format, args...))
	}
}

// Timing logs how long an operation took once the returned func is called.
func Timing(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	Printf(enabled, "starting %s", operation)

	return func() {
		Printf(enabled, "finished %s in %v", operation, time.Since(start))
	}
}
