// Package debug provides env-gated diagnostic logging to stderr.
// Set GIRA_DEBUG to any non-empty value, or enable --verbose, to see it.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	enabled = os.Getenv("GIRA_DEBUG") != ""
	verbose = false
	quiet   = false
)

// Enabled reports whether debug output is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled || verbose
}

// SetVerbose enables debug output regardless of GIRA_DEBUG.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// SetQuiet suppresses non-essential informational output.
func SetQuiet(q bool) {
	mu.Lock()
	quiet = q
	mu.Unlock()
}

// IsQuiet reports whether quiet mode is enabled.
func IsQuiet() bool {
	mu.Lock()
	defer mu.Unlock()
	return quiet
}

// Logf writes a debug line to stderr when debug output is active.
func Logf(format string, args ...any) {
	if !Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// PrintNormal prints informational output unless quiet mode is enabled.
func PrintNormal(format string, args ...any) {
	if IsQuiet() {
		return
	}
	fmt.Printf(format, args...)
}
