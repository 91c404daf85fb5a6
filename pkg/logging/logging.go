// Package logging is a small leveled logger for the CLI and the reminder
// daemon. Debug lines only appear when DAYBOOK_DEBUG is set or verbose mode
// is switched on.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.Mutex
	verbose bool
	logger  = log.New(os.Stderr, "", log.LstdFlags)

	debugTag = color.New(color.Faint).Sprint("DEBUG")
	infoTag  = color.New(color.FgCyan).Sprint("INFO ")
	warnTag  = color.New(color.FgYellow).Sprint("WARN ")
	errorTag = color.New(color.FgRed, color.Bold).Sprint("ERROR")
)

// DebugEnabled reports whether debug lines are emitted.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose || os.Getenv("DAYBOOK_DEBUG") != ""
}

// SetVerbose forces debug output on or off (the env var still enables it).
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// SetOutput redirects all log lines, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger.SetOutput(w)
	mu.Unlock()
}

// Debugf logs only when debug output is enabled.
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		emit(debugTag, format, args...)
	}
}

// Infof logs an informational line.
func Infof(format string, args ...interface{}) {
	emit(infoTag, format, args...)
}

// Warnf logs a degraded-but-continuing condition.
func Warnf(format string, args ...interface{}) {
	emit(warnTag, format, args...)
}

// Errorf logs a failure that was handled but should be visible.
func Errorf(format string, args ...interface{}) {
	emit(errorTag, format, args...)
}

func emit(tag, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Printf("%s %s", tag, fmt.Sprintf(format, args...))
}
