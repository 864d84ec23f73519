// Package debug provides conditional debug logging for fddplan.
//
// Debug logging is enabled by setting the FDDPLAN_DEBUG environment variable
// or passing --debug:
//
//	FDDPLAN_DEBUG=1 fddplan show plan.json
//
// When disabled (default) Log, LogIf and LogTiming are no-ops. Warn always
// writes, since it reports failures that were swallowed on purpose.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const prefix = "[FDDPLAN] "

var (
	enabled atomic.Bool

	mu     sync.RWMutex
	logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
)

func init() {
	if os.Getenv("FDDPLAN_DEBUG") != "" {
		enabled.Store(true)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// SetOutput redirects all output, returning a func that restores the
// previous writer. Meant for tests.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := logger.Writer()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = log.New(prev, prefix, log.Ltime|log.Lmicroseconds)
	}
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled.Load() {
		return
	}
	current().Printf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond || !enabled.Load() {
		return
	}
	current().Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	current().Printf("%s took %v", name, d)
}

// LogEnterExit logs entry and returns a func that logs exit with timing.
//
//	defer debug.LogEnterExit("reload")()
func LogEnterExit(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	current().Printf("-> %s", name)
	start := time.Now()
	return func() {
		current().Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Warn writes a message regardless of the enabled flag.
func Warn(format string, args ...any) {
	current().Printf("WARN "+format, args...)
}
