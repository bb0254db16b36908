package ripple

import (
	"sync"

	"github.com/go-logr/logr"
)

var (
	loggerMu sync.RWMutex
	logger   = logr.Discard()
)

// SetLogger installs a structured logger for engine debug output.
// Transaction boundaries and flush statistics are logged at V(1).
// The default logger discards everything.
func SetLogger(l logr.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// log returns the installed logger.
func log() logr.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}
