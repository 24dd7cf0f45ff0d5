// Package logging holds the *slog.Logger used by marksheet's library packages.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the package-level logger. A nil value means "discard".
var logger atomic.Pointer[slog.Logger]

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetLogger configures the logger used by the engine, loader and charts
// packages. Pass nil to disable logging again.
//
// SetLogger is safe for concurrent use.
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		logger.Store(newDiscardLogger())
		return
	}
	logger.Store(sl)
}

// Logger returns the package-level logger, or a discard logger when none
// has been set.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}
