package trimesh

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while contouring runs on other goroutines.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by the package.
// By default nothing is logged. Pass nil to restore the silent logger.
//
// Log levels used:
//   - debug: mesh statistics, split dispatch, polygonizer passes
//   - warn: ambiguous adjacency, degenerate triangles, omitted cells
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
