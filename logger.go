package termgpu

import (
	"log/slog"

	"github.com/gogpu/termgpu/internal/logx"
)

// SetLogger configures the logger for termgpu and all its sub-packages.
// By default, termgpu produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by termgpu:
//   - [slog.LevelDebug]: internal diagnostics (backend selection, action runs, dropped ticks)
//   - [slog.LevelInfo]: lifecycle events (engine start and stop)
//   - [slog.LevelWarn]: non-fatal issues (failed timer runs)
//
// Example:
//
//	termgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger used by termgpu.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logx.Logger()
}
