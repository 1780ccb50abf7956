package termgpu

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/termgpu/internal/logx"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger is enabled, want silent")
	}
}

func TestSetLoggerPropagates(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logx.Logger().Debug("from a sub-package")
	if !strings.Contains(buf.String(), "from a sub-package") {
		t.Errorf("sub-package log not captured: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}
