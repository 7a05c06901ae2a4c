package pipeline

import (
	"context"
	"log/slog"
)

// LevelTrace is the log level of per-cycle pipeline events.
const LevelTrace slog.Level = slog.LevelDebug - 4

// Trace logs a pipeline event at LevelTrace.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
