package logging

import (
	"log/slog"
	"os"
)

// New creates the process logger. Text output: the bridge usually runs
// under a supervisor that already timestamps and ships lines.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
