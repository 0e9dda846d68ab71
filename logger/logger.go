package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

// New returns a JSON logger writing to stderr. Unknown levels fall back to info.
func New(level string) Logger {
	return newWithWriter(os.Stderr, level)
}

// Discard is for tests that don't care about log output.
func Discard() Logger {
	return newWithWriter(io.Discard, "error")
}

func newWithWriter(w io.Writer, level string) Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true, // include file + line number
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
