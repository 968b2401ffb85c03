package gcp

import (
	"log/slog"
	"strings"
)

// LogLevel maps a LOG_LEVEL value onto a slog level. Unknown values log at info.
func LogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
