package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

func Init(env string) {
	InitWithLevel(env, "")
}

// InitWithLevel installs the process logger. JSON output in production,
// text otherwise; an empty level keeps the per-environment default.
func InitWithLevel(env, level string) {
	format := "text"
	if env == "production" {
		format = "json"
	}
	InitWithFormat(env, level, format)
}

// InitWithFormat is InitWithLevel with an explicit "json" or "text" output.
func InitWithFormat(env, level, format string) {
	fallback := slog.LevelDebug
	if env == "production" {
		fallback = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level, fallback)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
