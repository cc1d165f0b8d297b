package app

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. JSON output is meant for log
// aggregation in production; any other format gets the text handler with
// source locations for local debugging.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg)}

	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.AddSource = true
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "stockroom"))
}

func logLevel(cfg *Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
