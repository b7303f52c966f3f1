package cmd

import (
	"log/slog"
	"os"
)

// buildLogger creates the process logger. Unknown levels fall back to info
// and unknown formats to text.
func buildLogger(level string, format string) *slog.Logger {
	var programLevel slog.Level
	if err := programLevel.UnmarshalText([]byte(level)); err != nil {
		programLevel = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: programLevel}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, options)
	default:
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
