package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the JSON logger every service writes to stdout. LOG_LEVEL picks the level.
func New() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(os.Getenv("LOG_LEVEL")),
	})
	return slog.New(h)
}

func Level(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
