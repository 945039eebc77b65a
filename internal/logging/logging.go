// Package logging owns the process-wide slog setup and the adapter that
// renders pipeline events onto it. Components receive derived loggers tagged
// with a "component" attribute instead of touching the handler directly.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"error":   slog.LevelError,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"info":    slog.LevelInfo,
	"debug":   slog.LevelDebug,
}

// New builds the console logger every component derives from. Unknown level
// strings fall back to debug so a misconfigured level surfaces in the output
// instead of hiding it.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(value string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(value))]; ok {
		return lvl
	}
	return slog.LevelDebug
}
