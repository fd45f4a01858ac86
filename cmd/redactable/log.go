package redactable

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// parseLevel converts a string level to log.Level. Unknown names mean warn.
func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

func newLogger(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           parseLevel(level),
		Prefix:          "redactable",
		TimeFormat:      time.Kitchen,
		ReportTimestamp: parseLevel(level) == log.DebugLevel,
	})
}
