package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// NewStderrLogger creates the process logger writing to stderr.
// format "json" writes JSON lines, anything else a human readable console format.
func NewStderrLogger(level LogLevel, format string) *Logger {
	if format == "json" {
		return NewLogger(level, os.Stderr)
	}
	return NewLogger(level, zerolog.ConsoleWriter{Out: os.Stderr})
}
