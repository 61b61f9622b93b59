package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the logging level
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Logger holds the zerolog logger instance
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new logger instance with the specified log level
func NewLogger(logLevel LogLevel, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(string(logLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{
		logger: logger,
	}
}

// Zerolog returns the underlying zerolog logger
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// WithModule returns a child logger tagged with a module name
func (l *Logger) WithModule(module string) zerolog.Logger {
	return l.logger.With().Str("module", module).Logger()
}

// LogScan logs the outcome of one folder scan
func (l *Logger) LogScan(runID, root string, duration time.Duration, inserted, updated int, err error) {
	event := l.logger.With().
		Str("run_id", runID).
		Str("folder", root).
		Int64("duration_ms", duration.Milliseconds()).
		Int("inserted", inserted).
		Int("updated", updated).
		Logger()

	if err == nil {
		event.Info().Msg("Scan finished")
	} else {
		event.Error().Err(err).Msg("Scan failed")
	}
}

// SetLogLevel dynamically changes the logging level
func (l *Logger) SetLogLevel(logLevel LogLevel) error {
	level, err := zerolog.ParseLevel(string(logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}

	l.logger = l.logger.Level(level)
	return nil
}
