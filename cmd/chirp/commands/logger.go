package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleLogger adapts zerolog to the chirp.Logger interface for verbose
// CLI runs. Output goes to stderr so piped command output stays clean.
type ConsoleLogger struct {
	logger zerolog.Logger
}

// NewConsoleLogger creates a logger writing human-readable lines to stderr.
func NewConsoleLogger() *ConsoleLogger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	return &ConsoleLogger{
		logger: zerolog.New(writer).Level(zerolog.DebugLevel).With().Timestamp().Logger(),
	}
}

// Debug logs a debug message with structured fields.
func (l *ConsoleLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs an info message with structured fields.
func (l *ConsoleLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs a warning message with structured fields.
func (l *ConsoleLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs an error message with structured fields.
func (l *ConsoleLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
