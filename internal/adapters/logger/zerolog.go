// Package logger adapts zerolog to the ports.Logger interface.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZeroLogger implements ports.Logger on top of a zerolog.Logger.
type ZeroLogger struct {
	logger zerolog.Logger
}

// ParseLevel maps a level string to a zerolog level, defaulting to
// Info for anything it does not recognize.
func ParseLevel(levelStr string) zerolog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger writing structured lines to os.Stderr.
func New(level zerolog.Level) *ZeroLogger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a logger over an arbitrary writer, which the
// tests use to capture output.
func NewWithWriter(level zerolog.Level, w io.Writer) *ZeroLogger {
	return &ZeroLogger{
		logger: zerolog.New(w).With().Timestamp().Logger().Level(level),
	}
}

func (l *ZeroLogger) event(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if len(fields) > 0 && fields[0] != nil {
		e = e.Fields(fields[0])
	}
	e.Msg(msg)
}

// Debug logs a message at Debug level.
func (l *ZeroLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.event(l.logger.Debug(), msg, fields)
}

// Info logs a message at Info level.
func (l *ZeroLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.event(l.logger.Info(), msg, fields)
}

// Warn logs a message at Warning level.
func (l *ZeroLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.event(l.logger.Warn(), msg, fields)
}

// Error logs an error message at Error level.
func (l *ZeroLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.event(l.logger.Error().Err(err), msg, fields)
}
