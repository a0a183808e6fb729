package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// StdLogger implements the ports.Logger interface using the standard
// log package. It prints plain key=value lines for runs where JSON
// output is unwanted; it shares the zerolog level scale so LOG_LEVEL
// means the same thing for both adapters.
type StdLogger struct {
	logger *log.Logger
	level  zerolog.Level
}

// NewStd creates a plain-text logger writing to os.Stderr.
func NewStd(level zerolog.Level) *StdLogger {
	return NewStdWithWriter(level, os.Stderr)
}

// NewStdWithWriter creates a plain-text logger over an arbitrary
// writer, which the tests use to capture output.
func NewStdWithWriter(level zerolog.Level, w io.Writer) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level:  level,
	}
}

func (l *StdLogger) log(level zerolog.Level, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", strings.ToUpper(level.String()), msg))

	if err != nil {
		sb.WriteString(fmt.Sprintf(" | error: %v", err))
	}

	if len(fields) > 0 && fields[0] != nil {
		// Sorted keys keep the lines stable across runs.
		keys := make([]string, 0, len(fields[0]))
		for k := range fields[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, fields[0][k]))
		}
	}

	l.logger.Println(sb.String())
}

// Debug logs a message at Debug level.
func (l *StdLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(zerolog.DebugLevel, msg, nil, fields)
}

// Info logs a message at Info level.
func (l *StdLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(zerolog.InfoLevel, msg, nil, fields)
}

// Warn logs a message at Warning level.
func (l *StdLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(zerolog.WarnLevel, msg, nil, fields)
}

// Error logs an error message at Error level.
func (l *StdLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.log(zerolog.ErrorLevel, msg, err, fields)
}
