package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
)

func TestStdLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdWithWriter(zerolog.WarnLevel, &buf)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "also hidden")
	assert.Zero(t, buf.Len())

	l.Warn(ctx, "shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestStdLogger_FieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdWithWriter(zerolog.InfoLevel, &buf)
	ctx := context.Background()

	l.Info(ctx, "candle sealed", map[string]interface{}{"openTime": 1000, "close": 99.5})
	line := buf.String()
	assert.Contains(t, line, "[INFO] candle sealed |")
	// Keys come out sorted.
	assert.Contains(t, line, "close=99.5 openTime=1000")

	buf.Reset()
	l.Error(ctx, errors.New("boom"), "ingest failed")
	assert.Contains(t, buf.String(), "[ERROR] ingest failed | error: boom")
}
