package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestZeroLogger_FieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(zerolog.InfoLevel, &buf)
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	assert.Zero(t, buf.Len(), "debug must be filtered at info level")

	l.Info(ctx, "candle sealed", map[string]interface{}{"openTime": 1000})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "candle sealed", line["message"])
	assert.Equal(t, float64(1000), line["openTime"])
	assert.Equal(t, "info", line["level"])
}

func TestZeroLogger_ErrorAttachesError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(zerolog.InfoLevel, &buf)

	l.Error(context.Background(), errors.New("boom"), "ingest failed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "ingest failed", line["message"])
}
