package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("boom")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true, false)
	logger.Info("hello", slog.String("k", "v"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	logger = NewLogger(&buf, false, false)
	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is filtered unless verbose")

	logger = NewLogger(&buf, false, true)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false, false)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestLogErrorAndOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true, false)

	LogError(logger, "something failed", errors.New("bad input"), slog.String("stop", "A"))
	assert.Contains(t, buf.String(), `"error":"bad input"`)
	assert.Contains(t, buf.String(), `"stop":"A"`)

	buf.Reset()
	LogOperation(logger, "graph_built", slog.Int("edges", 12))
	assert.Contains(t, buf.String(), `"operation":"graph_built"`)
	assert.Contains(t, buf.String(), `"edges":12`)
}

func TestLogHTTPRequestLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{name: "success", status: 200, level: "INFO"},
		{name: "client error", status: 404, level: "WARN"},
		{name: "server error", status: 503, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, true, false)
			LogHTTPRequest(logger, "GET", "/api/route", tt.status, 1.5)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, float64(tt.status), line["status"])
		})
	}
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true, false)
	closer := &failingCloser{}

	SafeCloseWithLogging(closer, logger, "body")

	assert.True(t, closer.closed)
	assert.Contains(t, buf.String(), `"resource":"body"`)

	// nil closers are ignored
	SafeCloseWithLogging(nil, logger, "nothing")
}
