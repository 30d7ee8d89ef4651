package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(LevelInfo, &buf).With("component", "ingest")

	logger.WarnContext(context.Background(), "scoreboard day failed", "date", "2026-10-22", "error", errors.New("timeout"))

	var payload map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload))
	assert.Equal(t, "WARN", payload["level"])
	assert.Equal(t, "scoreboard day failed", payload["msg"])
	assert.Equal(t, "ingest", payload["component"])
	assert.Equal(t, "2026-10-22", payload["date"])
	assert.Equal(t, "timeout", payload["error"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(LevelWarn, &buf)
	logger.Info("dropped")
	logger.Debug("dropped")

	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("unknown"))
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no logger configured")
	})
}

func TestLogger_AcceptsZapFieldsAndDanglingKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(LevelInfo, &buf).Info("picks submitted", zap.Int("accepted", 3), "player_id", "p1", "orphan")

	var payload map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload))
	assert.EqualValues(t, 3, payload["accepted"])
	assert.Equal(t, "p1", payload["player_id"])
	assert.Contains(t, payload, "orphan")
	assert.Nil(t, payload["orphan"])
}

func TestLogger_CallerPointsAtCallSite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(LevelInfo, &buf).Info("window computed")

	var payload map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload))
	assert.Contains(t, payload["caller"], "logger_test.go")
}

func TestLogger_SyncSharedWithChildren(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	child := logger.Named("ingest").With("run", 1)

	assert.NoError(t, child.Sync())
	assert.NoError(t, logger.Sync())
}
