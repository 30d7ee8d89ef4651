package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogging_RecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.LevelInfo, &buf)

	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("locked"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/picks", nil))

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "/v1/picks", line["path"])
	assert.EqualValues(t, http.StatusUnprocessableEntity, line["status"])
	assert.EqualValues(t, 6, line["bytes"])
}

func TestRequestLogging_ServerErrorsLogAtError(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.LevelInfo, &buf)

	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "ERROR", line["level"])
}

func TestRequestLogging_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.LevelInfo, &buf)

	handler := RequestLogging(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.EqualValues(t, http.StatusOK, line["status"])
}
