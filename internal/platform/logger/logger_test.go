package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

// Init と GinMiddleware はデフォルトロガーを差し替えるため並列実行しない。
func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Init("worker", "debug", "json", &buf)
	require.NotNil(t, l)

	slog.Debug("scored", "symbol", "AAPL")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "worker", line["service"])
	assert.Equal(t, "AAPL", line["symbol"])
	assert.Equal(t, "DEBUG", line["level"])
}

func TestInit_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("server", "warn", "text", &buf)

	slog.Info("hidden")
	slog.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "service=server")
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	Init("server", "info", "json", &buf)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c.Request.Context()))
	})

	t.Run("success: generates a request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
		assert.True(t, strings.Contains(buf.String(), id))
	})

	t.Run("success: propagates client request id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "client-42")
		r.ServeHTTP(w, req)

		assert.Equal(t, "client-42", w.Header().Get(HeaderRequestID))
		assert.Equal(t, "client-42", w.Body.String())
	})
}
