package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ytdl-ui/ytdl/internal/log"

	"github.com/stretchr/testify/require"
)

func TestContextAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.New(&buf, false)

	ctx := log.JobAttrs(t.Context(), "42", "https://example.com/v")
	ctx = log.ContextAttrs(ctx, slog.String("cmd", "download"))
	logger.DebugContext(ctx, "hidden")
	logger.With("extra", 1).InfoContext(ctx, "started")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "started", got["msg"])
	require.Equal(t, "42", got["job_id"])
	require.Equal(t, "https://example.com/v", got["url"])
	require.Equal(t, "download", got["cmd"])
	require.Equal(t, float64(1), got["extra"])
}

func TestContextAttrs_NoAliasing(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.New(&buf, true)

	base := log.ContextAttrs(t.Context(), slog.String("a", "1"))
	left := log.ContextAttrs(base, slog.String("side", "left"))
	_ = log.ContextAttrs(base, slog.String("side", "right"))

	logger.DebugContext(left, "msg")
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "left", got["side"])
}
