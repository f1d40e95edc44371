package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogSolve(t *testing.T) {
	ctx := context.Background()

	t.Run("skipped pivots warn", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewTextLogger(&buf, slog.LevelWarn)
		l.LogSolve(ctx, 3, 1, 96, nil)
		assert.Contains(t, buf.String(), "near-singular")
		assert.Contains(t, buf.String(), "skipped=1")
	})

	t.Run("success is debug only", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewTextLogger(&buf, slog.LevelInfo)
		l.LogSolve(ctx, 3, 0, 96, nil)
		assert.Empty(t, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewJSONLogger(&buf, slog.LevelDebug)
		l.LogSolve(ctx, 3, 0, 96, errors.New("boom"))
		require.NotEmpty(t, buf.String())
		assert.Contains(t, buf.String(), `"error":"boom"`)
	})
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.WithNode(3).WithCircuit("x").LogAddDevice(context.Background(), "R", 1, 2, nil)
}
