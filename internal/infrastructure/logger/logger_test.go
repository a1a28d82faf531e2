package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"json format", &Config{Level: "info", Format: "json", Output: "stdout"}},
		{"console format", &Config{Level: "debug", Format: "console", Output: "stderr"}},
		{"empty output defaults to stdout", &Config{Level: "info", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Info("test message")
		})
	}
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNew_UnwritableSink(t *testing.T) {
	_, err := New(&Config{Level: "info", Format: "json", Output: "/no-such-dir/sub/app.log"})
	assert.Error(t, err)
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"INFO", zapcore.InfoLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, zapLevel(tt.input))
		})
	}
}

func TestContextStamps(t *testing.T) {
	t.Run("request id round trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", GetRequestID(ctx))
	})

	t.Run("tenant id round trip", func(t *testing.T) {
		ctx := WithTenantID(context.Background(), "tenant-456")
		assert.Equal(t, "tenant-456", GetTenantID(ctx))
	})

	t.Run("missing stamps come back empty", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetTenantID(context.Background()))
	})
}

func traceQuery() (string, int64) {
	return "SELECT 1", 1
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("carries request and tenant stamps", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info)

		ctx := WithTenantID(WithRequestID(context.Background(), "req-1"), "bu-1")
		gl.Trace(ctx, time.Now(), traceQuery, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "query", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "bu-1", fields["tenant_id"])
	})

	t.Run("suppresses record-not-found", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), traceQuery, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("logs query errors", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), traceQuery, errors.New("connection reset"))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "query failed", logs.All()[0].Message)
	})

	t.Run("flags slow queries", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(context.Background(), time.Now().Add(-time.Second), traceQuery, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "slow query", entry.Message)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	})
}
