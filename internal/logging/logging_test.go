package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "revcompare.log")
	logger := NewLoggerWithConfig(LogConfig{
		Level:    "debug",
		File:     true,
		FilePath: path,
		MaxSize:  1,
	})

	runLogger := WithRunID(WithStage(logger, "fetch"), "run-1")
	runLogger.Debug().Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"fetch"`)
	assert.Contains(t, string(data), `"run_id":"run-1"`)
}

func TestNewLoggerWithConfig_Level(t *testing.T) {
	logger := NewLoggerWithConfig(LogConfig{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger = NewLoggerWithConfig(LogConfig{Level: "bogus"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestValidLevel(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, ValidLevel(l), l)
	}
	assert.False(t, ValidLevel("trace"))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, FromContext(context.Background()).GetLevel())

	logger := zerolog.New(nil).Level(zerolog.ErrorLevel)
	ctx := WithLogger(context.Background(), logger)
	assert.Equal(t, zerolog.ErrorLevel, FromContext(ctx).GetLevel())
}
