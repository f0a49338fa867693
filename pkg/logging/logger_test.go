package logging_test

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	logger := logging.Default()
	require.NotNil(t, logger)
	assert.Same(t, logger, logging.Default())
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithBatch(ctx, "legacy-flat")
	ctx = logging.WithKind(ctx, "category")
	ctx = logging.WithOperation(ctx, "reconcile")

	logging.FromContext(ctx).Info().Msg("indexed business keys")

	testLogger.AssertContains(t, `"batch":"legacy-flat"`)
	testLogger.AssertContains(t, `"kind":"category"`)
	testLogger.AssertContains(t, `"operation":"reconcile"`)
	testLogger.AssertContains(t, "indexed business keys")
}

func TestFromContextDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is tolerated on purpose
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	tmpfile, err := os.CreateTemp(t.TempDir(), "log-*.txt")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "debug",
		Format: "json",
		Output: tmpfile.Name(),
		Fields: map[string]any{"service": "wircatalog"},
	})
	logger.Info().Msg("test message")

	content, err := os.ReadFile(tmpfile.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "test message")
	assert.Contains(t, string(content), `"service":"wircatalog"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}
