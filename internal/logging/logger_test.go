package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("whatever"))
}

func TestNewFileWritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resonance.log")
	logger, err := NewFile("info", path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("judgment saved")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "judgment saved")
	assert.NotContains(t, string(data), "hidden")
}
