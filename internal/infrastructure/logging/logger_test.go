package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/spacestation-go/internal/infrastructure/config"
)

func TestNewLogger_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.log")

	logger, cleanup, err := NewLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("bay released")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "bay released", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLogger_SetLevelAppliesToExistingLoggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.log")

	logger, cleanup, err := NewLogger(config.LoggingConfig{
		Level:    "warn",
		Format:   "text",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("before")
	SetLevel(zapcore.DebugLevel)
	logger.Debug("after")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before")
	assert.Contains(t, string(data), "after")
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, _, err := NewLogger(config.LoggingConfig{Level: "chatty", Format: "text", Output: "stdout"})
	assert.Error(t, err)
}
