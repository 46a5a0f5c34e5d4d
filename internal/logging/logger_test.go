package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestZapLogger_FormatsAndFiltersByLevel(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("hidden %d", 1)
	logger.Info("processed %d line(s)", 3)
	logger.Warn("duplicate %s", "0xabc")
	logger.Error("failed: %v", "boom")

	entries := observed.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "processed 3 line(s)", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "failed: boom", entries[2].Message)
}

func TestZapLogger_With(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("file", "a.txt")

	logger.Info("done")

	entries := observed.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].ContextMap()["file"])
}

func TestNilLoggerFallsBackToNop(t *testing.T) {
	var logger *ZapLogger

	assert.NotPanics(t, func() {
		logger.Info("message")
		logger.Close()
	})
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := New("debug", path)
	require.NoError(t, err)

	logger.Debug("hello %s", "file")
	logger.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "hello file", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_RejectsInvalidLevel(t *testing.T) {
	_, err := New("verbose", "")
	assert.Error(t, err)
}
