package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupRenamesKeys(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := Setup(Options{Service: " editionhouse ", Env: "test", Output: &buf, Level: slog.LevelDebug})
	logger.Debug("snapshot exported", "bids", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "DEBUG", line["severity"])
	require.Equal(t, "snapshot exported", line["message"])
	require.Equal(t, "editionhouse", line["service"])
	require.Equal(t, "test", line["env"])
	require.Contains(t, line, "timestamp")
	require.EqualValues(t, 3, line["bids"])
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := Setup(Options{Service: "editionhouse", Output: &buf})
	logger.Debug("hidden")
	require.Zero(t, buf.Len())
	logger.Info("shown")
	require.NotZero(t, buf.Len())
	require.NotContains(t, buf.String(), "\"env\"")
}

func TestSetupWritesRotatedFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "logs", "editionhouse.log")
	logger := Setup(Options{Service: "editionhouse", File: path, MaxSizeMB: 1})
	logger.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "written to file")
}

func TestSetupConsoleFormat(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := Setup(Options{Service: "editionhouse", Format: FormatConsole, Output: &buf})
	logger.Info("console line", "bids", 2)

	require.Contains(t, buf.String(), "console line")
	require.NotEqual(t, byte('{'), buf.Bytes()[0])
}
