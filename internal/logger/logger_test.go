package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"healthbadge/internal/models"
	"healthbadge/internal/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVersion = version.Info{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2026-02-21T10:00:00Z"}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  slog.Level
		expectErr bool
	}{
		{name: "debug", input: "debug", expected: slog.LevelDebug},
		{name: "info", input: "info", expected: slog.LevelInfo},
		{name: "warn", input: "warn", expected: slog.LevelWarn},
		{name: "error", input: "error", expected: slog.LevelError},
		{name: "uppercase", input: "DEBUG", expected: slog.LevelDebug},
		{name: "invalid", input: "verbose", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestSetupStdout(t *testing.T) {
	log, closer, err := Setup(models.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, testVersion)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.NotNil(t, log)
}

func TestSetupStderrText(t *testing.T) {
	log, closer, err := Setup(models.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}, testVersion)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.NotNil(t, log)
}

func TestSetupFileOutputCarriesVersion(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "healthbadge.log")

	log, closer, err := Setup(models.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}, testVersion)
	require.NoError(t, err)
	require.NotNil(t, closer)

	log.Info("health check served", "environment", "DEV")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "health check served", record["msg"])
	assert.Equal(t, "DEV", record["environment"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "abc1234", record["git_commit"])
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.LoggingConfig
	}{
		{name: "invalid level", cfg: models.LoggingConfig{Level: "invalid", Format: "json", Output: "stdout"}},
		{name: "file without path", cfg: models.LoggingConfig{Level: "info", Format: "json", Output: "file"}},
		{name: "unwritable file", cfg: models.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: "/nonexistent/dir/x.log"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Setup(tt.cfg, testVersion)
			assert.Error(t, err)
		})
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", slog.LevelWarn)

	log.Info("should not appear")
	log.Warn("should appear")

	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}
