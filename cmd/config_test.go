package cmd

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "pcmark", configBaseName)
	assert.Equal(t, "pcmark.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", runParallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "structure.json", defaultStructure)
	assert.Equal(t, ".prettierrc", defaultFormatConfig)
	assert.Equal(t, 0, defaultRunParallel)
	assert.Equal(t, "PCMARK", envPrefix)
	assert.Equal(t, []string{".js", ".jsx"}, defaultExtensions)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestOutputFor(t *testing.T) {
	assert.Equal(t, "dist", outputFor("src", "dist"))

	abs, err := filepath.Abs("project")
	assert.NoError(t, err)
	assert.Equal(t, abs+"_new", outputFor("project", ""))
	assert.Equal(t, abs+"_new", outputFor("project", "  "))
}

func TestFormatTimeout(t *testing.T) {
	original := viper.Get(formatTimeoutKey)
	t.Cleanup(func() { viper.Set(formatTimeoutKey, original) })

	viper.Set(formatTimeoutKey, 5)
	assert.Equal(t, 5*time.Second, formatTimeout())

	viper.Set(formatTimeoutKey, 0)
	assert.Equal(t, defaultFormatTimeout, formatTimeout())
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger_WritesToFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "pcmark.log")
	configureLogger(logPath, true)

	assert.NotNil(t, globalLogger)
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))

	slog.Debug("hello")
	assert.FileExists(t, logPath)
}
