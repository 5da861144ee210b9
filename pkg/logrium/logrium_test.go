package logrium

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupForTesting(t *testing.T) {
	var buf bytes.Buffer

	SetupForTesting(t, &buf, slog.LevelDebug)

	slog.Debug("debug message", "key1", "value1")
	slog.Info("info message", "key2", "value2")
	slog.Warn("warn message", "key3", "value3")
	slog.Error("error message", "key4", "value4")

	output := buf.String()
	assert.Contains(t, output, "[DEBUG] livy: debug message key1=value1")
	assert.Contains(t, output, "[INFO] livy: info message key2=value2")
	assert.Contains(t, output, "[WARNING] livy: warn message key3=value3")
	assert.Contains(t, output, "[ERROR] livy: error message key4=value4")
	assert.NotContains(t, output, "\x1b[")
}

func TestSetupForTesting_LogLevel(t *testing.T) {
	var buf bytes.Buffer

	SetupForTesting(t, &buf, slog.LevelInfo)

	slog.Debug("debug message")
	slog.Info("info message")
	slog.Warn("warn message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestSetupForTesting_Cleanup(t *testing.T) {
	originalLogger := slog.Default()

	t.Run("with_custom_logger", func(t *testing.T) {
		var buf bytes.Buffer
		SetupForTesting(t, &buf, slog.LevelDebug)

		assert.NotEqual(t, originalLogger, slog.Default())

		slog.Info("test message")
		assert.Contains(t, buf.String(), "test message")
	})

	assert.Equal(t, originalLogger, slog.Default())
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logFile := filepath.Join(t.TempDir(), "batch.log")
	var console bytes.Buffer

	cleanup, path, err := Setup(Options{
		Level:           slog.LevelWarn,
		WithProgressbar: true,
		OutputFile:      true,
		LogFile:         logFile,
		FileLevel:       slog.LevelDebug,
		HideLoggers:     []string{"noisy"},
		Writer:          &console,
	})
	require.NoError(t, err)
	assert.Equal(t, logFile, path)

	slog.Debug("only in file", LoggerKey, "Foo")
	slog.Warn("everywhere", LoggerKey, "Foo")
	slog.Error("file only for hidden logger", LoggerKey, "noisy")
	slog.Log(t.Context(), LevelCritical, "driver died", LoggerKey, "Foo")
	cleanup()

	out := console.String()
	assert.NotContains(t, out, "only in file")
	assert.Contains(t, out, "[WARNING] Foo: everywhere")
	assert.NotContains(t, out, "hidden logger")
	assert.Contains(t, out, "[CRITICAL] Foo: driver died")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no colors")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `level=DEBUG msg="only in file" logger=Foo`)
	assert.Contains(t, content, `level=ERROR msg="file only for hidden logger" logger=noisy`)
	assert.Contains(t, content, `level=CRITICAL msg="driver died" logger=Foo`)
}

func TestSetup_DefaultLogFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Chdir(t.TempDir())

	cleanup, path, err := Setup(Options{OutputFile: true, Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, strings.HasPrefix(filepath.Base(path), "livy-"))
	assert.Equal(t, ".log", filepath.Ext(path))
	assert.FileExists(t, path)
}

func TestSetup_NoFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	cleanup, path, err := Setup(Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	defer cleanup()
	assert.Empty(t, path)
}

func TestDisable(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	Disable()
	assert.False(t, slog.Default().Enabled(t.Context(), LevelCritical))
}

func TestLevelName(t *testing.T) {
	tcs := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.LevelDebug, want: "DEBUG"},
		{level: slog.LevelInfo, want: "INFO"},
		{level: slog.LevelWarn, want: "WARNING"},
		{level: slog.LevelError, want: "ERROR"},
		{level: LevelCritical, want: "CRITICAL"},
		{level: slog.LevelDebug - 4, want: "DEBUG"},
	}

	for _, tc := range tcs {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, LevelName(tc.level))
		})
	}
}
