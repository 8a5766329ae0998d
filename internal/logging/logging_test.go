package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]slog.Level{
		"debug":  slog.LevelDebug,
		"":       slog.LevelInfo,
		" INFO ": slog.LevelInfo,
		"warn":   slog.LevelWarn,
		"error":  slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("bogus")
	assert.ErrorContains(t, err, `unknown log level "bogus"`)
}

func TestNew_LevelFiltersConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Console: &buf, Level: "warn"})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("skipped")
	logger.Warn("summary unavailable")
	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "msg=\"summary unavailable\"")
}

func TestNew_BadLevel(t *testing.T) {
	t.Parallel()
	_, closeFn, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.NoError(t, closeFn())
}

func TestNew_ConsoleLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Console: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("shown", "path", "/api/pets")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "path=/api/pets")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closeFn, err := New(Config{Console: &buf, Verbose: true, Level: "error"})
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("detail")
	assert.Contains(t, buf.String(), "msg=detail")
}

func TestNew_LogFileReceivesDebugJSON(t *testing.T) {
	t.Parallel()
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")
	logger, closeFn, err := New(Config{Console: &console, LogFile: path})
	require.NoError(t, err)

	logger.Debug("operation inserted", "path", "api/pets")
	require.NoError(t, closeFn())

	assert.Empty(t, console.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "operation inserted", rec["msg"])
	assert.Equal(t, "api/pets", rec["path"])
	assert.Equal(t, "DEBUG", rec["level"])
}

func TestNew_BadLogFile(t *testing.T) {
	t.Parallel()
	_, closeFn, err := New(Config{LogFile: filepath.Join(t.TempDir(), "missing", "run.log")})
	require.Error(t, err)
	assert.NoError(t, closeFn())
}
