package simplelogger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLog_WritesAndAppends(t *testing.T) {
	t.Setenv(EnvLogFile, filepath.Join(t.TempDir(), "textmerge.log"))

	Log("hello %s", "world")
	Log("count %d\n", 123)
	Logger().Info("merged", zap.Int("conflicts", 2))

	b, err := os.ReadFile(os.Getenv(EnvLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "hello world")
	assert.Contains(t, lines[1], "count 123")
	assert.Contains(t, lines[2], "merged")
	assert.Contains(t, lines[2], `"conflicts": 2`)
}

func TestLog_FollowsEnvChanges(t *testing.T) {
	dir := t.TempDir()
	first, second := filepath.Join(dir, "first.log"), filepath.Join(dir, "second.log")

	t.Setenv(EnvLogFile, first)
	Log("one")
	t.Setenv(EnvLogFile, second)
	Log("two")

	b, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(b), "one")
	assert.NotContains(t, string(b), "two")

	b, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(b), "two")
}

func TestLog_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvLogFile, "")
	Log("should not %s", "panic")
	assert.False(t, Logger().Core().Enabled(zap.ErrorLevel))
}

func TestLog_NoOpWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogFile, dir)

	Log("ignored %d", 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
