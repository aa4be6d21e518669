package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()

	t.Run("relative paths join the base directory", func(t *testing.T) {
		paths, err := ResolvePaths(Default(), base)
		require.NoError(t, err)

		assert.Equal(t, base, paths.BaseDir)
		assert.Equal(t, filepath.Join(base, "data", "inbox"), paths.InboxDir)
		assert.Equal(t, filepath.Join(base, "data", "outbox"), paths.OutboxDir)
		assert.Equal(t, filepath.Join(base, "logs", "ghg.log"), paths.LogFile)
		assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	})

	t.Run("absolute paths are kept", func(t *testing.T) {
		cfg := Default()
		abs := filepath.Join(t.TempDir(), "elsewhere")
		cfg.Watch.InboxDir = abs

		paths, err := ResolvePaths(cfg, base)
		require.NoError(t, err)
		assert.Equal(t, abs, paths.InboxDir)
	})

	t.Run("empty base uses working directory", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		paths, err := ResolvePaths(Default(), "")
		require.NoError(t, err)
		assert.Equal(t, wd, paths.BaseDir)
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths, err := ResolvePaths(Default(), t.TempDir())
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.InboxDir, paths.OutboxDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent
	require.NoError(t, paths.EnsureDirectories())
}

func TestPaths_OutboxPath(t *testing.T) {
	paths := &Paths{OutboxDir: "/out"}
	assert.Equal(t, filepath.Join("/out", "report.xlsx"), paths.OutboxPath("report.xlsx"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
