package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/filecache/pkg/logger"
)

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(LogConfig{Level: "debug"}))
	require.NoError(t, ConfigureLogging(LogConfig{}))
}

func TestConfigureLoggingWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "filecache.log")
	require.NoError(t, ConfigureLogging(LogConfig{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 1}))
	t.Cleanup(func() {
		_ = logger.Init("info")
	})

	logger.Info("configured")
	_ = logger.Sync()

	require.FileExists(t, path)
}
