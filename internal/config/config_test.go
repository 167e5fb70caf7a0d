// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoadConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configPath := writeConfig(t, `
host = "127.0.0.1"
port = 9090
logLevel = "DEBUG"

[[watchFolders]]
path = "/mnt/movies"
name = "Movies"
kind = "local"
enabled = true
schedule = "0 3 * * *"
minVideoSizeMb = 50
`)

	cfg, err := New(configPath, "test")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Config.Host)
	assert.Equal(t, 9090, cfg.Config.Port)
	assert.Equal(t, "DEBUG", cfg.Config.LogLevel)

	require.Len(t, cfg.Config.WatchFolders, 1)
	wf := cfg.Config.WatchFolders[0]
	assert.Equal(t, "/mnt/movies", wf.Path)
	assert.Equal(t, "local", wf.Kind)
	assert.Equal(t, "0 3 * * *", wf.Schedule)
	assert.EqualValues(t, 50, wf.MinVideoSizeMB)
}

func TestDatabasePathNextToConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configPath := writeConfig(t, `
host = "localhost"
port = 8080
`)

	cfg, err := New(configPath, "test")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "vidra.db"), cfg.Config.DatabasePath)
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configPath := writeConfig(t, `
host = "localhost"
port = 8080
`)

	t.Setenv("VIDRA__LOG_LEVEL", "TRACE")

	cfg, err := New(configPath, "test")
	require.NoError(t, err)

	assert.Equal(t, "TRACE", cfg.Config.LogLevel)
}

func TestInvalidWatchFolderKindRejected(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configPath := writeConfig(t, `
host = "localhost"
port = 8080

[[watchFolders]]
path = "/data"
kind = "ftp"
`)

	_, err := New(configPath, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch folder kind")
}
