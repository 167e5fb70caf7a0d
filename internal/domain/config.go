// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Version string
	Host    string `toml:"host" mapstructure:"host"`
	Port    int    `toml:"port" mapstructure:"port"`
	BaseURL string `toml:"baseUrl" mapstructure:"baseUrl"`

	LogLevel      string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath       string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize    int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	DataDir      string `toml:"dataDir" mapstructure:"dataDir"`
	DatabasePath string `toml:"databasePath" mapstructure:"databasePath"`

	MetricsEnabled bool `toml:"metricsEnabled" mapstructure:"metricsEnabled"`

	// Metadata resolver (external identity lookup).
	MetadataAPIURL         string `toml:"metadataApiUrl" mapstructure:"metadataApiUrl"`
	MetadataAPIKey         string `toml:"metadataApiKey" mapstructure:"metadataApiKey"`
	MetadataTimeoutSeconds int    `toml:"metadataTimeoutSeconds" mapstructure:"metadataTimeoutSeconds"`
	MetadataCacheTTLHours  int    `toml:"metadataCacheTtlHours" mapstructure:"metadataCacheTtlHours"`
	MetadataCacheSize      int    `toml:"metadataCacheSize" mapstructure:"metadataCacheSize"`

	// Streaming.
	StatCacheTTLMinutes int `toml:"statCacheTtlMinutes" mapstructure:"statCacheTtlMinutes"`
	StatCacheSize       int `toml:"statCacheSize" mapstructure:"statCacheSize"`

	// Watch folders declared in the config file are synced into the store
	// at startup. Admin CRUD beyond that lives outside this service.
	WatchFolders []WatchFolderConfig `toml:"watchFolders" mapstructure:"watchFolders"`
}

// WatchFolderConfig is a watch folder declaration from the config file.
type WatchFolderConfig struct {
	Path              string   `toml:"path" mapstructure:"path"`
	Name              string   `toml:"name" mapstructure:"name"`
	Kind              string   `toml:"kind" mapstructure:"kind"` // "local" or "network"
	Enabled           bool     `toml:"enabled" mapstructure:"enabled"`
	Schedule          string   `toml:"schedule" mapstructure:"schedule"`
	Extensions        []string `toml:"extensions" mapstructure:"extensions"`
	MinVideoSizeMB    int64    `toml:"minVideoSizeMb" mapstructure:"minVideoSizeMb"`
	ExcludeExtensions []string `toml:"excludeExtensions" mapstructure:"excludeExtensions"`
	Username          string   `toml:"username" mapstructure:"username"`
	Password          string   `toml:"password" mapstructure:"password"`
}

// Validate checks the configuration for values we cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	for _, wf := range c.WatchFolders {
		if strings.TrimSpace(wf.Path) == "" {
			return errors.New("watch folder path is required")
		}
		switch wf.Kind {
		case "", "local", "network":
		default:
			return fmt.Errorf("invalid watch folder kind %q", wf.Kind)
		}
	}

	return nil
}
