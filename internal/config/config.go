// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the application configuration from a TOML file with
// VIDRA__ environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/vidra-media/vidra/internal/domain"
)

const envPrefix = "VIDRA__"

// AppConfig wraps the loaded configuration and its source location.
type AppConfig struct {
	Config     *domain.Config
	configPath string
}

// New loads configuration from configPath, or from the default location when
// configPath is empty. A default config file is written on first run.
func New(configPath, version string) (*AppConfig, error) {
	c := &AppConfig{}
	c.defaults(version)

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	if err := c.Config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func (c *AppConfig) defaults(version string) {
	c.Config = &domain.Config{
		Version:                version,
		Host:                   "0.0.0.0",
		Port:                   7575,
		LogLevel:               "INFO",
		LogMaxSize:             50,
		LogMaxBackups:          3,
		MetadataTimeoutSeconds: 10,
		MetadataCacheTTLHours:  24,
		MetadataCacheSize:      5000,
		StatCacheTTLMinutes:    5,
		StatCacheSize:          500,
	}
}

func (c *AppConfig) load(configPath string) error {
	viper.SetConfigType("toml")

	if configPath != "" {
		if filepath.Ext(configPath) == "" {
			configPath = filepath.Join(configPath, "config.toml")
		}
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/vidra")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			log.Debug().Msg("config: no config file found, using defaults")
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	c.configPath = viper.ConfigFileUsed()

	c.applyEnvOverrides()

	if err := viper.Unmarshal(c.Config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Config.DataDir == "" {
		c.Config.DataDir = defaultDataDir(c.configPath)
	}
	if c.Config.DatabasePath == "" {
		c.Config.DatabasePath = filepath.Join(c.Config.DataDir, "vidra.db")
	}

	return nil
}

// applyEnvOverrides maps VIDRA__SOME_KEY environment variables onto viper keys.
func (c *AppConfig) applyEnvOverrides() {
	for _, pair := range os.Environ() {
		if !strings.HasPrefix(pair, envPrefix) {
			continue
		}

		key, value, ok := strings.Cut(strings.TrimPrefix(pair, envPrefix), "=")
		if !ok || value == "" {
			continue
		}

		viper.Set(strings.ReplaceAll(strings.ToLower(key), "_", ""), value)
	}
}

func defaultDataDir(configPath string) string {
	if configPath != "" {
		return filepath.Dir(configPath)
	}
	return "."
}

// ConfigPath returns the path of the loaded config file, if any.
func (c *AppConfig) ConfigPath() string {
	return c.configPath
}
