// Package config manages the Sentinel Console daemon configuration. It
// handles loading and validating settings from YAML files and provides
// defaults for every setting.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration
type Config struct {
	Server struct {
		Port            int      `yaml:"port"`
		Host            string   `yaml:"host"`
		AllowedOrigins  []string `yaml:"allowedOrigins"`
		ReadTimeout     int      `yaml:"readTimeout"`
		WriteTimeout    int      `yaml:"writeTimeout"`
		ShutdownTimeout int      `yaml:"shutdownTimeout"`
	} `yaml:"server"`

	Database struct {
		Path              string `yaml:"path"`
		BackupDir         string `yaml:"backupDir"`
		BackupFrequency   string `yaml:"backupFrequency"`
		OptimizeFrequency string `yaml:"optimizeFrequency"`
	} `yaml:"database"`

	Audit struct {
		Enabled         bool   `yaml:"enabled"`
		RetentionDays   int    `yaml:"retentionDays"`
		CleanupInterval string `yaml:"cleanupInterval"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads the configuration from a YAML file, applying defaults for any
// setting the file omits. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	for _, dir := range []string{cfg.Database.BackupDir, filepath.Dir(cfg.Database.Path)} {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info().Str("path", path).Msg("Configuration loaded successfully")
	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("invalid audit retention: %d days", c.Audit.RetentionDays)
	}

	if c.Audit.CleanupInterval != "" {
		if _, err := time.ParseDuration(c.Audit.CleanupInterval); err != nil {
			return fmt.Errorf("invalid audit cleanup interval: %s", c.Audit.CleanupInterval)
		}
	}

	if c.Database.BackupFrequency != "" {
		if _, err := time.ParseDuration(c.Database.BackupFrequency); err != nil {
			return fmt.Errorf("invalid backup frequency: %s", c.Database.BackupFrequency)
		}
	}

	if c.Database.OptimizeFrequency != "" {
		if _, err := time.ParseDuration(c.Database.OptimizeFrequency); err != nil {
			return fmt.Errorf("invalid optimize frequency: %s", c.Database.OptimizeFrequency)
		}
	}

	return nil
}

// AuditCleanupInterval returns the audit cleanup interval as a parsed duration
func (c *Config) AuditCleanupInterval() (time.Duration, error) {
	return time.ParseDuration(c.Audit.CleanupInterval)
}

// BackupFrequency returns the database backup frequency as a parsed duration
func (c *Config) BackupFrequency() (time.Duration, error) {
	return time.ParseDuration(c.Database.BackupFrequency)
}

// OptimizeFrequency returns the database optimize frequency as a parsed duration
func (c *Config) OptimizeFrequency() (time.Duration, error) {
	return time.ParseDuration(c.Database.OptimizeFrequency)
}

// setDefaults initializes the configuration with default values
func setDefaults(c *Config) {
	c.Server.Port = 8080
	c.Server.Host = "127.0.0.1"
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.ReadTimeout = 30
	c.Server.WriteTimeout = 30
	c.Server.ShutdownTimeout = 10

	c.Database.Path = "./data/sentinel.db"
	c.Database.BackupDir = "./data/backups"
	c.Database.BackupFrequency = "168h" // 1 week
	c.Database.OptimizeFrequency = "24h"

	c.Audit.Enabled = true
	c.Audit.RetentionDays = 90
	c.Audit.CleanupInterval = "1h"

	c.Metrics.Enabled = true

	c.Logging.Level = "info"
	c.Logging.Format = "json"
}
