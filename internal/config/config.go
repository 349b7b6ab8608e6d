// Package config loads logdoctor's configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is the full configuration tree.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Ingest IngestConfig `koanf:"ingest"`
	Rules  RulesConfig  `koanf:"rules"`
	Server ServerConfig `koanf:"server"`
	MCLogs MCLogsConfig `koanf:"mclogs"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// IngestConfig controls which inputs are accepted and how large they may be.
type IngestConfig struct {
	Include      []string `koanf:"include"`
	MaxBytes     int64    `koanf:"max_bytes"`
	MaxTextBytes int64    `koanf:"max_text_bytes"`
}

// RulesConfig selects the rule catalogue.
type RulesConfig struct {
	Files       []string `koanf:"files"` // YAML rule files or globs
	Disabled    []string `koanf:"disabled"`
	Concurrency int      `koanf:"concurrency"`
}

// ServerConfig controls `logdoctor serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	BodyLimit       int64         `koanf:"body_limit"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MCLogsConfig configures the paste service client.
type MCLogsConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// SlogLevel parses Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks values that have no usable zero value.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format)
	}

	if c.Ingest.MaxBytes <= 0 {
		return fmt.Errorf("ingest.max_bytes: must be positive, got %d", c.Ingest.MaxBytes)
	}
	if c.Ingest.MaxTextBytes < c.Ingest.MaxBytes {
		return fmt.Errorf("ingest.max_text_bytes: must be at least ingest.max_bytes (%d), got %d",
			c.Ingest.MaxBytes, c.Ingest.MaxTextBytes)
	}

	if c.Rules.Concurrency < 1 {
		return fmt.Errorf("rules.concurrency: must be at least 1, got %d", c.Rules.Concurrency)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr: required")
	}
	if c.Server.BodyLimit <= 0 {
		return fmt.Errorf("server.body_limit: must be positive, got %d", c.Server.BodyLimit)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout: must be positive, got %v", c.Server.ShutdownTimeout)
	}

	if c.MCLogs.RequestsPerSecond <= 0 {
		return fmt.Errorf("mclogs.requests_per_second: must be positive, got %v", c.MCLogs.RequestsPerSecond)
	}
	return nil
}
