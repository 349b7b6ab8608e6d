package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/logdoctor/logdoctor-go/internal/safefile"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix starts every environment variable read by Load.
	EnvPrefix = "LOGDOCTOR_"
)

// defaults is loaded before the config file so that every key exists.
const defaults = `
log:
  level: info
  format: text
ingest:
  include: ["*.log", "*.txt", "*.log.gz", "*.txt.gz"]
  max_bytes: 1000000
  max_text_bytes: 10485760
rules:
  files: []
  disabled: []
  concurrency: 1
server:
  addr: "127.0.0.1:8080"
  body_limit: 4194304
  read_timeout: 30s
  shutdown_timeout: 10s
mclogs:
  base_url: "https://api.mclo.gs"
  timeout: 30s
  requests_per_second: 1
`

// DefaultPath returns ~/.config/logdoctor/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "logdoctor", "config.yaml"), nil
}

// Load builds the configuration.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LOGDOCTOR_SERVER_ADDR, LOGDOCTOR_RULES_FILES, ...)
//  2. YAML config file
//  3. Built-in defaults
//
// If configPath is empty the default path is used and may be absent. An
// explicit configPath must exist.
//
// Environment variables map to keys by dropping the prefix and splitting
// on the first underscore:
//
//	LOGDOCTOR_SERVER_ADDR     -> server.addr
//	LOGDOCTOR_MCLOGS_BASE_URL -> mclogs.base_url
//
// List keys take comma separated values:
//
//	LOGDOCTOR_RULES_DISABLED=polymc,bclib
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := configPath != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	content, err := safefile.ReadRegular(configPath, maxConfigFileSize)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file is fine.
	case errors.Is(err, safefile.ErrTooLarge):
		return nil, fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", safefile.SanitizePathError(err))
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"ingest.include": true,
	"rules.files":    true,
	"rules.disabled": true,
}

// envKeyValue maps LOGDOCTOR_SECTION_FIELD_NAME to section.field_name.
func envKeyValue(key, value string) (string, any) {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower, value
	}
	path := section + "." + field

	if listKeys[path] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return path, items
	}
	return path, value
}
