// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"palaver.yaml",
	"palaver.yml",
	"/etc/palaver/palaver.yaml",
	"/etc/palaver/palaver.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "PALAVER_CONFIG"

// envPrefix is stripped from environment variables before mapping.
const envPrefix = "PALAVER_"

// Default returns a Config with all default values applied.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8000",
			Timeout:        30 * time.Second,
			PageSize:       20,
			MaxRetries:     5,
			RetryBaseDelay: time.Second,
			RateLimit:      10,
			RateBurst:      20,
		},
		Poll: PollConfig{
			DialogInterval: 4 * time.Second,
			FeedInterval:   30 * time.Second,
			SeenMessageTTL: 5 * time.Minute,
		},
		Store: StoreConfig{
			Path:     "/data/palaver",
			InMemory: false,
		},
		Status: StatusConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    9173,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// PALAVER_* environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// PALAVER_API_BASE_URL -> api.base_url, PALAVER_POLL_DIALOG_INTERVAL ->
	// poll.dialog_interval, and so on.
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps an environment variable name to a koanf config path. The
// section is the first underscore-delimited token; underscores in field names
// are preserved, so the mapping for compound fields is explicit.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	mappings := map[string]string{
		"api_base_url":         "api.base_url",
		"api_timeout":          "api.timeout",
		"api_page_size":        "api.page_size",
		"api_max_retries":      "api.max_retries",
		"api_retry_base_delay": "api.retry_base_delay",
		"api_rate_limit":       "api.rate_limit",
		"api_rate_burst":       "api.rate_burst",

		"poll_dialog_interval":  "poll.dialog_interval",
		"poll_feed_interval":    "poll.feed_interval",
		"poll_seen_message_ttl": "poll.seen_message_ttl",

		"store_path":      "store.path",
		"store_in_memory": "store.in_memory",

		"status_enabled": "status.enabled",
		"status_host":    "status.host",
		"status_port":    "status.port",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := mappings[key]; ok {
		return mapped
	}

	// Fallback: first token is the section, the rest is the field.
	if idx := strings.Index(key, "_"); idx > 0 {
		return key[:idx] + "." + key[idx+1:]
	}
	return key
}
