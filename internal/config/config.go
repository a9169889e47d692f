// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

// Package config defines Palaver's configuration structure and loading.
//
// Configuration is loaded via Koanf v2 with layered sources, highest priority
// last: built-in defaults, an optional YAML config file, then PALAVER_*
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the client and sync daemon.
type Config struct {
	API     APIConfig     `koanf:"api"`
	Poll    PollConfig    `koanf:"poll"`
	Store   StoreConfig   `koanf:"store"`
	Status  StatusConfig  `koanf:"status"`
	Logging LoggingConfig `koanf:"logging"`
}

// APIConfig configures the outbound REST client.
type APIConfig struct {
	// BaseURL is the backend origin, e.g. "https://social.example.com".
	// The client appends /api/... paths to it.
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// PageSize is the page_size sent on paginated message requests.
	PageSize int `koanf:"page_size"`

	// MaxRetries and RetryBaseDelay govern HTTP 429 backoff.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RateLimit is the sustained outbound request rate per second;
	// RateBurst is the burst allowance. Zero disables client-side limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// PollConfig configures the recurring pollers.
type PollConfig struct {
	// DialogInterval is the silent re-poll interval for the active dialog
	// and the inbox listing. The original client polled every 4 seconds.
	DialogInterval time.Duration `koanf:"dialog_interval"`

	// FeedInterval is how often the background feed refresher reloads the
	// first page of the feed.
	FeedInterval time.Duration `koanf:"feed_interval"`

	// SeenMessageTTL bounds how long a message id is remembered for
	// new-message deduplication.
	SeenMessageTTL time.Duration `koanf:"seen_message_ttl"`
}

// StoreConfig configures the local BadgerDB store holding the auth token.
type StoreConfig struct {
	Path string `koanf:"path"`

	// InMemory runs Badger without touching disk. Tests only.
	InMemory bool `koanf:"in_memory"`
}

// StatusConfig configures the operational status/metrics HTTP endpoint.
type StatusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would misbehave at
// runtime rather than fail fast.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", c.API.Timeout)
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	if c.Poll.DialogInterval <= 0 {
		return fmt.Errorf("poll.dialog_interval must be positive, got %v", c.Poll.DialogInterval)
	}
	if c.Poll.FeedInterval <= 0 {
		return fmt.Errorf("poll.feed_interval must be positive, got %v", c.Poll.FeedInterval)
	}
	if c.Status.Enabled && (c.Status.Port <= 0 || c.Status.Port > 65535) {
		return fmt.Errorf("status.port %d out of range", c.Status.Port)
	}
	return nil
}
