// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package woocommerce

import (
	"os"
	"time"
)

// Config holds the configuration for the WooCommerce REST client.
type Config struct {
	// BaseURL is the store's REST root, e.g.
	// https://example.com/wp-json/wc/v3.
	BaseURL string

	// ConsumerKey and ConsumerSecret are the store API credentials, sent as
	// basic auth.
	ConsumerKey    string
	ConsumerSecret string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	MaxRetries int

	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables.
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if baseURL := os.Getenv("WOOCOMMERCE_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	if key := os.Getenv("WOOCOMMERCE_CONSUMER_KEY"); key != "" {
		config.ConsumerKey = key
	}
	if secret := os.Getenv("WOOCOMMERCE_CONSUMER_SECRET"); secret != "" {
		config.ConsumerSecret = secret
	}
	if timeout := os.Getenv("WOOCOMMERCE_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = duration
		}
	}

	return config
}
