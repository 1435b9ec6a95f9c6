// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package letterhead

import (
	"os"
	"time"
)

const defaultBaseURL = "https://api.tryletterhead.com/v1"

// Config holds the configuration for the Letterhead client.
type Config struct {
	// APIKey is the partner API key, sent as a bearer token.
	APIKey string

	// BaseURL overrides the API base URL, used in tests.
	BaseURL string

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
		BaseURL:    defaultBaseURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables.
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if apiKey := os.Getenv("LETTERHEAD_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}
	if baseURL := os.Getenv("LETTERHEAD_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout := os.Getenv("LETTERHEAD_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = duration
		}
	}

	return config
}
