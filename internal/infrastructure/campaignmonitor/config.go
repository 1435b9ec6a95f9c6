// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package campaignmonitor

import (
	"os"
	"time"
)

const defaultBaseURL = "https://api.createsend.com/api/v3.3"

// Config holds the configuration for the Campaign Monitor client.
type Config struct {
	// APIKey is the account API key, used as the basic auth username.
	APIKey string

	// ClientID scopes list operations to one Campaign Monitor client.
	ClientID string

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

	if apiKey := os.Getenv("CAMPAIGNMONITOR_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}
	if clientID := os.Getenv("CAMPAIGNMONITOR_CLIENT_ID"); clientID != "" {
		config.ClientID = clientID
	}
	if baseURL := os.Getenv("CAMPAIGNMONITOR_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout := os.Getenv("CAMPAIGNMONITOR_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = duration
		}
	}

	return config
}
