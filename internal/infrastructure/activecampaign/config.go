// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package activecampaign

import (
	"os"
	"time"
)

// Config holds the configuration for the ActiveCampaign client.
type Config struct {
	// APIURL is the account-specific API host, e.g.
	// https://youraccount.api-us1.com.
	APIURL string

	// APIKey is the account API token.
	APIKey string

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

	if apiURL := os.Getenv("ACTIVECAMPAIGN_API_URL"); apiURL != "" {
		config.APIURL = apiURL
	}
	if apiKey := os.Getenv("ACTIVECAMPAIGN_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}
	if timeout := os.Getenv("ACTIVECAMPAIGN_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = duration
		}
	}

	return config
}
