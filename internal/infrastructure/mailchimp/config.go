// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package mailchimp

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the Mailchimp client
type Config struct {
	// APIKey is the Mailchimp API key; its suffix after the last dash names
	// the datacenter the account lives on
	APIKey string

	// BaseURL overrides the datacenter-derived API base URL (for testing)
	BaseURL string

	// Timeout is the HTTP client timeout for requests
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the delay between retry attempts
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if apiKey := os.Getenv("MAILCHIMP_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}

	if baseURL := os.Getenv("MAILCHIMP_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}

	if timeoutStr := os.Getenv("MAILCHIMP_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			config.Timeout = timeout
		}
	}

	if retriesStr := os.Getenv("MAILCHIMP_MAX_RETRIES"); retriesStr != "" {
		if retries, err := strconv.Atoi(retriesStr); err == nil {
			config.MaxRetries = retries
		}
	}

	return config
}
