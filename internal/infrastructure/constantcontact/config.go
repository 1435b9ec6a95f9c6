// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constantcontact

import (
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.cc.email/v3"
	defaultAuthURL = "https://authz.constantcontact.com/oauth2/default/v1/token"
)

// Config holds the configuration for the Constant Contact client.
type Config struct {
	// ClientID and ClientSecret identify the OAuth application.
	ClientID     string
	ClientSecret string

	// RefreshToken is exchanged for short-lived access tokens.
	RefreshToken string

	// BaseURL overrides the API base URL, used in tests.
	BaseURL string

	// AuthURL overrides the OAuth token endpoint, used in tests.
	AuthURL string

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
		AuthURL:    defaultAuthURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables.
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if clientID := os.Getenv("CONSTANTCONTACT_CLIENT_ID"); clientID != "" {
		config.ClientID = clientID
	}
	if clientSecret := os.Getenv("CONSTANTCONTACT_CLIENT_SECRET"); clientSecret != "" {
		config.ClientSecret = clientSecret
	}
	if refreshToken := os.Getenv("CONSTANTCONTACT_REFRESH_TOKEN"); refreshToken != "" {
		config.RefreshToken = refreshToken
	}
	if baseURL := os.Getenv("CONSTANTCONTACT_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	if authURL := os.Getenv("CONSTANTCONTACT_AUTH_URL"); authURL != "" {
		config.AuthURL = authURL
	}
	if timeout := os.Getenv("CONSTANTCONTACT_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = duration
		}
	}

	return config
}
