// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

// AppConfig is the service configuration, loaded from an optional YAML file
// with environment variable overrides on top. Provider API credentials are
// environment-only and read by each provider package.
type AppConfig struct {
	// Port is the HTTP listen port.
	Port string `yaml:"port"`

	NATS struct {
		URL           string        `yaml:"url"`
		Timeout       time.Duration `yaml:"timeout"`
		MaxReconnect  int           `yaml:"max_reconnect"`
		ReconnectWait time.Duration `yaml:"reconnect_wait"`
	} `yaml:"nats"`

	Provider struct {
		// Active names the provider the publication currently syncs with.
		Active string `yaml:"active"`

		// MasterListID is the native list bulk resyncs subscribe everyone to.
		MasterListID string `yaml:"master_list_id"`
	} `yaml:"provider"`

	Sync struct {
		// Enabled gates live contact mutations. Disabled environments can
		// still dry-run.
		Enabled bool `yaml:"enabled"`

		// PostCheckoutSignup narrows membership reactivation to updates that
		// carry a deactivation snapshot.
		PostCheckoutSignup bool `yaml:"post_checkout_signup"`
	} `yaml:"sync"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() AppConfig {
	var cfg AppConfig
	cfg.Port = "8080"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.Timeout = 10 * time.Second
	cfg.NATS.MaxReconnect = 3
	cfg.NATS.ReconnectWait = 2 * time.Second
	cfg.Provider.Active = constants.ProviderManual
	cfg.Sync.Enabled = true
	return cfg
}

// loadConfig reads the YAML file when present and applies environment
// overrides.
func loadConfig(path string) (AppConfig, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATS.URL = natsURL
	}
	if active := os.Getenv("ACTIVE_PROVIDER"); active != "" {
		cfg.Provider.Active = active
	}
	if masterList := os.Getenv("MASTER_LIST_ID"); masterList != "" {
		cfg.Provider.MasterListID = masterList
	}
	if enabled := os.Getenv("SYNC_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			cfg.Sync.Enabled = parsed
		}
	}
	if postCheckout := os.Getenv("POST_CHECKOUT_SIGNUP"); postCheckout != "" {
		if parsed, err := strconv.ParseBool(postCheckout); err == nil {
			cfg.Sync.PostCheckoutSignup = parsed
		}
	}

	return cfg, nil
}
