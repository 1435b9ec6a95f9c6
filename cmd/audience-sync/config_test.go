// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "manual", cfg.Provider.Active)
	assert.True(t, cfg.Sync.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
nats:
  url: nats://nats.internal:4222
provider:
  active: mailchimp
  master_list_id: MASTER
sync:
  enabled: false
  post_checkout_signup: true
`), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "nats://nats.internal:4222", cfg.NATS.URL)
	assert.Equal(t, "mailchimp", cfg.Provider.Active)
	assert.Equal(t, "MASTER", cfg.Provider.MasterListID)
	assert.False(t, cfg.Sync.Enabled)
	assert.True(t, cfg.Sync.PostCheckoutSignup)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("ACTIVE_PROVIDER", "letterhead")
	t.Setenv("SYNC_ENABLED", "false")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "letterhead", cfg.Provider.Active)
	assert.False(t, cfg.Sync.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
