// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func TestIsLocalListID(t *testing.T) {
	testCases := []struct {
		name     string
		id       string
		expected bool
	}{
		{name: "local identifier", id: "local-42", expected: true},
		{name: "provider native identifier", id: "a1b2c3d4e5", expected: false},
		{name: "bare prefix", id: "local-", expected: false},
		{name: "empty", id: "", expected: false},
		{name: "prefix in the middle", id: "list-local-42", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsLocalListID(tc.id))
		})
	}
}

func TestSubscriptionListProviderSettings(t *testing.T) {
	list := &SubscriptionList{
		FormID: "local-42",
		Title:  "Weekly Digest",
		Settings: map[string]ProviderListSettings{
			"mailchimp": {List: "L2", TagID: "T2"},
			"manual":    {List: "", TagID: ""},
		},
	}

	t.Run("configured provider", func(t *testing.T) {
		require.True(t, list.IsConfiguredForProvider("mailchimp"))
		settings, err := list.ProviderSettings("mailchimp")
		require.NoError(t, err)
		assert.Equal(t, "L2", settings.List)
		assert.Equal(t, "T2", settings.TagID)
	})

	t.Run("entry present but empty", func(t *testing.T) {
		assert.False(t, list.IsConfiguredForProvider("manual"))
		_, err := list.ProviderSettings("manual")
		var cfgErr errs.Configuration
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("unknown provider", func(t *testing.T) {
		assert.False(t, list.IsConfiguredForProvider("campaign_monitor"))
		_, err := list.ProviderSettings("campaign_monitor")
		var cfgErr errs.Configuration
		assert.True(t, errors.As(err, &cfgErr))
	})
}
