// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/mock"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func TestNewProviderRegistry(t *testing.T) {
	testCases := []struct {
		name        string
		activeName  string
		providers   []port.Provider
		expectError bool
	}{
		{
			name:       "active provider among variants",
			activeName: constants.ProviderMailchimp,
			providers: []port.Provider{
				mock.NewProvider(constants.ProviderMailchimp, true),
				mock.NewProvider(constants.ProviderActiveCampaign, true),
			},
		},
		{
			name:       "unregistered active provider",
			activeName: constants.ProviderLetterhead,
			providers: []port.Provider{
				mock.NewProvider(constants.ProviderMailchimp, true),
			},
			expectError: true,
		},
		{
			name:       "duplicate registration",
			activeName: constants.ProviderMailchimp,
			providers: []port.Provider{
				mock.NewProvider(constants.ProviderMailchimp, true),
				mock.NewProvider(constants.ProviderMailchimp, false),
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			registry, err := NewProviderRegistry(tc.activeName, tc.providers...)

			if tc.expectError {
				require.Error(t, err)
				assert.IsType(t, errs.Configuration{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.activeName, registry.Active().Name())
		})
	}
}

func TestProviderRegistryGet(t *testing.T) {
	registry, err := NewProviderRegistry(constants.ProviderManual,
		mock.NewProvider(constants.ProviderManual, false),
	)
	require.NoError(t, err)

	p, err := registry.Get(constants.ProviderManual)
	require.NoError(t, err)
	assert.Equal(t, constants.ProviderManual, p.Name())

	_, err = registry.Get(constants.ProviderMailchimp)
	require.Error(t, err)
	assert.IsType(t, errs.NotFound{}, err)
}

func TestProviderRegistryAllIsNameOrdered(t *testing.T) {
	registry, err := NewProviderRegistry(constants.ProviderMailchimp,
		mock.NewProvider(constants.ProviderMailchimp, true),
		mock.NewProvider(constants.ProviderActiveCampaign, true),
		mock.NewProvider(constants.ProviderCampaignMonitor, false),
	)
	require.NoError(t, err)

	var names []string
	for _, p := range registry.All() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{
		constants.ProviderActiveCampaign,
		constants.ProviderCampaignMonitor,
		constants.ProviderMailchimp,
	}, names)
}
