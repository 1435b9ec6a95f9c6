// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/mock"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func TestActiveReport(t *testing.T) {
	active := mock.NewProvider(constants.ProviderMailchimp, true)
	active.SetCredentials(true)
	active.SetUsageReport(&model.UsageReport{EmailsSent: 120, Opens: 45, TotalContacts: 900})

	registry, err := NewProviderRegistry(constants.ProviderMailchimp, active)
	require.NoError(t, err)

	report, err := NewUsageReporter(registry).ActiveReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constants.ProviderMailchimp, report.Provider)
	assert.EqualValues(t, 120, report.EmailsSent)
}

func TestCollectReports(t *testing.T) {
	reporting := mock.NewProvider(constants.ProviderMailchimp, true)
	reporting.SetCredentials(true)
	reporting.SetUsageReport(&model.UsageReport{EmailsSent: 10, TotalContacts: 100})

	// Credentialed but without usage reporting: skipped, not an error.
	noReporting := mock.NewProvider(constants.ProviderCampaignMonitor, false)
	noReporting.SetCredentials(true)

	// Never connected: not even polled.
	unconfigured := mock.NewProvider(constants.ProviderConstantContact, false)
	unconfigured.SetUsageReport(&model.UsageReport{EmailsSent: 999})

	registry, err := NewProviderRegistry(constants.ProviderMailchimp, reporting, noReporting, unconfigured)
	require.NoError(t, err)

	reports, err := NewUsageReporter(registry).CollectReports(context.Background())
	require.NoError(t, err)

	require.Len(t, reports, 1)
	assert.EqualValues(t, 10, reports[constants.ProviderMailchimp].EmailsSent)
}

func TestCollectReportsSurfacesProviderFailure(t *testing.T) {
	failing := mock.NewProvider(constants.ProviderActiveCampaign, true)
	failing.SetCredentials(true)
	failing.SetUsageReport(&model.UsageReport{})
	failing.FailWith("GetUsageReport", errs.NewProvider("api_error", "report endpoint down"))

	registry, err := NewProviderRegistry(constants.ProviderActiveCampaign, failing)
	require.NoError(t, err)

	_, err = NewUsageReporter(registry).CollectReports(context.Background())
	require.Error(t, err)
}
