// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/mock"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func newResyncFixture(syncEnabled bool) (*ResyncService, *mock.Provider, *mock.CommerceReader) {
	provider := mock.NewProvider(constants.ProviderActiveCampaign, false)
	registry := mock.NewListRegistry()
	commerce := mock.NewCommerceReader()
	engine := NewContactSyncEngine(provider, registry)
	return NewResyncService(engine, commerce, syncEnabled, "MASTER"), provider, commerce
}

func seedCustomers(commerce *mock.CommerceReader, n int) {
	for i := 0; i < n; i++ {
		commerce.AddCustomer(&model.Customer{
			ID:    fmt.Sprintf("u%03d", i),
			Email: fmt.Sprintf("reader%03d@example.com", i),
		})
	}
}

func TestResyncGateBlocksLiveRuns(t *testing.T) {
	service, provider, commerce := newResyncFixture(false)
	seedCustomers(commerce, 3)

	_, err := service.Resync(context.Background(), model.ResyncConfig{})

	require.Error(t, err)
	assert.IsType(t, errs.Configuration{}, err)
	assert.Zero(t, provider.MutationCount())
}

func TestResyncDryRunCountsWithoutMutating(t *testing.T) {
	// Dry runs pass the gate even when sync is disabled for the environment.
	service, provider, commerce := newResyncFixture(false)
	seedCustomers(commerce, 23)

	processed, err := service.Resync(context.Background(), model.ResyncConfig{IsDryRun: true, BatchSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 23, processed)
	assert.Zero(t, provider.MutationCount())
}

func TestResyncAllCustomersPagination(t *testing.T) {
	// 23 customers at batch size 10 terminates after the empty page and
	// visits every customer exactly once.
	service, provider, commerce := newResyncFixture(true)
	seedCustomers(commerce, 23)

	processed, err := service.Resync(context.Background(), model.ResyncConfig{BatchSize: 10})

	require.NoError(t, err)
	assert.Equal(t, 23, processed)
	assert.Len(t, provider.AddContactCalls, 23)
	assert.Equal(t, 4, commerce.ListCustomersCalls, "three full pages plus the terminating empty page")
	for i := 0; i < 23; i++ {
		email := fmt.Sprintf("reader%03d@example.com", i)
		assert.Equal(t, []string{"MASTER"}, provider.ContactListsOf(email))
	}
}

func TestResyncRespectsOffsetAndMaxBatches(t *testing.T) {
	service, _, commerce := newResyncFixture(true)
	seedCustomers(commerce, 30)

	processed, err := service.Resync(context.Background(), model.ResyncConfig{BatchSize: 10, Offset: 10, MaxBatches: 1})

	require.NoError(t, err)
	assert.Equal(t, 10, processed)
}

func TestResyncActiveOnlyFiltersCustomers(t *testing.T) {
	service, provider, commerce := newResyncFixture(true)
	seedCustomers(commerce, 2)
	commerce.AddSubscription(&model.Subscription{ID: "s1", CustomerID: "u000", Status: constants.SubscriptionStatusActive})
	commerce.AddSubscription(&model.Subscription{ID: "s2", CustomerID: "u001", Status: "cancelled"})

	processed, err := service.Resync(context.Background(), model.ResyncConfig{ActiveOnly: true})

	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"MASTER"}, provider.ContactListsOf("reader000@example.com"))
	assert.Nil(t, provider.ContactListsOf("reader001@example.com"))
}

func TestResyncSubscriptionIDs(t *testing.T) {
	testCases := []struct {
		name              string
		cfg               model.ResyncConfig
		expectedProcessed int
	}{
		{
			name:              "known subscriptions resolve their customers",
			cfg:               model.ResyncConfig{SubscriptionIDs: []string{"s1", "s2"}},
			expectedProcessed: 2,
		},
		{
			name:              "unknown ids are skipped, not fatal",
			cfg:               model.ResyncConfig{SubscriptionIDs: []string{"s1", "missing"}},
			expectedProcessed: 1,
		},
		{
			name:              "active-only drops the cancelled subscription",
			cfg:               model.ResyncConfig{ActiveOnly: true, SubscriptionIDs: []string{"s1", "s2"}},
			expectedProcessed: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service, _, commerce := newResyncFixture(true)
			seedCustomers(commerce, 2)
			commerce.AddSubscription(&model.Subscription{ID: "s1", CustomerID: "u000", Status: constants.SubscriptionStatusActive})
			commerce.AddSubscription(&model.Subscription{ID: "s2", CustomerID: "u001", Status: "cancelled"})

			processed, err := service.Resync(context.Background(), tc.cfg)

			require.NoError(t, err)
			assert.Equal(t, tc.expectedProcessed, processed)
		})
	}
}

func TestResyncOrderIDsUsesBillingIdentity(t *testing.T) {
	service, provider, commerce := newResyncFixture(true)
	commerce.AddOrder(&model.Order{ID: "o1", CustomerID: "u000", BillingEmail: "billing@example.com", BillingName: "Pat Billing"})
	commerce.AddOrder(&model.Order{ID: "o2", CustomerID: "u000"})

	processed, err := service.Resync(context.Background(), model.ResyncConfig{OrderIDs: []string{"o1", "o2"}})

	require.NoError(t, err)
	// The second order has no billing email and is skipped.
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"MASTER"}, provider.ContactListsOf("billing@example.com"))
}

func TestResyncMigratedSubscriptions(t *testing.T) {
	service, provider, commerce := newResyncFixture(true)
	seedCustomers(commerce, 3)
	commerce.AddSubscription(&model.Subscription{ID: "s1", CustomerID: "u000", Status: "active", MigrationSource: "stripe"})
	commerce.AddSubscription(&model.Subscription{ID: "s2", CustomerID: "u001", Status: "active", MigrationSource: "piano"})
	commerce.AddSubscription(&model.Subscription{ID: "s3", CustomerID: "u002", Status: "active", MigrationSource: "stripe"})

	processed, err := service.Resync(context.Background(), model.ResyncConfig{MigratedSubscriptions: "stripe", BatchSize: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Nil(t, provider.ContactListsOf("reader001@example.com"))
}

func TestResyncRejectsInvalidConfig(t *testing.T) {
	service, _, _ := newResyncFixture(true)

	testCases := []struct {
		name string
		cfg  model.ResyncConfig
	}{
		{name: "negative offset", cfg: model.ResyncConfig{Offset: -1}},
		{name: "negative max batches", cfg: model.ResyncConfig{MaxBatches: -2}},
		{name: "unknown migration source", cfg: model.ResyncConfig{MigratedSubscriptions: "legacy-crm"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Resync(context.Background(), tc.cfg)
			require.Error(t, err)
			assert.IsType(t, errs.Validation{}, err)
		})
	}
}

func TestResyncContinuesPastProviderFailures(t *testing.T) {
	service, provider, commerce := newResyncFixture(true)
	seedCustomers(commerce, 3)
	provider.FailWith("AddContact", errs.NewProvider("api_error", "temporarily unavailable"))

	processed, err := service.Resync(context.Background(), model.ResyncConfig{})

	require.NoError(t, err)
	assert.Zero(t, processed)

	// Clearing the failure lets a follow-up run succeed for everyone.
	provider.FailWith("AddContact", nil)
	processed, err = service.Resync(context.Background(), model.ResyncConfig{})
	require.NoError(t, err)
	assert.Equal(t, 3, processed)
}
