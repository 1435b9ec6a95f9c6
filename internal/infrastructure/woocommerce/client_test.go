// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.ConsumerKey = "ck_test"
	cfg.ConsumerSecret = "cs_test"
	cfg.MaxRetries = 0
	cfg.Timeout = 5 * time.Second

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://example.com/wp-json/wc/v3"})
	require.Error(t, err)
	assert.IsType(t, errs.Configuration{}, err)

	_, err = NewClient(Config{ConsumerKey: "ck", ConsumerSecret: "cs"})
	require.Error(t, err)
	assert.IsType(t, errs.Configuration{}, err)
}

func TestGetCustomerMapsBillingIdentity(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers/42", r.URL.Path)

		_, _, ok := r.BasicAuth()
		require.True(t, ok)

		_ = json.NewEncoder(w).Encode(wcCustomer{
			ID:        42,
			Email:     "account@example.com",
			FirstName: "Avery",
			LastName:  "Reader",
			Billing:   billing{Email: "billing@example.com", FirstName: "Avery", LastName: "Reader"},
		})
	}))

	customer, err := client.GetCustomer(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", customer.ID)
	assert.Equal(t, "account@example.com", customer.Email)
	assert.Equal(t, "billing@example.com", customer.BillingEmail)
	assert.Equal(t, "Avery Reader", customer.BillingName)
}

func TestListCustomersPagesWithOffset(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		_ = json.NewEncoder(w).Encode([]wcCustomer{{ID: 21}, {ID: 22}})
	}))

	customers, err := client.ListCustomers(context.Background(), 20, 10)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "21", customers[0].ID)
}

func TestListMigratedSubscriptionsReadsMeta(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stripe", r.URL.Query().Get("migration_source"))
		_ = json.NewEncoder(w).Encode([]wcSubscription{{
			ID:         7,
			CustomerID: 42,
			Status:     "active",
			MetaData:   []metaEntry{{Key: migrationSourceMetaKey, Value: "stripe"}},
		}})
	}))

	subscriptions, err := client.ListMigratedSubscriptions(context.Background(), "stripe", 0, 10)
	require.NoError(t, err)
	require.Len(t, subscriptions, 1)
	assert.Equal(t, "7", subscriptions[0].ID)
	assert.Equal(t, "stripe", subscriptions[0].MigrationSource)
}

func TestGetPlanMapsRestrictionRules(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/memberships/plans/9", r.URL.Path)
		_ = json.NewEncoder(w).Encode(wcMembershipPlan{
			ID:   9,
			Name: "Premium",
			Rules: []wcContentRule{
				{ContentType: "subscription_list", ContentIDs: []string{"local-1", "local-2"}},
			},
		})
	}))

	plan, err := client.GetPlan(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, []string{"local-1", "local-2"}, plan.SubscriptionListIDs())
}

func TestUserCanViewContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))
		assert.Equal(t, "local-1", r.URL.Query().Get("content_id"))
		_ = json.NewEncoder(w).Encode(accessCheckResponse{CanView: true})
	}))

	canView, err := client.UserCanViewContent(context.Background(), "42", "local-1")
	require.NoError(t, err)
	assert.True(t, canView)
}

func TestStoreErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "404 maps to not found", status: http.StatusNotFound, expected: errs.NotFound{}},
		{name: "403 maps to unauthorized", status: http.StatusForbidden, expected: errs.Unauthorized{}},
		{name: "500 maps to service unavailable", status: http.StatusInternalServerError, expected: errs.ServiceUnavailable{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.GetCustomer(context.Background(), "42")
			require.Error(t, err)
			assert.IsType(t, tt.expected, err)
		})
	}
}
