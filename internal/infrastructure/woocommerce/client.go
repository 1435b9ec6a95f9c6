// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package woocommerce implements the commerce reader against the WooCommerce
// v3 REST API, including the Subscriptions and Memberships extension routes.
// All access is read-only; the sync core never writes commerce data.
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
)

const migrationSourceMetaKey = "_migration_source"

// basicAuthRoundTripper injects the store consumer credentials.
type basicAuthRoundTripper struct {
	consumerKey    string
	consumerSecret string
}

func (rt *basicAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.SetBasicAuth(rt.consumerKey, rt.consumerSecret)
	return next(req)
}

// Client is the WooCommerce REST commerce reader.
type Client struct {
	config     Config
	httpClient *httpclient.Client
}

var _ port.CommerceReader = (*Client)(nil)

// NewClient creates a new WooCommerce client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errs.NewConfiguration("woocommerce base URL is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, errs.NewConfiguration("woocommerce consumer key and secret are required")
	}

	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}

	client := &Client{
		config:     Config{BaseURL: strings.TrimSuffix(cfg.BaseURL, "/")},
		httpClient: httpclient.NewClient(httpConfig),
	}
	client.httpClient.AddRoundTripper(&basicAuthRoundTripper{
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
	})

	return client, nil
}

// GetCustomer implements port.CommerceReader.
func (c *Client) GetCustomer(ctx context.Context, userID string) (*model.Customer, error) {
	var record wcCustomer
	if err := c.get(ctx, "/customers/"+userID, &record); err != nil {
		return nil, err
	}
	return customerFromAPI(&record), nil
}

// ListCustomers implements port.CommerceReader.
func (c *Client) ListCustomers(ctx context.Context, offset, limit int) ([]*model.Customer, error) {
	values, err := query.Values(pageQuery{Offset: offset, PerPage: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var records []wcCustomer
	if err := c.get(ctx, "/customers?"+values.Encode(), &records); err != nil {
		return nil, err
	}

	customers := make([]*model.Customer, 0, len(records))
	for i := range records {
		customers = append(customers, customerFromAPI(&records[i]))
	}
	return customers, nil
}

// GetOrder implements port.CommerceReader.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var record wcOrder
	if err := c.get(ctx, "/orders/"+orderID, &record); err != nil {
		return nil, err
	}

	return &model.Order{
		ID:           strconv.FormatInt(record.ID, 10),
		CustomerID:   strconv.FormatInt(record.CustomerID, 10),
		BillingEmail: record.Billing.Email,
		BillingName:  fullName(record.Billing.FirstName, record.Billing.LastName),
	}, nil
}

// GetSubscription implements port.CommerceReader.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var record wcSubscription
	if err := c.get(ctx, "/subscriptions/"+subscriptionID, &record); err != nil {
		return nil, err
	}
	return subscriptionFromAPI(&record), nil
}

// ListMigratedSubscriptions implements port.CommerceReader. The migration
// source collection filter is registered by the store-side companion plugin.
func (c *Client) ListMigratedSubscriptions(ctx context.Context, source string, offset, limit int) ([]*model.Subscription, error) {
	values, err := query.Values(migratedQuery{Offset: offset, PerPage: limit, MigrationSource: source})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var records []wcSubscription
	if err := c.get(ctx, "/subscriptions?"+values.Encode(), &records); err != nil {
		return nil, err
	}

	subscriptions := make([]*model.Subscription, 0, len(records))
	for i := range records {
		subscriptions = append(subscriptions, subscriptionFromAPI(&records[i]))
	}
	return subscriptions, nil
}

// CustomerSubscriptions implements port.CommerceReader.
func (c *Client) CustomerSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error) {
	values, err := query.Values(customerQuery{Customer: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var records []wcSubscription
	if err := c.get(ctx, "/subscriptions?"+values.Encode(), &records); err != nil {
		return nil, err
	}

	subscriptions := make([]*model.Subscription, 0, len(records))
	for i := range records {
		subscriptions = append(subscriptions, subscriptionFromAPI(&records[i]))
	}
	return subscriptions, nil
}

// GetPlan implements port.CommerceReader.
func (c *Client) GetPlan(ctx context.Context, planID string) (*model.MembershipPlan, error) {
	var record wcMembershipPlan
	if err := c.get(ctx, "/memberships/plans/"+planID, &record); err != nil {
		return nil, err
	}
	return planFromAPI(&record), nil
}

// ListPlans implements port.CommerceReader.
func (c *Client) ListPlans(ctx context.Context) ([]*model.MembershipPlan, error) {
	var records []wcMembershipPlan
	if err := c.get(ctx, "/memberships/plans", &records); err != nil {
		return nil, err
	}

	plans := make([]*model.MembershipPlan, 0, len(records))
	for i := range records {
		plans = append(plans, planFromAPI(&records[i]))
	}
	return plans, nil
}

// UserCanViewContent implements port.CommerceReader, deferring to the store's
// own access-control check so restriction semantics live in one place.
func (c *Client) UserCanViewContent(ctx context.Context, userID, contentID string) (bool, error) {
	values, err := query.Values(accessQuery{UserID: userID, ContentID: contentID})
	if err != nil {
		return false, fmt.Errorf("failed to encode query: %w", err)
	}

	var response accessCheckResponse
	if err := c.get(ctx, "/memberships/access?"+values.Encode(), &response); err != nil {
		return false, err
	}
	return response.CanView, nil
}

// get performs a GET against the store API and decodes the response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	resp, err := c.httpClient.Request(ctx, http.MethodGet, c.config.BaseURL+path, nil, nil)
	if err != nil {
		return mapStoreError(err)
	}

	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("failed to parse woocommerce response: %w", err)
	}
	return nil
}

func mapStoreError(err error) error {
	if retryable, ok := err.(*httpclient.RetryableError); ok {
		switch {
		case retryable.StatusCode == http.StatusNotFound:
			return errs.NewNotFound("woocommerce record not found", err)
		case retryable.StatusCode == http.StatusUnauthorized || retryable.StatusCode == http.StatusForbidden:
			return errs.NewUnauthorized("woocommerce rejected the store credentials", err)
		case retryable.StatusCode >= http.StatusInternalServerError:
			return errs.NewServiceUnavailable("woocommerce store unavailable", err)
		}
	}
	return errs.NewServiceUnavailable("woocommerce request failed", err)
}

func customerFromAPI(record *wcCustomer) *model.Customer {
	return &model.Customer{
		ID:           strconv.FormatInt(record.ID, 10),
		Email:        record.Email,
		Name:         fullName(record.FirstName, record.LastName),
		BillingEmail: record.Billing.Email,
		BillingName:  fullName(record.Billing.FirstName, record.Billing.LastName),
	}
}

func subscriptionFromAPI(record *wcSubscription) *model.Subscription {
	sub := &model.Subscription{
		ID:         strconv.FormatInt(record.ID, 10),
		CustomerID: strconv.FormatInt(record.CustomerID, 10),
		Status:     record.Status,
	}
	for _, meta := range record.MetaData {
		if meta.Key == migrationSourceMetaKey {
			if source, ok := meta.Value.(string); ok {
				sub.MigrationSource = source
			}
		}
	}
	return sub
}

func planFromAPI(record *wcMembershipPlan) *model.MembershipPlan {
	plan := &model.MembershipPlan{
		ID:   strconv.FormatInt(record.ID, 10),
		Name: record.Name,
	}
	for _, rule := range record.Rules {
		plan.Rules = append(plan.Rules, model.ContentRule{
			ContentType: rule.ContentType,
			ContentIDs:  rule.ContentIDs,
		})
	}
	return plan
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
