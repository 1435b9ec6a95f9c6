// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package campaignmonitor implements the provider contract against the
// Campaign Monitor v3.3 API. Campaign Monitor has no tag mechanism, so this
// provider covers native lists only and the tag primitives stay
// NotImplemented.
package campaignmonitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/espapi"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
)

const subscriberStateActive = "Active"

// basicAuthRoundTripper injects the API key as the basic auth username.
// Campaign Monitor ignores the password.
type basicAuthRoundTripper struct {
	client *Client
}

func (rt *basicAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	rt.client.mu.RLock()
	apiKey := rt.client.config.APIKey
	rt.client.mu.RUnlock()
	if apiKey != "" {
		req.SetBasicAuth(apiKey, "x")
	}
	return next(req)
}

// Client handles the Campaign Monitor list and subscriber operations.
type Client struct {
	port.UnimplementedProvider

	config     Config
	httpClient *httpclient.Client
	mu         sync.RWMutex
}

var _ port.Provider = (*Client)(nil)

// NewClient creates a new Campaign Monitor client with the given
// configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}

	client := &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(httpConfig),
	}
	client.httpClient.AddRoundTripper(&basicAuthRoundTripper{client: client})

	return client
}

// Name implements port.Provider.
func (c *Client) Name() string {
	return constants.ProviderCampaignMonitor
}

// SupportsLocalLists implements port.Provider. Campaign Monitor cannot
// emulate local lists, membership lives on native lists only.
func (c *Client) SupportsLocalLists() bool {
	return false
}

// HasAPICredentials implements port.Provider.
func (c *Client) HasAPICredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIKey != "" && c.config.ClientID != ""
}

// SetAPICredentials implements port.Provider.
func (c *Client) SetAPICredentials(ctx context.Context, credentials map[string]string) error {
	apiKey := credentials["api_key"]
	clientID := credentials["client_id"]
	if apiKey == "" || clientID == "" {
		return errs.NewConfiguration("campaign monitor credentials require api_key and client_id")
	}

	c.mu.Lock()
	c.config.APIKey = apiKey
	c.config.ClientID = clientID
	c.mu.Unlock()

	slog.InfoContext(ctx, "campaign monitor credentials updated", "client_id", clientID)
	return nil
}

// GetLists implements port.Provider. The stats call per list is what makes
// member counts available; a missing stats response degrades to a zero count.
func (c *Client) GetLists(ctx context.Context) ([]model.ProviderList, error) {
	c.mu.RLock()
	clientID := c.config.ClientID
	c.mu.RUnlock()

	var summaries []listSummary
	path := fmt.Sprintf("/clients/%s/lists.json", clientID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &summaries); err != nil {
		return nil, err
	}

	lists := make([]model.ProviderList, 0, len(summaries))
	for _, summary := range summaries {
		entry := model.ProviderList{ID: summary.ListID, Name: summary.Name}

		var stats listStats
		statsPath := fmt.Sprintf("/lists/%s/stats.json", summary.ListID)
		if err := c.makeRequest(ctx, http.MethodGet, statsPath, nil, &stats); err == nil {
			entry.MemberCount = stats.TotalActiveSubscribers
		}

		lists = append(lists, entry)
	}
	return lists, nil
}

// GetContact implements port.Provider. Campaign Monitor has no account-wide
// contact record; identity is reconstructed from per-list membership.
func (c *Client) GetContact(ctx context.Context, email string) (*model.ContactDetails, error) {
	memberships, err := c.listsForEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	details := &model.ContactDetails{Email: email}
	for _, membership := range memberships {
		if membership.SubscriberState == subscriberStateActive {
			details.Lists = append(details.Lists, membership.ListID)
		}
	}
	if len(details.Lists) == 0 {
		return nil, errs.NewNotFound("contact not found in campaign monitor")
	}
	return details, nil
}

// AddContact implements port.Provider. Resubscribe is set so a previously
// unsubscribed member is reactivated rather than rejected.
func (c *Client) AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	body := subscriberAddRequest{
		EmailAddress:   contact.Email,
		Name:           contact.Name,
		Resubscribe:    true,
		ConsentToTrack: "Yes",
	}

	path := fmt.Sprintf("/subscribers/%s.json", listID)
	if err := c.makeRequest(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "campaign monitor subscriber added",
		"email", redaction.RedactEmail(contact.Email),
		"list_id", listID,
	)

	return &model.ContactDetails{
		Email: contact.Email,
		Name:  contact.Name,
		Lists: []string{listID},
	}, nil
}

// UpdateContactLists implements port.Provider.
func (c *Client) UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error {
	for _, listID := range listsToAdd {
		if _, err := c.AddContact(ctx, model.Contact{Email: email}, listID); err != nil {
			return err
		}
	}

	for _, listID := range listsToRemove {
		body := unsubscribeRequest{EmailAddress: email}
		path := fmt.Sprintf("/subscribers/%s/unsubscribe.json", listID)
		if err := c.makeRequest(ctx, http.MethodPost, path, body, nil); err != nil {
			return err
		}
	}

	return nil
}

// GetContactLists implements port.Provider.
func (c *Client) GetContactLists(ctx context.Context, email string) ([]string, error) {
	contact, err := c.GetContact(ctx, email)
	if err != nil {
		return nil, err
	}
	return contact.Lists, nil
}

// listsForEmail fetches every client list along with the email's subscriber
// state on it.
func (c *Client) listsForEmail(ctx context.Context, email string) ([]listForEmail, error) {
	c.mu.RLock()
	clientID := c.config.ClientID
	c.mu.RUnlock()

	values, err := query.Values(subscriberQuery{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var memberships []listForEmail
	path := fmt.Sprintf("/clients/%s/listsforemail.json?%s", clientID, values.Encode())
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// makeRequest centralizes all API calls with authentication and error mapping.
func (c *Client) makeRequest(ctx context.Context, method, path string, body any, result any) error {
	c.mu.RLock()
	baseURL := c.config.BaseURL
	configured := c.config.APIKey != "" && c.config.ClientID != ""
	c.mu.RUnlock()
	if !configured {
		return errs.NewConfiguration("campaign monitor credentials are not configured")
	}

	var reqBody io.Reader
	headers := map[string]string{}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.httpClient.Request(ctx, method, baseURL+path, reqBody, headers)
	if err != nil {
		return espapi.MapHTTPError(ctx, constants.ProviderCampaignMonitor, err)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse campaign monitor response: %w", err)
		}
	}

	return nil
}
