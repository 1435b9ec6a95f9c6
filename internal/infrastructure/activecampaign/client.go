// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package activecampaign implements the provider contract against the
// ActiveCampaign v3 API. Tags are account-global, so local lists are emulated
// with tags and the audience-scoping list ID is ignored by the tag primitives.
package activecampaign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/espapi"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
)

// apiTokenRoundTripper injects the Api-Token header on every request.
type apiTokenRoundTripper struct {
	client *Client
}

func (rt *apiTokenRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	rt.client.mu.RLock()
	apiKey := rt.client.config.APIKey
	rt.client.mu.RUnlock()
	if apiKey != "" {
		req.Header.Set("Api-Token", apiKey)
	}
	return next(req)
}

// Client handles all ActiveCampaign API operations. Campaign delivery is not
// exposed by the v3 API, so Send stays NotImplemented.
type Client struct {
	port.UnimplementedProvider

	config     Config
	httpClient *httpclient.Client
	mu         sync.RWMutex
}

var _ port.Provider = (*Client)(nil)

// NewClient creates a new ActiveCampaign client with the given configuration.
func NewClient(cfg Config) *Client {
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
	client.httpClient.AddRoundTripper(&apiTokenRoundTripper{client: client})

	return client
}

// Name implements port.Provider.
func (c *Client) Name() string {
	return constants.ProviderActiveCampaign
}

// SupportsLocalLists implements port.Provider.
func (c *Client) SupportsLocalLists() bool {
	return true
}

// HasAPICredentials implements port.Provider.
func (c *Client) HasAPICredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIURL != "" && c.config.APIKey != ""
}

// SetAPICredentials implements port.Provider. ActiveCampaign hands out a
// per-account API host alongside the token, so both are required.
func (c *Client) SetAPICredentials(ctx context.Context, credentials map[string]string) error {
	apiURL := strings.TrimSuffix(credentials["api_url"], "/")
	apiKey := credentials["api_key"]
	if apiURL == "" || apiKey == "" {
		return errs.NewConfiguration("activecampaign credentials require api_url and api_key")
	}
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return errs.NewConfiguration("activecampaign api_url is not a valid URL", err)
	}

	c.mu.Lock()
	c.config.APIURL = apiURL
	c.config.APIKey = apiKey
	c.mu.Unlock()

	slog.InfoContext(ctx, "activecampaign credentials updated", "api_url", apiURL)
	return nil
}

// GetLists implements port.Provider.
func (c *Client) GetLists(ctx context.Context) ([]model.ProviderList, error) {
	var response listsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/lists?limit=100", nil, &response); err != nil {
		return nil, err
	}

	lists := make([]model.ProviderList, 0, len(response.Lists))
	for _, l := range response.Lists {
		lists = append(lists, model.ProviderList{ID: l.ID, Name: l.Name})
	}
	return lists, nil
}

// GetContact implements port.Provider.
func (c *Client) GetContact(ctx context.Context, email string) (*model.ContactDetails, error) {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return nil, err
	}

	details := &model.ContactDetails{
		Email: found.Email,
		Name:  strings.TrimSpace(found.FirstName + " " + found.LastName),
	}

	var memberships contactListsResponse
	path := fmt.Sprintf("/contacts/%s/contactLists", found.ID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &memberships); err != nil {
		return nil, err
	}
	for _, entry := range memberships.ContactLists {
		if entry.Status == contactListStatusActive {
			details.Lists = append(details.Lists, entry.List)
		}
	}

	return details, nil
}

// AddContact implements port.Provider. The contact is upserted through the
// sync endpoint and then subscribed to the target list.
func (c *Client) AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	synced, err := c.syncContact(ctx, contact)
	if err != nil {
		return nil, err
	}

	if err := c.setListStatus(ctx, synced.ID, listID, contactListStatusActive); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "activecampaign contact subscribed",
		"email", redaction.RedactEmail(contact.Email),
		"list_id", listID,
	)

	return &model.ContactDetails{
		Email: synced.Email,
		Name:  contact.Name,
		Lists: []string{listID},
	}, nil
}

// UpdateContactLists implements port.Provider.
func (c *Client) UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error {
	synced, err := c.syncContact(ctx, model.Contact{Email: email})
	if err != nil {
		return err
	}

	for _, listID := range listsToAdd {
		if err := c.setListStatus(ctx, synced.ID, listID, contactListStatusActive); err != nil {
			return err
		}
	}
	for _, listID := range listsToRemove {
		if err := c.setListStatus(ctx, synced.ID, listID, contactListStatusUnsubscribed); err != nil {
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

// GetTagID implements port.Provider. Tags are account-global in
// ActiveCampaign; listID only scopes the emulated local list, not the lookup.
func (c *Client) GetTagID(ctx context.Context, tagName, listID string, createIfMissing bool) (string, error) {
	var response tagsResponse
	path := "/tags?search=" + url.QueryEscape(tagName)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return "", err
	}

	for _, t := range response.Tags {
		if t.Name == tagName {
			return t.ID, nil
		}
	}

	if !createIfMissing {
		return "", errs.NewNotFound(fmt.Sprintf("tag %q not found in activecampaign", tagName))
	}
	return c.CreateTag(ctx, tagName, listID)
}

// CreateTag implements port.Provider.
func (c *Client) CreateTag(ctx context.Context, tagName, _ string) (string, error) {
	body := tagCreateRequest{Tag: tagCreateFields{Name: tagName, TagType: "contact"}}

	var response tagCreateResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/tags", body, &response); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "activecampaign tag created", "tag", tagName, "tag_id", response.Tag.ID)
	return response.Tag.ID, nil
}

// AddTagToContact implements port.Provider.
func (c *Client) AddTagToContact(ctx context.Context, email, tagID, _ string) error {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return err
	}

	body := contactTagRequest{ContactTag: contactTagFields{Contact: found.ID, Tag: tagID}}
	return c.makeRequest(ctx, http.MethodPost, "/contactTags", body, nil)
}

// RemoveTagFromContact implements port.Provider. The association record has
// its own ID, so removal is a lookup followed by a delete.
func (c *Client) RemoveTagFromContact(ctx context.Context, email, tagID, _ string) error {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return err
	}

	associations, err := c.contactTags(ctx, found.ID)
	if err != nil {
		return err
	}
	for _, assoc := range associations {
		if assoc.Tag == tagID {
			return c.makeRequest(ctx, http.MethodDelete, "/contactTags/"+assoc.ID, nil, nil)
		}
	}

	// Already absent, nothing to remove.
	return nil
}

// GetContactTagIDs implements port.Provider.
func (c *Client) GetContactTagIDs(ctx context.Context, email, _ string) ([]string, error) {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return nil, err
	}

	associations, err := c.contactTags(ctx, found.ID)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]string, 0, len(associations))
	for _, assoc := range associations {
		tagIDs = append(tagIDs, assoc.Tag)
	}
	return tagIDs, nil
}

// GetUsageReport implements port.Provider. Counters are aggregated over the
// account's campaigns; the contact total comes from the contacts collection
// metadata.
func (c *Client) GetUsageReport(ctx context.Context) (*model.UsageReport, error) {
	var campaigns campaignsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/campaigns?limit=100", nil, &campaigns); err != nil {
		return nil, err
	}

	var contacts contactsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/contacts?limit=1", nil, &contacts); err != nil {
		return nil, err
	}

	report := &model.UsageReport{
		Provider: constants.ProviderActiveCampaign,
		Date:     time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
	}
	for _, campaign := range campaigns.Campaigns {
		report.EmailsSent += parseCounter(campaign.SendAmount)
		report.Opens += parseCounter(campaign.UniqueOpens)
		report.Clicks += parseCounter(campaign.LinkClicks)
	}
	report.TotalContacts = parseCounter(contacts.Meta.Total)

	return report, nil
}

// findContact resolves a contact by email. Returns NotFound when no contact
// matches exactly.
func (c *Client) findContact(ctx context.Context, email string) (*contact, error) {
	var response contactsResponse
	path := "/contacts?email=" + url.QueryEscape(email)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}

	for i := range response.Contacts {
		if strings.EqualFold(response.Contacts[i].Email, email) {
			return &response.Contacts[i], nil
		}
	}
	return nil, errs.NewNotFound("contact not found in activecampaign")
}

// syncContact upserts a contact through the sync endpoint and returns the
// provider-side record.
func (c *Client) syncContact(ctx context.Context, source model.Contact) (*contact, error) {
	fields := contactFields{Email: source.Email}
	fields.FirstName, fields.LastName, _ = strings.Cut(source.Name, " ")

	var response contactSyncResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/contact/sync", contactSyncRequest{Contact: fields}, &response); err != nil {
		return nil, err
	}
	return &response.Contact, nil
}

func (c *Client) setListStatus(ctx context.Context, contactID, listID, status string) error {
	body := contactListUpdateRequest{ContactList: contactListUpdate{
		List:    listID,
		Contact: contactID,
		Status:  status,
	}}
	return c.makeRequest(ctx, http.MethodPost, "/contactLists", body, nil)
}

func (c *Client) contactTags(ctx context.Context, contactID string) ([]contactTagEntry, error) {
	var response contactTagsResponse
	path := fmt.Sprintf("/contacts/%s/contactTags", contactID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.ContactTags, nil
}

// makeRequest centralizes all API calls with authentication and error mapping.
func (c *Client) makeRequest(ctx context.Context, method, path string, body any, result any) error {
	c.mu.RLock()
	apiURL := c.config.APIURL
	c.mu.RUnlock()
	if apiURL == "" {
		return errs.NewConfiguration("activecampaign API URL is not configured")
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

	resp, err := c.httpClient.Request(ctx, method, apiURL+"/api/3"+path, reqBody, headers)
	if err != nil {
		return espapi.MapHTTPError(ctx, constants.ProviderActiveCampaign, err)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse activecampaign response: %w", err)
		}
	}

	return nil
}

func parseCounter(value string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
