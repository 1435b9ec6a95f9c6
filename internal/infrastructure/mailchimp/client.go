// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package mailchimp implements the provider contract against the Mailchimp
// Marketing API v3. Local lists are emulated with static segments (member
// tags), so this is a full-capability provider.
package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
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

const memberStatusSubscribed = "subscribed"

// basicAuthRoundTripper injects the API key on every request. Mailchimp
// accepts any username with the key as password.
type basicAuthRoundTripper struct {
	client *Client
}

func (rt *basicAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	rt.client.mu.RLock()
	apiKey := rt.client.config.APIKey
	rt.client.mu.RUnlock()
	if apiKey != "" {
		req.SetBasicAuth("anystring", apiKey)
	}
	return next(req)
}

// Client handles all Mailchimp API operations.
type Client struct {
	config     Config
	baseURL    string
	httpClient *httpclient.Client
	mu         sync.RWMutex
}

var _ port.Provider = (*Client)(nil)

// NewClient creates a new Mailchimp client with the given configuration. A
// missing API key is allowed at construction; the provider just reports no
// credentials until SetAPICredentials is called.
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
		baseURL:    resolveBaseURL(cfg),
		httpClient: httpclient.NewClient(httpConfig),
	}
	client.httpClient.AddRoundTripper(&basicAuthRoundTripper{client: client})

	return client
}

// resolveBaseURL derives the API base URL from the datacenter suffix of the
// API key, unless an explicit override is configured.
func resolveBaseURL(cfg Config) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	idx := strings.LastIndex(cfg.APIKey, "-")
	if idx < 0 || idx == len(cfg.APIKey)-1 {
		return ""
	}
	return fmt.Sprintf("https://%s.api.mailchimp.com/3.0", cfg.APIKey[idx+1:])
}

// Name implements port.Provider.
func (c *Client) Name() string {
	return constants.ProviderMailchimp
}

// SupportsLocalLists implements port.Provider. Mailchimp emulates local lists
// through static segments.
func (c *Client) SupportsLocalLists() bool {
	return true
}

// HasAPICredentials implements port.Provider.
func (c *Client) HasAPICredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIKey != "" && c.baseURL != ""
}

// SetAPICredentials implements port.Provider. The key must carry a datacenter
// suffix, otherwise no API host can be derived from it.
func (c *Client) SetAPICredentials(ctx context.Context, credentials map[string]string) error {
	apiKey := credentials["api_key"]
	if apiKey == "" {
		return errs.NewConfiguration("mailchimp credentials require api_key")
	}

	cfg := c.config
	cfg.APIKey = apiKey
	cfg.BaseURL = ""
	baseURL := resolveBaseURL(cfg)
	if baseURL == "" {
		return errs.NewConfiguration("mailchimp api_key carries no datacenter suffix")
	}

	c.mu.Lock()
	c.config.APIKey = apiKey
	c.baseURL = baseURL
	c.mu.Unlock()

	slog.InfoContext(ctx, "mailchimp credentials updated", "base_url", baseURL)
	return nil
}

// GetLists implements port.Provider.
func (c *Client) GetLists(ctx context.Context) ([]model.ProviderList, error) {
	var response listsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/lists?count=1000", nil, &response); err != nil {
		return nil, err
	}

	lists := make([]model.ProviderList, 0, len(response.Lists))
	for _, audience := range response.Lists {
		lists = append(lists, model.ProviderList{
			ID:          audience.ID,
			Name:        audience.Name,
			MemberCount: audience.Stats.MemberCount,
		})
	}
	return lists, nil
}

// GetContact implements port.Provider. Membership is resolved through the
// account-wide member search so one lookup covers every audience.
func (c *Client) GetContact(ctx context.Context, email string) (*model.ContactDetails, error) {
	members, err := c.searchMembers(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errs.NewNotFound("contact not found in mailchimp")
	}

	details := &model.ContactDetails{
		Email: members[0].EmailAddress,
		Name:  members[0].FullName,
	}
	for _, m := range members {
		if m.Status == memberStatusSubscribed {
			details.Lists = append(details.Lists, m.ListID)
		}
	}
	return details, nil
}

// AddContact implements port.Provider. The member upsert endpoint is keyed on
// the subscriber hash, so repeated adds are idempotent by construction.
func (c *Client) AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	body := memberUpsertRequest{
		EmailAddress: contact.Email,
		StatusIfNew:  memberStatusSubscribed,
		Status:       memberStatusSubscribed,
		MergeFields:  mergeFields(contact),
	}

	var response member
	path := fmt.Sprintf("/lists/%s/members/%s", listID, subscriberHash(contact.Email))
	if err := c.makeRequest(ctx, http.MethodPut, path, body, &response); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "mailchimp contact upserted",
		"email", redaction.RedactEmail(contact.Email),
		"list_id", listID,
	)

	return &model.ContactDetails{
		Email: response.EmailAddress,
		Name:  response.FullName,
		Lists: []string{listID},
	}, nil
}

// UpdateContactLists implements port.Provider. Additions upsert the member as
// subscribed; removals flip the member to unsubscribed on that audience.
func (c *Client) UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error {
	for _, listID := range listsToAdd {
		if _, err := c.AddContact(ctx, model.Contact{Email: email}, listID); err != nil {
			return err
		}
	}

	for _, listID := range listsToRemove {
		body := map[string]string{"status": "unsubscribed"}
		path := fmt.Sprintf("/lists/%s/members/%s", listID, subscriberHash(email))
		if err := c.makeRequest(ctx, http.MethodPatch, path, body, nil); err != nil {
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

// GetTagID implements port.Provider. Tags are static segments scoped to one
// audience; the returned ID is the segment's numeric ID as a string.
func (c *Client) GetTagID(ctx context.Context, tagName, listID string, createIfMissing bool) (string, error) {
	var response segmentsResponse
	path := fmt.Sprintf("/lists/%s/segments?type=static&count=1000", listID)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return "", err
	}

	for _, seg := range response.Segments {
		if seg.Name == tagName {
			return strconv.Itoa(seg.ID), nil
		}
	}

	if !createIfMissing {
		return "", errs.NewNotFound(fmt.Sprintf("tag %q not found in mailchimp", tagName))
	}
	return c.CreateTag(ctx, tagName, listID)
}

// CreateTag implements port.Provider.
func (c *Client) CreateTag(ctx context.Context, tagName, listID string) (string, error) {
	body := segmentCreateRequest{Name: tagName, StaticSegment: []string{}}

	var response segment
	path := fmt.Sprintf("/lists/%s/segments", listID)
	if err := c.makeRequest(ctx, http.MethodPost, path, body, &response); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "mailchimp tag created", "tag", tagName, "list_id", listID, "segment_id", response.ID)
	return strconv.Itoa(response.ID), nil
}

// AddTagToContact implements port.Provider. Adding a member to a static
// segment upserts them onto the audience as well.
func (c *Client) AddTagToContact(ctx context.Context, email, tagID, listID string) error {
	body := segmentMemberRequest{EmailAddress: email}
	path := fmt.Sprintf("/lists/%s/segments/%s/members", listID, tagID)
	return c.makeRequest(ctx, http.MethodPost, path, body, nil)
}

// RemoveTagFromContact implements port.Provider.
func (c *Client) RemoveTagFromContact(ctx context.Context, email, tagID, listID string) error {
	path := fmt.Sprintf("/lists/%s/segments/%s/members/%s", listID, tagID, subscriberHash(email))
	return c.makeRequest(ctx, http.MethodDelete, path, nil, nil)
}

// GetContactTagIDs implements port.Provider.
func (c *Client) GetContactTagIDs(ctx context.Context, email, listID string) ([]string, error) {
	var response memberTagsResponse
	path := fmt.Sprintf("/lists/%s/members/%s/tags?count=1000", listID, subscriberHash(email))
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}

	tagIDs := make([]string, 0, len(response.Tags))
	for _, tag := range response.Tags {
		tagIDs = append(tagIDs, strconv.Itoa(tag.ID))
	}
	return tagIDs, nil
}

// Send implements port.Provider. One campaign is created and sent per target
// audience; a failure partway leaves earlier campaigns sent.
func (c *Client) Send(ctx context.Context, newsletter *model.Newsletter) error {
	if len(newsletter.ListIDs) == 0 {
		return errs.NewValidation("newsletter has no target lists")
	}

	for _, listID := range newsletter.ListIDs {
		body := campaignCreateRequest{
			Type:       "regular",
			Recipients: campaignRecipients{ListID: listID},
			Settings: campaignSettings{
				SubjectLine: newsletter.Title,
				Title:       newsletter.Title,
			},
		}

		var created campaign
		if err := c.makeRequest(ctx, http.MethodPost, "/campaigns", body, &created); err != nil {
			return err
		}

		path := fmt.Sprintf("/campaigns/%s/actions/send", created.ID)
		if err := c.makeRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
			return err
		}

		slog.InfoContext(ctx, "mailchimp campaign sent",
			"newsletter_id", newsletter.ID,
			"campaign_id", created.ID,
			"list_id", listID,
		)
	}

	return nil
}

// GetUsageReport implements port.Provider. Delivery counters come from the
// campaign reports endpoint and the contact total from the audience stats.
func (c *Client) GetUsageReport(ctx context.Context) (*model.UsageReport, error) {
	var reports reportsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/reports?count=1000", nil, &reports); err != nil {
		return nil, err
	}

	var lists listsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/lists?count=1000", nil, &lists); err != nil {
		return nil, err
	}

	report := &model.UsageReport{
		Provider: constants.ProviderMailchimp,
		Date:     time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
	}
	for _, r := range reports.Reports {
		report.EmailsSent += int64(r.EmailsSent)
		report.Opens += int64(r.Opens.OpensTotal)
		report.Clicks += int64(r.Clicks.ClicksTotal)
	}
	for _, audience := range lists.Lists {
		report.TotalContacts += int64(audience.Stats.MemberCount)
	}

	return report, nil
}

// makeRequest centralizes all API calls with authentication and error mapping.
func (c *Client) makeRequest(ctx context.Context, method, path string, body any, result any) error {
	c.mu.RLock()
	baseURL := c.baseURL
	c.mu.RUnlock()
	if baseURL == "" {
		return errs.NewConfiguration("mailchimp API key is not configured")
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
		return espapi.MapHTTPError(ctx, constants.ProviderMailchimp, err)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse mailchimp response: %w", err)
		}
	}

	return nil
}

// searchMembers resolves a member across every audience in the account.
func (c *Client) searchMembers(ctx context.Context, email string) ([]member, error) {
	var response searchMembersResponse
	path := "/search-members?query=" + url.QueryEscape(email)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.ExactMatches.Members, nil
}

// subscriberHash is the MD5 of the lowercased email, Mailchimp's member key.
func subscriberHash(email string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(strings.ToLower(email))))
}

func mergeFields(contact model.Contact) map[string]string {
	if contact.Name == "" {
		return nil
	}
	first, last, _ := strings.Cut(contact.Name, " ")
	fields := map[string]string{"FNAME": first}
	if last != "" {
		fields["LNAME"] = last
	}
	return fields
}
