// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package constantcontact implements the provider contract against the
// Constant Contact v3 API. Only native lists are covered; the v3 tag model is
// account-wide and too coarse for local list emulation, so the tag primitives
// stay NotImplemented.
package constantcontact

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/espapi"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
)

// tokenCache holds the current OAuth access token and its expiry.
type tokenCache struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// Client handles the Constant Contact list and contact operations.
type Client struct {
	port.UnimplementedProvider

	config     Config
	httpClient *httpclient.Client
	tokens     tokenCache
	mu         sync.RWMutex
}

var _ port.Provider = (*Client)(nil)

// NewClient creates a new Constant Contact client with the given
// configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}

	httpConfig := httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}

	return &Client{
		config:     cfg,
		httpClient: httpclient.NewClient(httpConfig),
	}
}

// Name implements port.Provider.
func (c *Client) Name() string {
	return constants.ProviderConstantContact
}

// SupportsLocalLists implements port.Provider.
func (c *Client) SupportsLocalLists() bool {
	return false
}

// HasAPICredentials implements port.Provider.
func (c *Client) HasAPICredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.ClientID != "" && c.config.ClientSecret != "" && c.config.RefreshToken != ""
}

// SetAPICredentials implements port.Provider. A credential change invalidates
// the cached access token.
func (c *Client) SetAPICredentials(ctx context.Context, credentials map[string]string) error {
	clientID := credentials["client_id"]
	clientSecret := credentials["client_secret"]
	refreshToken := credentials["refresh_token"]
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return errs.NewConfiguration("constant contact credentials require client_id, client_secret and refresh_token")
	}

	c.mu.Lock()
	c.config.ClientID = clientID
	c.config.ClientSecret = clientSecret
	c.config.RefreshToken = refreshToken
	c.mu.Unlock()

	c.tokens.mu.Lock()
	c.tokens.token = ""
	c.tokens.expiry = time.Time{}
	c.tokens.mu.Unlock()

	slog.InfoContext(ctx, "constant contact credentials updated", "client_id", clientID)
	return nil
}

// GetLists implements port.Provider.
func (c *Client) GetLists(ctx context.Context) ([]model.ProviderList, error) {
	var response contactListsResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/contact_lists?include_count=true&limit=1000", nil, &response); err != nil {
		return nil, err
	}

	lists := make([]model.ProviderList, 0, len(response.Lists))
	for _, l := range response.Lists {
		lists = append(lists, model.ProviderList{
			ID:          l.ListID,
			Name:        l.Name,
			MemberCount: l.MembershipCount,
		})
	}
	return lists, nil
}

// GetContact implements port.Provider.
func (c *Client) GetContact(ctx context.Context, email string) (*model.ContactDetails, error) {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return nil, err
	}

	return &model.ContactDetails{
		Email: found.EmailAddress.Address,
		Name:  strings.TrimSpace(found.FirstName + " " + found.LastName),
		Lists: found.ListMemberships,
	}, nil
}

// AddContact implements port.Provider. The sign-up form endpoint upserts by
// email and merges list memberships, matching the idempotency contract.
func (c *Client) AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	body := signUpFormRequest{
		EmailAddress:    contact.Email,
		ListMemberships: []string{listID},
	}
	body.FirstName, body.LastName, _ = strings.Cut(contact.Name, " ")

	if err := c.makeRequest(ctx, http.MethodPost, "/contacts/sign_up_form", body, nil); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "constant contact signup submitted",
		"email", redaction.RedactEmail(contact.Email),
		"list_id", listID,
	)

	return &model.ContactDetails{
		Email: contact.Email,
		Name:  contact.Name,
		Lists: []string{listID},
	}, nil
}

// UpdateContactLists implements port.Provider. Constant Contact replaces the
// membership set wholesale on update, so the new set is computed locally
// first.
func (c *Client) UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error {
	found, err := c.findContact(ctx, email)
	if err != nil {
		return err
	}

	memberships := make([]string, 0, len(found.ListMemberships)+len(listsToAdd))
	for _, listID := range found.ListMemberships {
		if !contains(listsToRemove, listID) {
			memberships = append(memberships, listID)
		}
	}
	for _, listID := range listsToAdd {
		if !contains(memberships, listID) {
			memberships = append(memberships, listID)
		}
	}

	body := contactUpdateRequest{
		EmailAddress:    emailAddress{Address: email, PermissionToSend: "implicit"},
		FirstName:       found.FirstName,
		LastName:        found.LastName,
		ListMemberships: memberships,
		UpdateSource:    "Account",
	}
	return c.makeRequest(ctx, http.MethodPut, "/contacts/"+found.ContactID, body, nil)
}

// GetContactLists implements port.Provider.
func (c *Client) GetContactLists(ctx context.Context, email string) ([]string, error) {
	contact, err := c.GetContact(ctx, email)
	if err != nil {
		return nil, err
	}
	return contact.Lists, nil
}

// findContact resolves a contact by email, including list memberships.
func (c *Client) findContact(ctx context.Context, email string) (*ccContact, error) {
	var response contactsResponse
	path := "/contacts?include=list_memberships&email=" + url.QueryEscape(email)
	if err := c.makeRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	if len(response.Contacts) == 0 {
		return nil, errs.NewNotFound("contact not found in constant contact")
	}
	return &response.Contacts[0], nil
}

// accessToken returns a valid access token, refreshing through the OAuth
// refresh grant when the cached one is missing or expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokens.mu.RLock()
	if c.tokens.token != "" && time.Now().Before(c.tokens.expiry) {
		token := c.tokens.token
		c.tokens.mu.RUnlock()
		return token, nil
	}
	c.tokens.mu.RUnlock()

	c.mu.RLock()
	clientID := c.config.ClientID
	clientSecret := c.config.ClientSecret
	refreshToken := c.config.RefreshToken
	authURL := c.config.AuthURL
	c.mu.RUnlock()

	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	headers := map[string]string{
		"Content-Type":  "application/x-www-form-urlencoded",
		"Authorization": "Basic " + basicCredentials(clientID, clientSecret),
	}

	resp, err := c.httpClient.Request(ctx, http.MethodPost, authURL, strings.NewReader(data.Encode()), headers)
	if err != nil {
		return "", errs.NewUnauthorized("constant contact token refresh failed", err)
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errs.NewUnauthorized("constant contact token response carried no access token")
	}

	expiry := parseTokenExpiry(token.AccessToken)

	c.tokens.mu.Lock()
	c.tokens.token = token.AccessToken
	c.tokens.expiry = expiry
	c.tokens.mu.Unlock()

	// Constant Contact rotates the refresh token on every grant.
	if token.RefreshToken != "" {
		c.mu.Lock()
		c.config.RefreshToken = token.RefreshToken
		c.mu.Unlock()
	}

	slog.InfoContext(ctx, "constant contact access token refreshed",
		"expires_at", expiry.Format(time.RFC3339))

	return token.AccessToken, nil
}

// parseTokenExpiry extracts the expiry from the access token JWT, falling
// back to a short TTL when the token is opaque.
func parseTokenExpiry(token string) time.Time {
	parser := jwt.Parser{}
	claims := jwt.MapClaims{}

	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		slog.Warn("failed to parse access token", "error", err)
		return time.Now().Add(10 * time.Minute)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		slog.Warn("no expiry in access token", "error", err)
		return time.Now().Add(10 * time.Minute)
	}

	// Refresh 1 minute before the provider-side expiry.
	return exp.Time.Add(-1 * time.Minute)
}

// makeRequest centralizes all API calls with token refresh and error mapping.
func (c *Client) makeRequest(ctx context.Context, method, path string, body any, result any) error {
	if !c.HasAPICredentials() {
		return errs.NewConfiguration("constant contact credentials are not configured")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	c.mu.RLock()
	baseURL := c.config.BaseURL
	c.mu.RUnlock()

	var reqBody io.Reader
	headers := map[string]string{"Authorization": "Bearer " + token}
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
		return espapi.MapHTTPError(ctx, constants.ProviderConstantContact, err)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse constant contact response: %w", err)
		}
	}

	return nil
}

func basicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
