// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package letterhead implements the provider contract for the Letterhead
// promotions partner. Letterhead owns the audience on its side, so only
// delivery and usage reporting are exposed; every contact operation stays
// NotImplemented.
package letterhead

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

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/espapi"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/httpclient"
)

type letterCreateRequest struct {
	Title       string   `json:"title"`
	AudienceIDs []string `json:"audienceIds,omitempty"`
}

type dailyReport struct {
	Date          string `json:"date"`
	EmailsSent    int64  `json:"emailsSent"`
	Opens         int64  `json:"opens"`
	Clicks        int64  `json:"clicks"`
	Subscribes    int64  `json:"subscribes"`
	Unsubscribes  int64  `json:"unsubscribes"`
	TotalContacts int64  `json:"totalContacts"`
}

// bearerRoundTripper injects the partner API key on every request.
type bearerRoundTripper struct {
	client *Client
}

func (rt *bearerRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	rt.client.mu.RLock()
	apiKey := rt.client.config.APIKey
	rt.client.mu.RUnlock()
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return next(req)
}

// Client handles Letterhead delivery and reporting.
type Client struct {
	port.UnimplementedProvider

	config     Config
	httpClient *httpclient.Client
	mu         sync.RWMutex
}

var _ port.Provider = (*Client)(nil)

// NewClient creates a new Letterhead client with the given configuration.
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
	client.httpClient.AddRoundTripper(&bearerRoundTripper{client: client})

	return client
}

// Name implements port.Provider.
func (c *Client) Name() string {
	return constants.ProviderLetterhead
}

// SupportsLocalLists implements port.Provider.
func (c *Client) SupportsLocalLists() bool {
	return false
}

// HasAPICredentials implements port.Provider.
func (c *Client) HasAPICredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.APIKey != ""
}

// SetAPICredentials implements port.Provider.
func (c *Client) SetAPICredentials(ctx context.Context, credentials map[string]string) error {
	apiKey := credentials["api_key"]
	if apiKey == "" {
		return errs.NewConfiguration("letterhead credentials require api_key")
	}

	c.mu.Lock()
	c.config.APIKey = apiKey
	c.mu.Unlock()

	slog.InfoContext(ctx, "letterhead credentials updated")
	return nil
}

// Send implements port.Provider.
func (c *Client) Send(ctx context.Context, newsletter *model.Newsletter) error {
	body := letterCreateRequest{
		Title:       newsletter.Title,
		AudienceIDs: newsletter.ListIDs,
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/letters", body, nil); err != nil {
		return err
	}

	slog.InfoContext(ctx, "letterhead letter submitted", "newsletter_id", newsletter.ID)
	return nil
}

// GetUsageReport implements port.Provider.
func (c *Client) GetUsageReport(ctx context.Context) (*model.UsageReport, error) {
	var report dailyReport
	if err := c.makeRequest(ctx, http.MethodGet, "/reports/daily", nil, &report); err != nil {
		return nil, err
	}

	date := report.Date
	if date == "" {
		date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	}

	return &model.UsageReport{
		Provider:      constants.ProviderLetterhead,
		Date:          date,
		EmailsSent:    report.EmailsSent,
		Opens:         report.Opens,
		Clicks:        report.Clicks,
		Subscribes:    report.Subscribes,
		Unsubscribes:  report.Unsubscribes,
		TotalContacts: report.TotalContacts,
	}, nil
}

// makeRequest centralizes all API calls with authentication and error mapping.
func (c *Client) makeRequest(ctx context.Context, method, path string, body any, result any) error {
	if !c.HasAPICredentials() {
		return errs.NewConfiguration("letterhead API key is not configured")
	}

	c.mu.RLock()
	baseURL := c.config.BaseURL
	c.mu.RUnlock()

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
		return espapi.MapHTTPError(ctx, constants.ProviderLetterhead, err)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("failed to parse letterhead response: %w", err)
		}
	}

	return nil
}
