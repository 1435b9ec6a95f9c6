// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package mailchimp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "0123456789abcdef0123456789abcdef-us14"
	cfg.BaseURL = server.URL
	cfg.MaxRetries = 0
	cfg.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "datacenter derived from key suffix",
			config:   Config{APIKey: "abc123-us14"},
			expected: "https://us14.api.mailchimp.com/3.0",
		},
		{
			name:     "explicit override wins",
			config:   Config{APIKey: "abc123-us14", BaseURL: "http://localhost:9999"},
			expected: "http://localhost:9999",
		},
		{
			name:     "key without datacenter yields no URL",
			config:   Config{APIKey: "abc123"},
			expected: "",
		},
		{
			name:     "trailing dash yields no URL",
			config:   Config{APIKey: "abc123-"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveBaseURL(tt.config))
		})
	}
}

func TestSubscriberHash(t *testing.T) {
	// Hashing is case-insensitive on the email.
	assert.Equal(t, subscriberHash("reader@example.com"), subscriberHash("Reader@Example.COM"))
	assert.Len(t, subscriberHash("reader@example.com"), 32)
}

func TestSetAPICredentials(t *testing.T) {
	tests := []struct {
		name        string
		credentials map[string]string
		wantErr     bool
	}{
		{
			name:        "valid key with datacenter",
			credentials: map[string]string{"api_key": "abc123-us14"},
		},
		{
			name:        "missing api_key",
			credentials: map[string]string{},
			wantErr:     true,
		},
		{
			name:        "key without datacenter suffix",
			credentials: map[string]string{"api_key": "abc123"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(DefaultConfig())
			err := client.SetAPICredentials(context.Background(), tt.credentials)
			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, errs.Configuration{}, err)
				assert.False(t, client.HasAPICredentials())
				return
			}
			require.NoError(t, err)
			assert.True(t, client.HasAPICredentials())
		})
	}
}

func TestAddContactUpsertsBySubscriberHash(t *testing.T) {
	var gotPath string
	var gotBody memberUpsertRequest

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "anystring", user)
		assert.NotEmpty(t, pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(member{EmailAddress: gotBody.EmailAddress})
	}))

	details, err := client.AddContact(context.Background(), model.Contact{
		Email: "reader@example.com",
		Name:  "Avery Reader",
	}, "list-1")
	require.NoError(t, err)

	assert.Equal(t, "/lists/list-1/members/"+subscriberHash("reader@example.com"), gotPath)
	assert.Equal(t, "subscribed", gotBody.StatusIfNew)
	assert.Equal(t, "Avery", gotBody.MergeFields["FNAME"])
	assert.Equal(t, "Reader", gotBody.MergeFields["LNAME"])
	assert.Equal(t, []string{"list-1"}, details.Lists)
}

func TestGetContactResolvesSubscribedAudiences(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search-members", r.URL.Path)
		response := searchMembersResponse{}
		response.ExactMatches.Members = []member{
			{EmailAddress: "reader@example.com", Status: "subscribed", ListID: "L1"},
			{EmailAddress: "reader@example.com", Status: "unsubscribed", ListID: "L2"},
			{EmailAddress: "reader@example.com", Status: "subscribed", ListID: "L3"},
		}
		_ = json.NewEncoder(w).Encode(response)
	}))

	details, err := client.GetContact(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L3"}, details.Lists)
}

func TestGetContactEscapesPlusAddressedEmail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An unescaped "+" decodes to a space and the lookup misses.
		require.Equal(t, "reader+news@example.com", r.URL.Query().Get("query"))
		response := searchMembersResponse{}
		response.ExactMatches.Members = []member{
			{EmailAddress: "reader+news@example.com", Status: "subscribed", ListID: "L1"},
		}
		_ = json.NewEncoder(w).Encode(response)
	}))

	details, err := client.GetContact(context.Background(), "reader+news@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, details.Lists)
}

func TestGetContactNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(searchMembersResponse{})
	}))

	_, err := client.GetContact(context.Background(), "stranger@example.com")
	require.Error(t, err)
	assert.IsType(t, errs.NotFound{}, err)
}

func TestGetTagIDCreatesWhenMissing(t *testing.T) {
	var created segmentCreateRequest

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(segmentsResponse{Segments: []segment{{ID: 11, Name: "other-tag"}}})
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_ = json.NewEncoder(w).Encode(segment{ID: 42, Name: created.Name})
		}
	}))

	tagID, err := client.GetTagID(context.Background(), "weekly-digest", "L1", true)
	require.NoError(t, err)
	assert.Equal(t, "42", tagID)
	assert.Equal(t, "weekly-digest", created.Name)
}

func TestGetTagIDMissingWithoutCreate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(segmentsResponse{})
	}))

	_, err := client.GetTagID(context.Background(), "weekly-digest", "L1", false)
	require.Error(t, err)
	assert.IsType(t, errs.NotFound{}, err)
}

func TestProviderErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{name: "404 maps to not found", status: http.StatusNotFound, expected: errs.NotFound{}},
		{name: "401 maps to unauthorized", status: http.StatusUnauthorized, expected: errs.Unauthorized{}},
		{name: "500 maps to service unavailable", status: http.StatusInternalServerError, expected: errs.ServiceUnavailable{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.GetLists(context.Background())
			require.Error(t, err)
			assert.IsType(t, tt.expected, err)
		})
	}
}

func TestMakeRequestWithoutCredentials(t *testing.T) {
	client := NewClient(DefaultConfig())

	_, err := client.GetLists(context.Background())
	require.Error(t, err)
	assert.IsType(t, errs.Configuration{}, err)
}
