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

func newSendGateFixture() (*SendGate, *mock.Provider, *mock.NewsletterStore) {
	provider := mock.NewProvider(constants.ProviderLetterhead, false)
	store := mock.NewNewsletterStore()
	store.AddNewsletter(&model.Newsletter{ID: "n1", Title: "Issue 42"})
	return NewSendGate(provider, store, store), provider, store
}

func TestSendDeliversExactlyOnce(t *testing.T) {
	gate, provider, _ := newSendGateFixture()
	ctx := context.Background()

	require.NoError(t, gate.Send(ctx, "n1"))

	err := gate.Send(ctx, "n1")
	require.Error(t, err)
	assert.IsType(t, errs.Conflict{}, err)
	// The second attempt never reached the provider.
	assert.Equal(t, []string{"n1"}, provider.SentNewsletters)
}

// stallingProvider holds Send open until released, so a test can overlap a
// second send attempt with one still in flight.
type stallingProvider struct {
	*mock.Provider
	entered chan struct{}
	release chan struct{}
}

func (p *stallingProvider) Send(ctx context.Context, newsletter *model.Newsletter) error {
	close(p.entered)
	<-p.release
	return p.Provider.Send(ctx, newsletter)
}

func TestSendConcurrentRequestsDeliverOnce(t *testing.T) {
	provider := &stallingProvider{
		Provider: mock.NewProvider(constants.ProviderLetterhead, false),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	store := mock.NewNewsletterStore()
	store.AddNewsletter(&model.Newsletter{ID: "n1", Title: "Issue 42"})
	gate := NewSendGate(provider, store, store)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() { firstDone <- gate.Send(ctx, "n1") }()
	<-provider.entered

	// The first request holds the sent marker while still inside the
	// provider call, so the second must stop at the marker.
	err := gate.Send(ctx, "n1")
	require.Error(t, err)
	assert.IsType(t, errs.Conflict{}, err)

	close(provider.release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, []string{"n1"}, provider.SentNewsletters)
}

func TestSendUnknownNewsletter(t *testing.T) {
	gate, provider, _ := newSendGateFixture()

	err := gate.Send(context.Background(), "missing")
	require.Error(t, err)
	assert.IsType(t, errs.NotFound{}, err)
	assert.Empty(t, provider.SentNewsletters)
}

func TestSendFailureIsRecordedAndRetryable(t *testing.T) {
	gate, provider, _ := newSendGateFixture()
	ctx := context.Background()
	provider.FailWith("Send", errs.NewProvider("delivery_failed", "smtp relay refused"))

	err := gate.Send(ctx, "n1")
	require.Error(t, err)

	lastErr, err := gate.LastSendError(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, lastErr)
	assert.Contains(t, lastErr.Message, "smtp relay refused")

	// A failed send leaves no sent marker, so a retry can go through.
	provider.FailWith("Send", nil)
	require.NoError(t, gate.Send(ctx, "n1"))
	assert.Equal(t, []string{"n1"}, provider.SentNewsletters)
}

func TestSendErrorLogIsBounded(t *testing.T) {
	gate, provider, store := newSendGateFixture()
	ctx := context.Background()

	for i := 0; i < model.MaxSendErrorLogEntries+5; i++ {
		provider.FailWith("Send", errs.NewProvider("delivery_failed", fmt.Sprintf("attempt %d", i)))
		require.Error(t, gate.Send(ctx, "n1"))
	}

	state, err := store.GetSendState(ctx, "n1")
	require.NoError(t, err)
	assert.Len(t, state.Errors, model.MaxSendErrorLogEntries)
	// Oldest entries were trimmed; the newest failure is last.
	assert.Contains(t, state.Errors[len(state.Errors)-1].Message, fmt.Sprintf("attempt %d", model.MaxSendErrorLogEntries+4))
}

func TestLastSendErrorEmpty(t *testing.T) {
	gate, _, _ := newSendGateFixture()

	lastErr, err := gate.LastSendError(context.Background(), "n1")
	require.NoError(t, err)
	assert.Nil(t, lastErr)
}

func TestUpdateTestEmails(t *testing.T) {
	testCases := []struct {
		name        string
		userID      string
		emails      []string
		expectError bool
	}{
		{name: "valid addresses", userID: "u1", emails: []string{"a@example.com", "b@example.com"}},
		{name: "clearing the list", userID: "u1", emails: nil},
		{name: "missing user id", emails: []string{"a@example.com"}, expectError: true},
		{name: "empty address", userID: "u1", emails: []string{"a@example.com", ""}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gate, _, _ := newSendGateFixture()
			ctx := context.Background()

			err := gate.UpdateTestEmails(ctx, tc.userID, tc.emails)

			if tc.expectError {
				require.Error(t, err)
				assert.IsType(t, errs.Validation{}, err)
				return
			}
			require.NoError(t, err)
			stored, err := gate.TestEmails(ctx, tc.userID)
			require.NoError(t, err)
			assert.Equal(t, len(tc.emails), len(stored))
		})
	}
}
