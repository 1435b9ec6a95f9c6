// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package manual implements the provider contract for publications that copy
// rendered HTML into an external tool by hand. Nothing is managed through an
// API, so the contact operations are deliberate no-op successes rather than
// NotImplemented failures: callers treat the sync as done.
package manual

import (
	"context"
	"log/slog"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

// Provider is the manual, API-less provider.
type Provider struct {
	port.UnimplementedProvider
}

var _ port.Provider = (*Provider)(nil)

// NewProvider creates the manual provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name implements port.Provider.
func (p *Provider) Name() string {
	return constants.ProviderManual
}

// SupportsLocalLists implements port.Provider.
func (p *Provider) SupportsLocalLists() bool {
	return false
}

// HasAPICredentials implements port.Provider. There is nothing to configure.
func (p *Provider) HasAPICredentials() bool {
	return true
}

// SetAPICredentials implements port.Provider.
func (p *Provider) SetAPICredentials(_ context.Context, _ map[string]string) error {
	return nil
}

// GetLists implements port.Provider. There are no managed lists.
func (p *Provider) GetLists(_ context.Context) ([]model.ProviderList, error) {
	return nil, nil
}

// GetContact implements port.Provider. Contacts are not tracked anywhere, so
// every lookup succeeds with an empty membership and list updates flow
// through as accepted no-ops instead of fresh signups.
func (p *Provider) GetContact(_ context.Context, email string) (*model.ContactDetails, error) {
	return &model.ContactDetails{Email: email}, nil
}

// GetContactLists implements port.Provider.
func (p *Provider) GetContactLists(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

// AddContact implements port.Provider. Membership is tracked wherever the
// operator keeps it, so the call succeeds without side effects.
func (p *Provider) AddContact(_ context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	return &model.ContactDetails{
		Email: contact.Email,
		Name:  contact.Name,
		Lists: []string{listID},
	}, nil
}

// UpdateContactLists implements port.Provider.
func (p *Provider) UpdateContactLists(_ context.Context, _ string, _, _ []string) error {
	return nil
}

// Send implements port.Provider. Delivery happens out of band; the success
// here is what lets the send gate record the newsletter as sent.
func (p *Provider) Send(ctx context.Context, newsletter *model.Newsletter) error {
	slog.InfoContext(ctx, "newsletter marked for manual delivery", "newsletter_id", newsletter.ID)
	return nil
}
