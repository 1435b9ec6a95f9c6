// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package mock provides in-memory implementations of the domain ports for
// service-layer tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// UpdateContactListsCall records one native bulk update received by the mock.
type UpdateContactListsCall struct {
	Email         string
	ListsToAdd    []string
	ListsToRemove []string
}

// TagCall records one tag mutation received by the mock.
type TagCall struct {
	Email  string
	TagID  string
	ListID string
}

// Provider is an in-memory ESP double. It keeps real membership state so
// idempotency is observable, and records every mutating call for assertions.
type Provider struct {
	name              string
	supportsLocal     bool
	hasCredentials    bool
	contacts          map[string]*model.ContactDetails
	tags              map[string]map[string][]string // listID -> tagID -> emails
	lists             []model.ProviderList
	usageReport       *model.UsageReport
	failures          map[string]error

	AddContactCalls         []string
	UpdateContactListsCalls []UpdateContactListsCall
	AddTagCalls             []TagCall
	RemoveTagCalls          []TagCall
	SentNewsletters         []string

	mu sync.Mutex
}

// NewProvider creates a mock provider.
func NewProvider(name string, supportsLocalLists bool) *Provider {
	return &Provider{
		name:           name,
		supportsLocal:  supportsLocalLists,
		hasCredentials: true,
		contacts:       make(map[string]*model.ContactDetails),
		tags:           make(map[string]map[string][]string),
		failures:       make(map[string]error),
	}
}

// FailWith injects an error for the named operation.
func (p *Provider) FailWith(operation string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[operation] = err
}

// SeedContact installs a contact with existing native list memberships.
func (p *Provider) SeedContact(email string, lists ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contacts[email] = &model.ContactDetails{Email: email, Lists: lists}
}

// SeedLists installs the provider-native list catalog.
func (p *Provider) SeedLists(lists ...model.ProviderList) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = lists
}

// SetUsageReport installs the report returned by GetUsageReport.
func (p *Provider) SetUsageReport(report *model.UsageReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.usageReport = report
}

// SetCredentials toggles the stored-credentials check.
func (p *Provider) SetCredentials(has bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasCredentials = has
}

// ContactListsOf returns the current native memberships for assertions.
func (p *Provider) ContactListsOf(email string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if contact, ok := p.contacts[email]; ok {
		return append([]string(nil), contact.Lists...)
	}
	return nil
}

// TagMembers returns the emails carrying a tag on a list, for assertions.
func (p *Provider) TagMembers(listID, tagID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tags[listID][tagID]...)
}

// MutationCount totals the mutating provider calls received.
func (p *Provider) MutationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.AddContactCalls) + len(p.UpdateContactListsCalls) +
		len(p.AddTagCalls) + len(p.RemoveTagCalls)
}

func (p *Provider) failure(operation string) error {
	return p.failures[operation]
}

// Name implements port.Provider.
func (p *Provider) Name() string {
	return p.name
}

// SupportsLocalLists implements port.Provider.
func (p *Provider) SupportsLocalLists() bool {
	return p.supportsLocal
}

// HasAPICredentials implements port.Provider.
func (p *Provider) HasAPICredentials() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasCredentials
}

// SetAPICredentials implements port.Provider.
func (p *Provider) SetAPICredentials(_ context.Context, credentials map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(credentials) == 0 {
		return errs.NewConfiguration("credentials are required")
	}
	p.hasCredentials = true
	return nil
}

// GetLists implements port.Provider.
func (p *Provider) GetLists(context.Context) ([]model.ProviderList, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("GetLists"); err != nil {
		return nil, err
	}
	return append([]model.ProviderList(nil), p.lists...), nil
}

// GetContact implements port.Provider.
func (p *Provider) GetContact(_ context.Context, email string) (*model.ContactDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("GetContact"); err != nil {
		return nil, err
	}
	contact, ok := p.contacts[email]
	if !ok {
		return nil, errs.NewNotFound("contact not found")
	}
	copied := *contact
	copied.Lists = append([]string(nil), contact.Lists...)
	return &copied, nil
}

// AddContact implements port.Provider. Repeated adds to the same list leave a
// single membership record.
func (p *Provider) AddContact(_ context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("AddContact"); err != nil {
		return nil, err
	}

	p.AddContactCalls = append(p.AddContactCalls, listID)

	existing, ok := p.contacts[contact.Email]
	if !ok {
		existing = &model.ContactDetails{Email: contact.Email, Name: contact.Name, Metadata: contact.Metadata}
		p.contacts[contact.Email] = existing
	}
	if !contains(existing.Lists, listID) {
		existing.Lists = append(existing.Lists, listID)
	}

	copied := *existing
	copied.Lists = append([]string(nil), existing.Lists...)
	return &copied, nil
}

// UpdateContactLists implements port.Provider.
func (p *Provider) UpdateContactLists(_ context.Context, email string, listsToAdd, listsToRemove []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("UpdateContactLists"); err != nil {
		return err
	}

	p.UpdateContactListsCalls = append(p.UpdateContactListsCalls, UpdateContactListsCall{
		Email:         email,
		ListsToAdd:    append([]string(nil), listsToAdd...),
		ListsToRemove: append([]string(nil), listsToRemove...),
	})

	contact, ok := p.contacts[email]
	if !ok {
		return errs.NewNotFound("contact not found")
	}
	for _, id := range listsToAdd {
		if !contains(contact.Lists, id) {
			contact.Lists = append(contact.Lists, id)
		}
	}
	for _, id := range listsToRemove {
		contact.Lists = remove(contact.Lists, id)
	}
	return nil
}

// GetContactLists implements port.Provider.
func (p *Provider) GetContactLists(_ context.Context, email string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("GetContactLists"); err != nil {
		return nil, err
	}
	contact, ok := p.contacts[email]
	if !ok {
		return nil, errs.NewNotFound("contact not found")
	}
	return append([]string(nil), contact.Lists...), nil
}

// GetTagID implements port.Provider.
func (p *Provider) GetTagID(_ context.Context, tagName, listID string, createIfMissing bool) (string, error) {
	if !p.supportsLocal {
		return "", errs.NewNotImplemented("tags are not supported by this provider")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for tagID := range p.tags[listID] {
		if tagID == tagName {
			return tagID, nil
		}
	}
	if !createIfMissing {
		return "", errs.NewNotFound(fmt.Sprintf("tag %q not found", tagName))
	}
	if p.tags[listID] == nil {
		p.tags[listID] = map[string][]string{}
	}
	p.tags[listID][tagName] = nil
	return tagName, nil
}

// CreateTag implements port.Provider.
func (p *Provider) CreateTag(ctx context.Context, tagName, listID string) (string, error) {
	return p.GetTagID(ctx, tagName, listID, true)
}

// AddTagToContact implements port.Provider. Tagging twice leaves one entry.
func (p *Provider) AddTagToContact(_ context.Context, email, tagID, listID string) error {
	if !p.supportsLocal {
		return errs.NewNotImplemented("tags are not supported by this provider")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("AddTagToContact"); err != nil {
		return err
	}

	p.AddTagCalls = append(p.AddTagCalls, TagCall{Email: email, TagID: tagID, ListID: listID})

	if p.tags[listID] == nil {
		p.tags[listID] = map[string][]string{}
	}
	if !contains(p.tags[listID][tagID], email) {
		p.tags[listID][tagID] = append(p.tags[listID][tagID], email)
	}

	// Tagging upserts the member onto the audience, like the real APIs do.
	contact, ok := p.contacts[email]
	if !ok {
		contact = &model.ContactDetails{Email: email}
		p.contacts[email] = contact
	}
	if !contains(contact.Lists, listID) {
		contact.Lists = append(contact.Lists, listID)
	}
	return nil
}

// RemoveTagFromContact implements port.Provider.
func (p *Provider) RemoveTagFromContact(_ context.Context, email, tagID, listID string) error {
	if !p.supportsLocal {
		return errs.NewNotImplemented("tags are not supported by this provider")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("RemoveTagFromContact"); err != nil {
		return err
	}

	p.RemoveTagCalls = append(p.RemoveTagCalls, TagCall{Email: email, TagID: tagID, ListID: listID})

	if p.tags[listID] != nil {
		p.tags[listID][tagID] = remove(p.tags[listID][tagID], email)
	}
	return nil
}

// GetContactTagIDs implements port.Provider.
func (p *Provider) GetContactTagIDs(_ context.Context, email, listID string) ([]string, error) {
	if !p.supportsLocal {
		return nil, errs.NewNotImplemented("tags are not supported by this provider")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("GetContactTagIDs"); err != nil {
		return nil, err
	}
	var tagIDs []string
	for tagID, emails := range p.tags[listID] {
		if contains(emails, email) {
			tagIDs = append(tagIDs, tagID)
		}
	}
	return tagIDs, nil
}

// Send implements port.Provider.
func (p *Provider) Send(_ context.Context, newsletter *model.Newsletter) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("Send"); err != nil {
		return err
	}
	p.SentNewsletters = append(p.SentNewsletters, newsletter.ID)
	return nil
}

// GetUsageReport implements port.Provider.
func (p *Provider) GetUsageReport(context.Context) (*model.UsageReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failure("GetUsageReport"); err != nil {
		return nil, err
	}
	if p.usageReport == nil {
		return nil, errs.NewNotImplemented("usage reporting is not supported by this provider")
	}
	report := *p.usageReport
	report.Provider = p.name
	return &report, nil
}

// DefaultProviderName is the mock's conventional registry name.
const DefaultProviderName = constants.ProviderMailchimp

func contains(haystack []string, needle string) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

func remove(haystack []string, needle string) []string {
	out := haystack[:0]
	for _, item := range haystack {
		if item != needle {
			out = append(out, item)
		}
	}
	return out
}
