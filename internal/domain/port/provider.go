// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// Provider is the contract every ESP integration satisfies. Implementations
// catch transport and authentication failures at their boundary and convert
// them to the typed errors in pkg/errors; raw transport errors never escape.
//
// List identifiers passed to these methods are always provider-native. The
// sync engine resolves local list identifiers before calling in.
type Provider interface {
	// Name returns the provider's registry name.
	Name() string

	// SupportsLocalLists reports whether the provider can emulate local list
	// membership through tags. When false, callers must never invoke the tag
	// primitives: the native list mechanism is the only source of truth.
	SupportsLocalLists() bool

	// HasAPICredentials is a pure check of locally stored credentials, no
	// network call.
	HasAPICredentials() bool

	// SetAPICredentials validates shape before persisting and fails fast with
	// a Configuration error naming the missing fields.
	SetAPICredentials(ctx context.Context, credentials map[string]string) error

	// GetLists fetches the provider's native lists, cached in-process for the
	// duration of a request.
	GetLists(ctx context.Context) ([]model.ProviderList, error)

	// GetContact looks up a contact by email, including current native list
	// memberships. Returns NotFound when the contact does not exist.
	GetContact(ctx context.Context, email string) (*model.ContactDetails, error)

	// AddContact upserts a contact's presence on a single native list. Safe to
	// call repeatedly: a second call with the same list yields the same final
	// membership state, never a duplicate entry.
	AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error)

	// UpdateContactLists performs a bulk add/remove against native lists only.
	UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error

	// GetContactLists returns the native list IDs the contact is a member of.
	GetContactLists(ctx context.Context, email string) ([]string, error)

	// Tag primitives. Only meaningful when SupportsLocalLists is true;
	// otherwise they return NotImplemented.
	GetTagID(ctx context.Context, tagName string, listID string, createIfMissing bool) (string, error)
	CreateTag(ctx context.Context, tagName string, listID string) (string, error)
	AddTagToContact(ctx context.Context, email, tagID, listID string) error
	RemoveTagFromContact(ctx context.Context, email, tagID, listID string) error
	GetContactTagIDs(ctx context.Context, email, listID string) ([]string, error)

	// Send triggers delivery of a newsletter to its resolved audience. Called
	// at most once per newsletter, enforced by the send gate, not here.
	Send(ctx context.Context, newsletter *model.Newsletter) error

	// GetUsageReport returns the provider's counters for the last full day.
	GetUsageReport(ctx context.Context) (*model.UsageReport, error)
}

// UnimplementedProvider supplies NotImplemented defaults for every optional
// operation. Provider variants embed it and override what they support, so an
// unsupported capability is a static, predictable response rather than a
// runtime surprise.
type UnimplementedProvider struct{}

// GetLists returns a NotImplemented error.
func (UnimplementedProvider) GetLists(context.Context) ([]model.ProviderList, error) {
	return nil, errs.NewNotImplemented("listing audiences is not supported by this provider")
}

// GetContact returns a NotImplemented error.
func (UnimplementedProvider) GetContact(context.Context, string) (*model.ContactDetails, error) {
	return nil, errs.NewNotImplemented("contact lookup is not supported by this provider")
}

// AddContact returns a NotImplemented error.
func (UnimplementedProvider) AddContact(context.Context, model.Contact, string) (*model.ContactDetails, error) {
	return nil, errs.NewNotImplemented("adding contacts is not supported by this provider")
}

// UpdateContactLists returns a NotImplemented error.
func (UnimplementedProvider) UpdateContactLists(context.Context, string, []string, []string) error {
	return errs.NewNotImplemented("updating contact lists is not supported by this provider")
}

// GetContactLists returns a NotImplemented error.
func (UnimplementedProvider) GetContactLists(context.Context, string) ([]string, error) {
	return nil, errs.NewNotImplemented("listing contact lists is not supported by this provider")
}

// GetTagID returns a NotImplemented error.
func (UnimplementedProvider) GetTagID(context.Context, string, string, bool) (string, error) {
	return "", errs.NewNotImplemented("tags are not supported by this provider")
}

// CreateTag returns a NotImplemented error.
func (UnimplementedProvider) CreateTag(context.Context, string, string) (string, error) {
	return "", errs.NewNotImplemented("tags are not supported by this provider")
}

// AddTagToContact returns a NotImplemented error.
func (UnimplementedProvider) AddTagToContact(context.Context, string, string, string) error {
	return errs.NewNotImplemented("tags are not supported by this provider")
}

// RemoveTagFromContact returns a NotImplemented error.
func (UnimplementedProvider) RemoveTagFromContact(context.Context, string, string, string) error {
	return errs.NewNotImplemented("tags are not supported by this provider")
}

// GetContactTagIDs returns a NotImplemented error.
func (UnimplementedProvider) GetContactTagIDs(context.Context, string, string) ([]string, error) {
	return nil, errs.NewNotImplemented("tags are not supported by this provider")
}

// Send returns a NotImplemented error.
func (UnimplementedProvider) Send(context.Context, *model.Newsletter) error {
	return errs.NewNotImplemented("sending is not supported by this provider")
}

// GetUsageReport returns a NotImplemented error.
func (UnimplementedProvider) GetUsageReport(context.Context) (*model.UsageReport, error) {
	return nil, errs.NewNotImplemented("usage reporting is not supported by this provider")
}
