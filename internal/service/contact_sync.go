// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package service implements the contact list synchronization core: the sync
// engine, provider registry, commerce membership bridge, bulk resync driver,
// and the newsletter send gate.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
)

// ListAction selects the tag operation applied while walking local lists.
type ListAction string

const (
	// ActionAdd tags the contact with each local list's marker.
	ActionAdd ListAction = "add"
	// ActionRemove removes each local list's marker from the contact.
	ActionRemove ListAction = "remove"
)

// SyncContext carries request-scoped identity through the call chain instead
// of module-level mutable state. ActingUserID takes precedence over the
// ambient logged-in user when set, which happens while processing a membership
// grant for a not-yet-logged-in registrant.
type SyncContext struct {
	ActingUserID string
}

// ContactSyncEngine mutates a contact's list memberships through the active
// provider, resolving local list identifiers to provider settings first. The
// active provider is an explicit constructor dependency, never an ambient
// lookup.
type ContactSyncEngine struct {
	provider port.Provider
	registry port.ListRegistry
}

// NewContactSyncEngine creates the engine for one active provider.
func NewContactSyncEngine(provider port.Provider, registry port.ListRegistry) *ContactSyncEngine {
	return &ContactSyncEngine{
		provider: provider,
		registry: registry,
	}
}

// Provider exposes the active provider for callers that need capability checks.
func (e *ContactSyncEngine) Provider() port.Provider {
	return e.provider
}

// AddContact upserts a contact onto a single list, local or provider-native.
// For a local list the contact lands on the configured native list and, when
// the provider emulates local lists, is additionally tagged with the list's
// marker. A tagging failure after a successful native add is still reported as
// an error: the local-list bookkeeping is part of the contract.
func (e *ContactSyncEngine) AddContact(ctx context.Context, contact model.Contact, listID string) (*model.ContactDetails, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	if !model.IsLocalListID(listID) {
		return e.provider.AddContact(ctx, contact, listID)
	}

	list, err := e.registry.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	settings, err := list.ProviderSettings(e.provider.Name())
	if err != nil {
		return nil, err
	}

	details, err := e.provider.AddContact(ctx, contact, settings.List)
	if err != nil {
		return nil, err
	}

	if e.provider.SupportsLocalLists() {
		if err := e.provider.AddTagToContact(ctx, contact.Email, settings.TagID, settings.List); err != nil {
			slog.ErrorContext(ctx, "contact added but local list tagging failed",
				"email", redaction.RedactEmail(contact.Email),
				"form_id", listID,
				"tag_id", settings.TagID,
				"error", err,
			)
			return details, err
		}
	}

	slog.DebugContext(ctx, "contact added",
		"email", redaction.RedactEmail(contact.Email),
		"form_id", listID,
		"provider_list", settings.List,
	)

	return details, nil
}

// UpdateContactLists applies a batch of list additions and removals, either
// side of which may mix local and provider-native identifiers. Local
// identifiers are consumed here, as tag operations, before whatever remains is
// handed to the provider's native bulk call: a local identifier never reaches
// the provider.
//
// A contact unknown to the provider is treated as a fresh signup: each target
// list goes through AddContact and removals are skipped, since there is no
// membership to remove.
//
// There is no transactionality: a failure partway through the batch returns
// immediately and earlier mutations stay committed.
func (e *ContactSyncEngine) UpdateContactLists(ctx context.Context, email string, listsToAdd, listsToRemove []string) error {
	_, err := e.provider.GetContact(ctx, email)
	if err != nil {
		var notFound errs.NotFound
		if !errors.As(err, &notFound) {
			return err
		}

		slog.DebugContext(ctx, "contact not found, treating as fresh signup",
			"email", redaction.RedactEmail(email),
			"lists_to_add", len(listsToAdd),
		)
		contact := model.Contact{Email: email}
		for _, listID := range listsToAdd {
			if _, err := e.AddContact(ctx, contact, listID); err != nil {
				return err
			}
		}
		return nil
	}

	if e.provider.SupportsLocalLists() {
		listsToAdd, err = e.UpdateContactLocalLists(ctx, email, listsToAdd, ActionAdd)
		if err != nil {
			return err
		}
		listsToRemove, err = e.UpdateContactLocalLists(ctx, email, listsToRemove, ActionRemove)
		if err != nil {
			return err
		}
	}

	if len(listsToAdd) == 0 && len(listsToRemove) == 0 {
		return nil
	}

	return e.provider.UpdateContactLists(ctx, email, listsToAdd, listsToRemove)
}

// UpdateContactLocalLists walks a mixed list array, performing the tag action
// for every local identifier and dropping it from the result. The returned
// slice holds the provider-native identifiers that still need native-list
// handling. Fails fast on the first unresolvable or unconfigured local list.
func (e *ContactSyncEngine) UpdateContactLocalLists(ctx context.Context, email string, lists []string, action ListAction) ([]string, error) {
	remaining := make([]string, 0, len(lists))

	for _, listID := range lists {
		if !model.IsLocalListID(listID) {
			remaining = append(remaining, listID)
			continue
		}

		list, err := e.registry.GetList(ctx, listID)
		if err != nil {
			return nil, err
		}

		settings, err := list.ProviderSettings(e.provider.Name())
		if err != nil {
			return nil, err
		}

		switch action {
		case ActionAdd:
			err = e.provider.AddTagToContact(ctx, email, settings.TagID, settings.List)
		case ActionRemove:
			err = e.provider.RemoveTagFromContact(ctx, email, settings.TagID, settings.List)
		default:
			return nil, errs.NewValidation("unknown list action")
		}
		if err != nil {
			return nil, err
		}
	}

	return remaining, nil
}

// GetContactLocalLists reverse-maps a contact's provider-side tags to local
// list identifiers. A tag with no matching local list is ignored: not every
// provider tag corresponds to a local list.
func (e *ContactSyncEngine) GetContactLocalLists(ctx context.Context, email string) ([]string, error) {
	if !e.provider.SupportsLocalLists() {
		return nil, nil
	}

	lists, err := e.registry.GetListsForProvider(ctx, e.provider.Name())
	if err != nil {
		return nil, err
	}

	// Tags are scoped per provider list on some ESPs, so fetch once per
	// distinct native list the configured local lists live on.
	contactTags := map[string][]string{}
	var result []string

	for _, list := range lists {
		settings, err := list.ProviderSettings(e.provider.Name())
		if err != nil {
			return nil, err
		}

		tags, fetched := contactTags[settings.List]
		if !fetched {
			tags, err = e.provider.GetContactTagIDs(ctx, email, settings.List)
			if err != nil {
				return nil, err
			}
			contactTags[settings.List] = tags
		}

		for _, tagID := range tags {
			if tagID == settings.TagID {
				result = append(result, list.FormID)
				break
			}
		}
	}

	return result, nil
}

// GetContactCombinedLists is the single source of truth for a contact's
// current memberships: the union of native lists and, when supported, resolved
// local lists. A contact unknown to the provider yields an empty result.
func (e *ContactSyncEngine) GetContactCombinedLists(ctx context.Context, email string) ([]string, error) {
	native, err := e.provider.GetContactLists(ctx, email)
	if err != nil {
		var notFound errs.NotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	locals, err := e.GetContactLocalLists(ctx, email)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(native)+len(locals))
	combined := make([]string, 0, len(native)+len(locals))
	for _, id := range append(native, locals...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		combined = append(combined, id)
	}

	return combined, nil
}
