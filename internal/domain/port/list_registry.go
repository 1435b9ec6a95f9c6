// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
)

// ListRegistry resolves local subscription list identifiers to their full
// definitions. The CMS owns the definitions; the sync core only reads them.
type ListRegistry interface {
	// GetList resolves a local form ID. Returns NotFound when the identifier
	// does not correspond to a known local list, so callers can distinguish a
	// broken local reference from a provider-native identifier.
	GetList(ctx context.Context, formID string) (*model.SubscriptionList, error)

	// GetListsForProvider enumerates all local lists configured for the named
	// provider. Used when reverse-mapping a contact's provider-side tags back
	// to local list identifiers.
	GetListsForProvider(ctx context.Context, providerName string) ([]*model.SubscriptionList, error)
}
