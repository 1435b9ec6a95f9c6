// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// ProviderListSettings maps a local list onto one provider: the provider-native
// list that hosts its members and the tag used to emulate the local membership.
type ProviderListSettings struct {
	List  string `json:"list"`
	TagID string `json:"tag_id"`
}

// SubscriptionList is a site-owned ("local") subscription list, optionally
// mapped per provider to a native list plus tag. Lists are authored in the CMS
// and read-only from the sync core's perspective.
type SubscriptionList struct {
	FormID      string                          `json:"form_id"`
	Title       string                          `json:"title"`
	Description string                          `json:"description,omitempty"`
	Settings    map[string]ProviderListSettings `json:"settings,omitempty"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// IsConfiguredForProvider reports whether the list carries a usable mapping
// for the named provider: both the native list and the tag must be populated.
func (l *SubscriptionList) IsConfiguredForProvider(providerName string) bool {
	settings, ok := l.Settings[providerName]
	return ok && settings.List != "" && settings.TagID != ""
}

// ProviderSettings returns the mapping for the named provider, or a
// Configuration error when the list is not configured for it. Callers must
// fail on that error rather than silently skipping the contact update.
func (l *SubscriptionList) ProviderSettings(providerName string) (ProviderListSettings, error) {
	if !l.IsConfiguredForProvider(providerName) {
		return ProviderListSettings{}, errs.NewConfiguration(
			fmt.Sprintf("list %q is not configured for provider %q", l.FormID, providerName))
	}
	return l.Settings[providerName], nil
}

// IsLocalListID is the structural test distinguishing local list identifiers
// from provider-native ones. Purely syntactic, no I/O: used as a dispatch gate
// throughout the sync engine.
func IsLocalListID(id string) bool {
	return strings.HasPrefix(id, constants.LocalListIDPrefix) &&
		len(id) > len(constants.LocalListIDPrefix)
}
