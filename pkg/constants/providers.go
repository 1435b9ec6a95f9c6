// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constants

// Provider name constants. The provider set is closed: adding a provider means
// adding a constant here and a variant under internal/infrastructure/providers.
const (
	ProviderMailchimp       = "mailchimp"
	ProviderActiveCampaign  = "active_campaign"
	ProviderCampaignMonitor = "campaign_monitor"
	ProviderConstantContact = "constant_contact"
	ProviderManual          = "manual"
	ProviderLetterhead      = "letterhead"
)

// LocalListIDPrefix marks site-owned list identifiers. Everything else is
// treated as a provider-native list identifier and passed through untouched.
const LocalListIDPrefix = "local-"
