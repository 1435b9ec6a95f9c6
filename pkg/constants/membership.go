// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constants

// Membership status constants mirroring the commerce plugin's status set.
const (
	MembershipStatusActive        = "active"
	MembershipStatusFreeTrial     = "free_trial"
	MembershipStatusComplimentary = "complimentary"
	MembershipStatusPending       = "pending"
	MembershipStatusPendingCancel = "pending-cancel"
	MembershipStatusPaused        = "paused"
	MembershipStatusCancelled     = "cancelled"
	MembershipStatusExpired       = "expired"

	// SubscriptionStatusActive is the commerce subscription status that counts
	// toward the bulk resync active-only filter.
	SubscriptionStatusActive = "active"
)

// RuleContentTypeSubscriptionList is the content type a membership plan
// restriction rule carries when it gates a local subscription list.
const RuleContentTypeSubscriptionList = "subscription_list"
