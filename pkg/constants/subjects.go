// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constants

// NATS subject constants for commerce event consumption
const (
	// MembershipStatusChangedSubject carries (membership, old status, new status) events.
	MembershipStatusChangedSubject = "commerce.membership.status_changed"

	// MembershipSavedSubject carries (plan, save arguments) events fired on every membership save.
	MembershipSavedSubject = "commerce.membership.saved"

	// MembershipDeletedSubject carries membership deletion events.
	MembershipDeletedSubject = "commerce.membership.deleted"

	// AudienceSyncQueue is the queue group for load-balanced commerce event processing.
	AudienceSyncQueue = "audience-sync-api"
)
