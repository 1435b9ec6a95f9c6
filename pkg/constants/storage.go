// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constants

const (
	// KVBucketNameSubscriptionLists holds local subscription list definitions keyed by form ID.
	KVBucketNameSubscriptionLists = "audience-subscription-lists"

	// KVBucketNameDeactivationSnapshots holds per-user membership deactivation snapshots keyed by user ID.
	KVBucketNameDeactivationSnapshots = "audience-deactivation-snapshots"

	// KVBucketNameNewsletterSendState holds per-newsletter send markers and error logs keyed by newsletter ID.
	KVBucketNameNewsletterSendState = "audience-newsletter-send-state"

	// KVBucketNameTestEmails holds per-user test email preferences keyed by user ID.
	KVBucketNameTestEmails = "audience-test-emails"

	// KVKeySentMarkerPrefix is the create-only key pattern enforcing at-most-once sends.
	KVKeySentMarkerPrefix = "sent/%s"
)
