// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package port

import (
	"context"
	"time"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
)

// NewsletterReader resolves authored newsletters from the CMS.
type NewsletterReader interface {
	// GetNewsletter fetches a newsletter by ID. NotFound when absent.
	GetNewsletter(ctx context.Context, newsletterID string) (*model.Newsletter, error)
}

// NewsletterRepository persists per-newsletter send bookkeeping and per-user
// test email preferences.
type NewsletterRepository interface {
	// GetSendState returns the send state for a newsletter. A newsletter that
	// was never touched yields an empty state.
	GetSendState(ctx context.Context, newsletterID string) (*model.SendState, error)

	// MarkSent records the at-most-once sent marker. Returns Conflict when the
	// newsletter is already marked sent.
	MarkSent(ctx context.Context, newsletterID string, at time.Time) error

	// ClearSent releases the sent marker after a failed delivery so the send
	// can be retried.
	ClearSent(ctx context.Context, newsletterID string) error

	// LogSendError appends to the newsletter's bounded error log.
	LogSendError(ctx context.Context, newsletterID, message string, at time.Time) error

	// GetTestEmails returns a user's test-send recipients.
	GetTestEmails(ctx context.Context, userID string) ([]string, error)

	// SetTestEmails replaces a user's test-send recipients.
	SetTestEmails(ctx context.Context, userID string, emails []string) error
}
