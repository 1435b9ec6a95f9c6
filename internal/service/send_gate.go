// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// SendGate enforces that a newsletter is sent at most once and records send
// failures in the bounded per-newsletter error log.
type SendGate struct {
	provider    port.Provider
	newsletters port.NewsletterReader
	sendState   port.NewsletterRepository
}

// NewSendGate wires the gate to the active provider and the send bookkeeping.
func NewSendGate(provider port.Provider, newsletters port.NewsletterReader, sendState port.NewsletterRepository) *SendGate {
	return &SendGate{
		provider:    provider,
		newsletters: newsletters,
		sendState:   sendState,
	}
}

// Send triggers delivery through the active provider. The sent marker is
// claimed through a create-only key before the provider is called, so two
// racing sends arbitrate on the marker and only one reaches the provider.
// A newsletter already marked sent returns a Conflict error.
func (g *SendGate) Send(ctx context.Context, newsletterID string) error {
	newsletter, err := g.newsletters.GetNewsletter(ctx, newsletterID)
	if err != nil {
		return err
	}

	if err := g.sendState.MarkSent(ctx, newsletterID, time.Now()); err != nil {
		return err
	}

	if err := g.provider.Send(ctx, newsletter); err != nil {
		if logErr := g.sendState.LogSendError(ctx, newsletterID, err.Error(), time.Now()); logErr != nil {
			slog.ErrorContext(ctx, "failed to record send error",
				"newsletter_id", newsletterID,
				"error", logErr,
			)
		}
		// Release the marker so the send can be retried once the failure is
		// resolved. If the release fails the newsletter stays marked sent
		// and needs operator attention.
		if clearErr := g.sendState.ClearSent(ctx, newsletterID); clearErr != nil {
			slog.ErrorContext(ctx, "failed to release sent marker after delivery failure",
				"newsletter_id", newsletterID,
				"error", clearErr,
			)
		}
		return err
	}

	slog.InfoContext(ctx, "newsletter sent",
		"newsletter_id", newsletterID,
		"title", newsletter.Title,
	)

	return nil
}

// LastSendError returns the most recent send failure for a newsletter, nil
// when none was recorded.
func (g *SendGate) LastSendError(ctx context.Context, newsletterID string) (*model.SendError, error) {
	state, err := g.sendState.GetSendState(ctx, newsletterID)
	if err != nil {
		return nil, err
	}
	return state.LastError(), nil
}

// UpdateTestEmails replaces a user's test-send recipient addresses.
func (g *SendGate) UpdateTestEmails(ctx context.Context, userID string, emails []string) error {
	if userID == "" {
		return errs.NewValidation("user id is required")
	}
	for _, email := range emails {
		if email == "" {
			return errs.NewValidation("test email addresses must not be empty")
		}
	}
	return g.sendState.SetTestEmails(ctx, userID, emails)
}

// TestEmails returns a user's test-send recipient addresses.
func (g *SendGate) TestEmails(ctx context.Context, userID string) ([]string, error) {
	return g.sendState.GetTestEmails(ctx, userID)
}
