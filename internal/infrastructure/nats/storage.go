// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// kvKeyNewsletterPrefix stores newsletter definitions synced from the CMS in
// the send-state bucket, next to the per-newsletter state they gate.
const kvKeyNewsletterPrefix = "newsletter/%s"

// Storage is the KV-backed persistence adapter. It implements the list
// registry, snapshot store, newsletter reader, and newsletter repository
// ports over JetStream key-value buckets.
type Storage struct {
	client *Client
}

var (
	_ port.ListRegistry         = (*Storage)(nil)
	_ port.SnapshotStore        = (*Storage)(nil)
	_ port.NewsletterReader     = (*Storage)(nil)
	_ port.NewsletterRepository = (*Storage)(nil)
)

// NewStorage builds the KV-backed storage over an established client.
func NewStorage(client *Client) *Storage {
	return &Storage{client: client}
}

// GetList retrieves a local subscription list definition by form ID.
func (s *Storage) GetList(ctx context.Context, formID string) (*model.SubscriptionList, error) {
	slog.DebugContext(ctx, "nats storage: getting subscription list", "form_id", formID)

	list := &model.SubscriptionList{}
	_, err := s.get(ctx, constants.KVBucketNameSubscriptionLists, formID, list)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errs.NewNotFound("subscription list not found")
		}
		slog.ErrorContext(ctx, "failed to get subscription list", "error", err, "form_id", formID)
		return nil, errs.NewServiceUnavailable("failed to get subscription list")
	}

	return list, nil
}

// GetListsForProvider enumerates the local lists configured for a provider.
func (s *Storage) GetListsForProvider(ctx context.Context, providerName string) ([]*model.SubscriptionList, error) {
	kv, exists := s.client.kvStore[constants.KVBucketNameSubscriptionLists]
	if !exists || kv == nil {
		return nil, errs.NewServiceUnavailable("KV bucket not available")
	}

	lister, err := kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to list subscription list keys", "error", err)
		return nil, errs.NewServiceUnavailable("failed to list subscription lists")
	}

	var lists []*model.SubscriptionList
	for formID := range lister.Keys() {
		list, err := s.GetList(ctx, formID)
		if err != nil {
			var notFound errs.NotFound
			if errors.As(err, &notFound) {
				// Key deleted between listing and fetch.
				continue
			}
			return nil, err
		}
		if list.IsConfiguredForProvider(providerName) {
			lists = append(lists, list)
		}
	}

	return lists, nil
}

// GetDeactivationSnapshot returns a user's snapshot and its KV revision. A
// user with no snapshot yields an empty snapshot and revision 0.
func (s *Storage) GetDeactivationSnapshot(ctx context.Context, userID string) (*model.DeactivationSnapshot, uint64, error) {
	snapshot := &model.DeactivationSnapshot{UserID: userID}
	rev, err := s.get(ctx, constants.KVBucketNameDeactivationSnapshots, userID, snapshot)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return &model.DeactivationSnapshot{UserID: userID}, 0, nil
		}
		slog.ErrorContext(ctx, "failed to get deactivation snapshot", "error", err, "user_id", userID)
		return nil, 0, errs.NewServiceUnavailable("failed to get deactivation snapshot")
	}
	return snapshot, rev, nil
}

// PutDeactivationSnapshot writes a snapshot with revision checking. Revision 0
// creates the key; any other revision must match the stored one.
func (s *Storage) PutDeactivationSnapshot(ctx context.Context, userID string, snapshot *model.DeactivationSnapshot, expectedRevision uint64) (uint64, error) {
	kv, exists := s.client.kvStore[constants.KVBucketNameDeactivationSnapshots]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return 0, err
	}

	var rev uint64
	if expectedRevision == 0 {
		rev, err = kv.Create(ctx, userID, data)
	} else {
		rev, err = kv.Update(ctx, userID, data, expectedRevision)
	}
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) || isWrongLastSequence(err) {
			return 0, errs.NewConflict("snapshot was updated concurrently")
		}
		slog.ErrorContext(ctx, "failed to put deactivation snapshot",
			"error", err,
			"user_id", userID,
			"expected_revision", expectedRevision,
		)
		return 0, errs.NewServiceUnavailable("failed to put deactivation snapshot")
	}

	return rev, nil
}

// GetNewsletter fetches a newsletter definition synced from the CMS.
func (s *Storage) GetNewsletter(ctx context.Context, newsletterID string) (*model.Newsletter, error) {
	newsletter := &model.Newsletter{}
	key := fmt.Sprintf(kvKeyNewsletterPrefix, newsletterID)
	_, err := s.get(ctx, constants.KVBucketNameNewsletterSendState, key, newsletter)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errs.NewNotFound("newsletter not found")
		}
		slog.ErrorContext(ctx, "failed to get newsletter", "error", err, "newsletter_id", newsletterID)
		return nil, errs.NewServiceUnavailable("failed to get newsletter")
	}
	return newsletter, nil
}

// GetSendState returns a newsletter's send bookkeeping. The create-only sent
// marker is authoritative for SentAt, so a state record that predates the
// marker still reports the send.
func (s *Storage) GetSendState(ctx context.Context, newsletterID string) (*model.SendState, error) {
	state := &model.SendState{NewsletterID: newsletterID}
	_, err := s.get(ctx, constants.KVBucketNameNewsletterSendState, newsletterID, state)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.ErrorContext(ctx, "failed to get send state", "error", err, "newsletter_id", newsletterID)
		return nil, errs.NewServiceUnavailable("failed to get send state")
	}

	if state.SentAt == nil {
		if sentAt := s.sentMarker(ctx, newsletterID); sentAt != nil {
			state.SentAt = sentAt
		}
	}

	return state, nil
}

// MarkSent records the at-most-once sent marker through a create-only key.
// Two racing senders cannot both create it.
func (s *Storage) MarkSent(ctx context.Context, newsletterID string, at time.Time) error {
	kv, exists := s.client.kvStore[constants.KVBucketNameNewsletterSendState]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	markerKey := fmt.Sprintf(constants.KVKeySentMarkerPrefix, newsletterID)
	if _, err := kv.Create(ctx, markerKey, []byte(at.UTC().Format(time.RFC3339))); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return errs.NewConflict("newsletter already marked sent")
		}
		slog.ErrorContext(ctx, "failed to create sent marker", "error", err, "newsletter_id", newsletterID)
		return errs.NewServiceUnavailable("failed to create sent marker")
	}

	// Mirror the send into the state record for single-read consumers. The
	// marker already guarantees at-most-once, so a failure here only degrades
	// reads until the next GetSendState reconciles from the marker.
	if err := s.updateSendState(ctx, newsletterID, func(state *model.SendState) {
		sentAt := at
		state.SentAt = &sentAt
	}); err != nil {
		slog.WarnContext(ctx, "sent marker created but state record update failed",
			"error", err,
			"newsletter_id", newsletterID,
		)
	}

	return nil
}

// ClearSent removes the sent marker and the state mirror after a failed
// delivery so the newsletter can be sent again.
func (s *Storage) ClearSent(ctx context.Context, newsletterID string) error {
	kv, exists := s.client.kvStore[constants.KVBucketNameNewsletterSendState]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	markerKey := fmt.Sprintf(constants.KVKeySentMarkerPrefix, newsletterID)
	if err := kv.Delete(ctx, markerKey); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		slog.ErrorContext(ctx, "failed to delete sent marker", "error", err, "newsletter_id", newsletterID)
		return errs.NewServiceUnavailable("failed to delete sent marker")
	}

	return s.updateSendState(ctx, newsletterID, func(state *model.SendState) {
		state.SentAt = nil
	})
}

// LogSendError appends to the newsletter's bounded error log.
func (s *Storage) LogSendError(ctx context.Context, newsletterID, message string, at time.Time) error {
	return s.updateSendState(ctx, newsletterID, func(state *model.SendState) {
		state.AppendError(message, at)
	})
}

// GetTestEmails returns a user's test-send recipients.
func (s *Storage) GetTestEmails(ctx context.Context, userID string) ([]string, error) {
	preferences := &model.TestEmailPreferences{}
	_, err := s.get(ctx, constants.KVBucketNameTestEmails, userID, preferences)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to get test emails", "error", err, "user_id", userID)
		return nil, errs.NewServiceUnavailable("failed to get test emails")
	}
	return preferences.Emails, nil
}

// SetTestEmails replaces a user's test-send recipients.
func (s *Storage) SetTestEmails(ctx context.Context, userID string, emails []string) error {
	_, err := s.put(ctx, constants.KVBucketNameTestEmails, userID, &model.TestEmailPreferences{
		UserID: userID,
		Emails: emails,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to set test emails", "error", err, "user_id", userID)
		return errs.NewServiceUnavailable("failed to set test emails")
	}
	return nil
}

// sentMarker reads the sent marker timestamp, nil when absent or unparseable.
func (s *Storage) sentMarker(ctx context.Context, newsletterID string) *time.Time {
	kv, exists := s.client.kvStore[constants.KVBucketNameNewsletterSendState]
	if !exists || kv == nil {
		return nil
	}
	entry, err := kv.Get(ctx, fmt.Sprintf(constants.KVKeySentMarkerPrefix, newsletterID))
	if err != nil {
		return nil
	}
	sentAt, err := time.Parse(time.RFC3339, string(entry.Value()))
	if err != nil {
		slog.WarnContext(ctx, "unparseable sent marker", "newsletter_id", newsletterID, "value", string(entry.Value()))
		return nil
	}
	return &sentAt
}

// updateSendState applies a read-modify-write on the state record with
// revision-checked retries against concurrent writers.
func (s *Storage) updateSendState(ctx context.Context, newsletterID string, mutate func(*model.SendState)) error {
	kv, exists := s.client.kvStore[constants.KVBucketNameNewsletterSendState]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	for attempt := 0; attempt < 3; attempt++ {
		state := &model.SendState{NewsletterID: newsletterID}
		rev, err := s.get(ctx, constants.KVBucketNameNewsletterSendState, newsletterID, state)
		if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return errs.NewServiceUnavailable("failed to get send state")
		}

		mutate(state)

		data, err := json.Marshal(state)
		if err != nil {
			return err
		}

		if rev == 0 {
			_, err = kv.Create(ctx, newsletterID, data)
		} else {
			_, err = kv.Update(ctx, newsletterID, data, rev)
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, jetstream.ErrKeyExists) || isWrongLastSequence(err) {
			continue
		}
		return errs.NewServiceUnavailable("failed to update send state")
	}

	return errs.NewConflict("send state was updated concurrently")
}

// get retrieves a model from a KV bucket and returns the entry revision.
func (s *Storage) get(ctx context.Context, bucket, key string, target any) (uint64, error) {
	if key == "" {
		return 0, errs.NewValidation("key cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	entry, err := kv.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	if err := json.Unmarshal(entry.Value(), target); err != nil {
		return 0, err
	}

	return entry.Revision(), nil
}

// put stores a model in a KV bucket and returns the new revision.
func (s *Storage) put(ctx context.Context, bucket, key string, value any) (uint64, error) {
	if key == "" {
		return 0, errs.NewValidation("key cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}

	return kv.Put(ctx, key, data)
}

// isWrongLastSequence detects the JetStream revision-mismatch error returned
// by conditional KV updates.
func isWrongLastSequence(err error) bool {
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return false
}
