// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// ListRegistry is an in-memory local list registry.
type ListRegistry struct {
	lists map[string]*model.SubscriptionList
	mu    sync.RWMutex
}

// NewListRegistry creates an empty registry.
func NewListRegistry() *ListRegistry {
	return &ListRegistry{lists: make(map[string]*model.SubscriptionList)}
}

// AddList installs a local list definition.
func (r *ListRegistry) AddList(list *model.SubscriptionList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[list.FormID] = list
}

// GetList implements port.ListRegistry.
func (r *ListRegistry) GetList(_ context.Context, formID string) (*model.SubscriptionList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, ok := r.lists[formID]
	if !ok {
		return nil, errs.NewNotFound("subscription list not found")
	}
	return list, nil
}

// GetListsForProvider implements port.ListRegistry.
func (r *ListRegistry) GetListsForProvider(_ context.Context, providerName string) ([]*model.SubscriptionList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.SubscriptionList
	for _, list := range r.lists {
		if list.IsConfiguredForProvider(providerName) {
			out = append(out, list)
		}
	}
	return out, nil
}

// SnapshotStore is an in-memory deactivation snapshot store with revision
// checking, mirroring the KV storage semantics.
type SnapshotStore struct {
	snapshots map[string]*model.DeactivationSnapshot
	revisions map[string]uint64
	mu        sync.Mutex
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]*model.DeactivationSnapshot),
		revisions: make(map[string]uint64),
	}
}

// GetDeactivationSnapshot implements port.SnapshotStore.
func (s *SnapshotStore) GetDeactivationSnapshot(_ context.Context, userID string) (*model.DeactivationSnapshot, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[userID]
	if !ok {
		return &model.DeactivationSnapshot{UserID: userID}, 0, nil
	}
	// Deep copy so callers can mutate freely before writing back.
	data, _ := json.Marshal(snapshot)
	copied := &model.DeactivationSnapshot{}
	_ = json.Unmarshal(data, copied)
	return copied, s.revisions[userID], nil
}

// PutDeactivationSnapshot implements port.SnapshotStore.
func (s *SnapshotStore) PutDeactivationSnapshot(_ context.Context, userID string, snapshot *model.DeactivationSnapshot, expectedRevision uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revisions[userID] != expectedRevision {
		return 0, errs.NewConflict("snapshot was updated concurrently")
	}
	s.snapshots[userID] = snapshot
	s.revisions[userID] = expectedRevision + 1
	return s.revisions[userID], nil
}

// SnapshotFor returns the stored snapshot entry for assertions.
func (s *SnapshotStore) SnapshotFor(userID, membershipID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[userID].ListsFor(membershipID)
}

// NewsletterStore is an in-memory newsletter reader plus send-state
// repository.
type NewsletterStore struct {
	newsletters map[string]*model.Newsletter
	states      map[string]*model.SendState
	testEmails  map[string][]string
	mu          sync.Mutex
}

// NewNewsletterStore creates an empty newsletter store.
func NewNewsletterStore() *NewsletterStore {
	return &NewsletterStore{
		newsletters: make(map[string]*model.Newsletter),
		states:      make(map[string]*model.SendState),
		testEmails:  make(map[string][]string),
	}
}

// AddNewsletter installs a newsletter definition.
func (n *NewsletterStore) AddNewsletter(newsletter *model.Newsletter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newsletters[newsletter.ID] = newsletter
}

// GetNewsletter implements port.NewsletterReader.
func (n *NewsletterStore) GetNewsletter(_ context.Context, newsletterID string) (*model.Newsletter, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	newsletter, ok := n.newsletters[newsletterID]
	if !ok {
		return nil, errs.NewNotFound("newsletter not found")
	}
	return newsletter, nil
}

// GetSendState implements port.NewsletterRepository.
func (n *NewsletterStore) GetSendState(_ context.Context, newsletterID string) (*model.SendState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.states[newsletterID]
	if !ok {
		return &model.SendState{NewsletterID: newsletterID}, nil
	}
	copied := *state
	copied.Errors = append([]model.SendError(nil), state.Errors...)
	return &copied, nil
}

// MarkSent implements port.NewsletterRepository.
func (n *NewsletterStore) MarkSent(_ context.Context, newsletterID string, at time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.states[newsletterID]
	if !ok {
		state = &model.SendState{NewsletterID: newsletterID}
		n.states[newsletterID] = state
	}
	if state.SentAt != nil {
		return errs.NewConflict("newsletter already marked sent")
	}
	state.SentAt = &at
	return nil
}

// ClearSent implements port.NewsletterRepository.
func (n *NewsletterStore) ClearSent(_ context.Context, newsletterID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if state, ok := n.states[newsletterID]; ok {
		state.SentAt = nil
	}
	return nil
}

// LogSendError implements port.NewsletterRepository.
func (n *NewsletterStore) LogSendError(_ context.Context, newsletterID, message string, at time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.states[newsletterID]
	if !ok {
		state = &model.SendState{NewsletterID: newsletterID}
		n.states[newsletterID] = state
	}
	state.AppendError(message, at)
	return nil
}

// GetTestEmails implements port.NewsletterRepository.
func (n *NewsletterStore) GetTestEmails(_ context.Context, userID string) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.testEmails[userID]...), nil
}

// SetTestEmails implements port.NewsletterRepository.
func (n *NewsletterStore) SetTestEmails(_ context.Context, userID string, emails []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.testEmails[userID] = append([]string(nil), emails...)
	return nil
}
