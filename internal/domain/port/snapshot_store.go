// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
)

// SnapshotStore persists per-user membership deactivation snapshots with
// optimistic concurrency control. Writers read the revision, mutate, and write
// back with the expected revision; a Conflict error signals a racing update
// and the caller retries.
type SnapshotStore interface {
	// GetDeactivationSnapshot returns the snapshot and its revision. A user
	// with no snapshot yet yields an empty snapshot and revision 0.
	GetDeactivationSnapshot(ctx context.Context, userID string) (*model.DeactivationSnapshot, uint64, error)

	// PutDeactivationSnapshot writes the snapshot. expectedRevision 0 creates;
	// otherwise the write succeeds only when the stored revision matches,
	// returning Conflict when it does not.
	PutDeactivationSnapshot(ctx context.Context, userID string, snapshot *model.DeactivationSnapshot, expectedRevision uint64) (uint64, error)
}
