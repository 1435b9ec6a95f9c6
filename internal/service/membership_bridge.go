// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
	"github.com/daybreak-media/audience-sync-service/pkg/utils"
)

// MembershipBridge translates commerce membership lifecycle events into list
// membership changes through the sync engine. It never talks to providers
// directly, and it logs failures rather than re-raising into the commerce
// event dispatch path, so unrelated listeners on the same event keep running.
type MembershipBridge struct {
	engine    *ContactSyncEngine
	commerce  port.CommerceReader
	snapshots port.SnapshotStore

	// postCheckoutSignup narrows resubscription to a paused-to-active renewal
	// with snapshot evidence, instead of resubscribing on any reactivation.
	postCheckoutSignup bool

	snapshotRetry utils.RetryConfig
}

// NewMembershipBridge wires the bridge to its collaborators.
func NewMembershipBridge(engine *ContactSyncEngine, commerce port.CommerceReader, snapshots port.SnapshotStore, postCheckoutSignup bool) *MembershipBridge {
	return &MembershipBridge{
		engine:             engine,
		commerce:           commerce,
		snapshots:          snapshots,
		postCheckoutSignup: postCheckoutSignup,
		snapshotRetry:      utils.NewRetryConfig(3, 50*time.Millisecond, time.Second),
	}
}

// HandleMembershipStatusChange applies one membership state transition with
// old and new status known atomically. Both statuses arrive in the same event,
// so there is no ordering dependency between separate handlers.
func (b *MembershipBridge) HandleMembershipStatusChange(ctx context.Context, membership *model.Membership, oldStatus, newStatus string) error {
	wasActive := model.IsActiveMembershipStatus(oldStatus)
	isActive := model.IsActiveMembershipStatus(newStatus)

	slog.DebugContext(ctx, "membership status change",
		"membership_id", membership.ID,
		"user_id", membership.UserID,
		"old_status", oldStatus,
		"new_status", newStatus,
	)

	switch {
	case wasActive && !isActive:
		return b.deactivate(ctx, membership)
	case !wasActive && isActive:
		return b.reactivate(ctx, membership, oldStatus, true)
	default:
		// Re-entering an equivalent state is a no-op: no add or remove calls.
		return nil
	}
}

// HandleMembershipSaved processes the commerce plugin's membership-saved
// event, which fires on every save including non-status-changing ones. The
// previous status travels in the event payload, making redundant invocations
// detectable without a cross-request cache.
func (b *MembershipBridge) HandleMembershipSaved(ctx context.Context, plan *model.MembershipPlan, args model.MembershipSaveArgs) error {
	if args.MembershipID == "" {
		return errs.NewValidation("membership saved event carries no membership id")
	}

	membership := &model.Membership{
		ID:     args.MembershipID,
		UserID: args.UserID,
		PlanID: plan.ID,
		Status: constants.MembershipStatusActive,
	}

	if model.IsActiveMembershipStatus(args.PreviousStatus) {
		// Redundant save of an already-active membership.
		slog.DebugContext(ctx, "membership save with active previous status, skipping",
			"membership_id", args.MembershipID,
			"previous_status", args.PreviousStatus,
		)
		return nil
	}

	return b.reactivate(ctx, membership, args.PreviousStatus, args.IsUpdate)
}

// HandleMembershipDeleted removes the reader from the plan's lists,
// unconditionally applying the same logic as a deactivation.
func (b *MembershipBridge) HandleMembershipDeleted(ctx context.Context, membership *model.Membership) error {
	return b.deactivate(ctx, membership)
}

// deactivate persists the exact subset of plan lists the reader is currently
// on, then removes the reader from them. The snapshot holds the current
// intersection, not the full plan list, because the reader may have manually
// unsubscribed from some.
func (b *MembershipBridge) deactivate(ctx context.Context, membership *model.Membership) error {
	planLists, email, err := b.planListsAndEmail(ctx, membership)
	if err != nil {
		return err
	}
	if len(planLists) == 0 {
		return nil
	}

	current, err := b.engine.GetContactCombinedLists(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read current contact lists for deactivation",
			"membership_id", membership.ID,
			"email", redaction.RedactEmail(email),
			"error", err,
		)
		return err
	}

	subscribed := intersect(planLists, current)

	if err := b.writeSnapshotEntry(ctx, membership.UserID, membership.ID, subscribed); err != nil {
		return err
	}

	if len(subscribed) == 0 {
		return nil
	}

	if err := b.engine.UpdateContactLists(ctx, email, nil, subscribed); err != nil {
		slog.ErrorContext(ctx, "failed to remove lists on membership deactivation",
			"membership_id", membership.ID,
			"email", redaction.RedactEmail(email),
			"lists", subscribed,
			"error", err,
		)
		return err
	}

	slog.InfoContext(ctx, "membership deactivated, lists removed",
		"membership_id", membership.ID,
		"email", redaction.RedactEmail(email),
		"removed", len(subscribed),
	)

	return nil
}

// reactivate re-adds the reader to the plan's lists, restricted to lists they
// are not already on and, when a deactivation snapshot exists for this
// membership, to lists they were on before deactivation.
func (b *MembershipBridge) reactivate(ctx context.Context, membership *model.Membership, previousStatus string, isUpdate bool) error {
	planLists, email, err := b.planListsAndEmail(ctx, membership)
	if err != nil {
		return err
	}
	if len(planLists) == 0 {
		return nil
	}

	snapshot, _, err := b.snapshots.GetDeactivationSnapshot(ctx, membership.UserID)
	if err != nil {
		return err
	}
	saved := snapshot.ListsFor(membership.ID)

	if b.postCheckoutSignup {
		// Under the feature flag, only a paused membership renewal with
		// snapshot evidence resubscribes; everything else is skipped.
		if previousStatus != constants.MembershipStatusPaused || !isUpdate || len(saved) == 0 {
			slog.DebugContext(ctx, "post-checkout signup flag active, skipping reactivation",
				"membership_id", membership.ID,
				"previous_status", previousStatus,
				"is_update", isUpdate,
				"snapshot_lists", len(saved),
			)
			return nil
		}
	}

	current, err := b.engine.GetContactCombinedLists(ctx, email)
	if err != nil {
		return err
	}

	candidates := subtract(planLists, current)
	if len(saved) > 0 {
		candidates = intersect(candidates, saved)
	}

	if len(candidates) == 0 {
		return nil
	}

	if err := b.engine.UpdateContactLists(ctx, email, candidates, nil); err != nil {
		slog.ErrorContext(ctx, "failed to add lists on membership reactivation",
			"membership_id", membership.ID,
			"email", redaction.RedactEmail(email),
			"lists", candidates,
			"error", err,
		)
		return err
	}

	// The snapshot entry is consumed by a successful reactivation.
	if err := b.clearSnapshotEntry(ctx, membership.UserID, membership.ID); err != nil {
		slog.WarnContext(ctx, "failed to clear consumed deactivation snapshot",
			"membership_id", membership.ID,
			"user_id", membership.UserID,
			"error", err,
		)
	}

	slog.InfoContext(ctx, "membership reactivated, lists restored",
		"membership_id", membership.ID,
		"email", redaction.RedactEmail(email),
		"added", len(candidates),
	)

	return nil
}

// planListsAndEmail resolves the plan's gated lists and the reader's email.
func (b *MembershipBridge) planListsAndEmail(ctx context.Context, membership *model.Membership) ([]string, string, error) {
	plan, err := b.commerce.GetPlan(ctx, membership.PlanID)
	if err != nil {
		return nil, "", err
	}

	customer, err := b.commerce.GetCustomer(ctx, membership.UserID)
	if err != nil {
		return nil, "", err
	}

	contact := customer.ContactPayload()
	return plan.SubscriptionListIDs(), contact.Email, nil
}

// writeSnapshotEntry stores one membership's list subset in the user's
// snapshot via read-modify-write with optimistic concurrency retry.
func (b *MembershipBridge) writeSnapshotEntry(ctx context.Context, userID, membershipID string, lists []string) error {
	return utils.RetryWithExponentialBackoff(ctx, b.snapshotRetry, func() error {
		snapshot, revision, err := b.snapshots.GetDeactivationSnapshot(ctx, userID)
		if err != nil {
			return err
		}
		if snapshot == nil {
			snapshot = &model.DeactivationSnapshot{UserID: userID}
		}
		if snapshot.Lists == nil {
			snapshot.Lists = map[string][]string{}
		}
		snapshot.Lists[membershipID] = lists
		snapshot.UpdatedAt = time.Now()

		_, err = b.snapshots.PutDeactivationSnapshot(ctx, userID, snapshot, revision)
		return err
	})
}

// clearSnapshotEntry removes one membership's entry from the user's snapshot.
func (b *MembershipBridge) clearSnapshotEntry(ctx context.Context, userID, membershipID string) error {
	return utils.RetryWithExponentialBackoff(ctx, b.snapshotRetry, func() error {
		snapshot, revision, err := b.snapshots.GetDeactivationSnapshot(ctx, userID)
		if err != nil {
			return err
		}
		if snapshot.ListsFor(membershipID) == nil {
			return nil
		}
		delete(snapshot.Lists, membershipID)
		snapshot.UpdatedAt = time.Now()

		_, err = b.snapshots.PutDeactivationSnapshot(ctx, userID, snapshot, revision)
		return err
	})
}

// intersect returns the members of a that also appear in b, preserving a's order.
func intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := inB[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// subtract returns the members of a that do not appear in b, preserving a's order.
func subtract(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
