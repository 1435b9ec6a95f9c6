// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
)

// FilterLists excludes every plan-gated local list the acting user cannot
// access. It must run on every list render path so a reader is never offered a
// list they structurally cannot join. Lists with no membership-plan
// association are always included, as are provider-native identifiers.
func (b *MembershipBridge) FilterLists(ctx context.Context, syncCtx SyncContext, listIDs []string) ([]string, error) {
	gated, err := b.planGatedLists(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]string, 0, len(listIDs))
	for _, id := range listIDs {
		ok, err := b.listVisible(ctx, syncCtx, id, gated)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, id)
		}
	}
	return visible, nil
}

// FilterListsObjects is the object-level variant of FilterLists, used by
// render paths that already hold full list definitions.
func (b *MembershipBridge) FilterListsObjects(ctx context.Context, syncCtx SyncContext, lists []*model.SubscriptionList) ([]*model.SubscriptionList, error) {
	gated, err := b.planGatedLists(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.SubscriptionList, 0, len(lists))
	for _, list := range lists {
		ok, err := b.listVisible(ctx, syncCtx, list.FormID, gated)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, list)
		}
	}
	return visible, nil
}

// listVisible decides whether one list identifier may be shown.
func (b *MembershipBridge) listVisible(ctx context.Context, syncCtx SyncContext, listID string, gated map[string]struct{}) (bool, error) {
	if !model.IsLocalListID(listID) {
		return true, nil
	}
	if _, isGated := gated[listID]; !isGated {
		return true, nil
	}

	// An explicit acting user set in scope (a just-registered reader whose
	// membership grant is still being processed) wins over the ambient user.
	userID := syncCtx.ActingUserID
	if userID == "" {
		return false, nil
	}

	canView, err := b.commerce.UserCanViewContent(ctx, userID, listID)
	if err != nil {
		slog.ErrorContext(ctx, "list visibility access check failed",
			"form_id", listID,
			"user_id", userID,
			"error", err,
		)
		return false, err
	}
	return canView, nil
}

// planGatedLists maps each local list gated by a membership plan restriction.
func (b *MembershipBridge) planGatedLists(ctx context.Context) (map[string]struct{}, error) {
	plans, err := b.commerce.ListPlans(ctx)
	if err != nil {
		return nil, err
	}

	gated := map[string]struct{}{}
	for _, plan := range plans {
		for _, id := range plan.SubscriptionListIDs() {
			gated[id] = struct{}{}
		}
	}
	return gated, nil
}
