// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"time"

	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

// Membership is a reader's membership record in the commerce plugin.
type Membership struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
	Status string `json:"status"`
}

// ContentRule is one content-restriction rule carried by a membership plan.
type ContentRule struct {
	ContentType string   `json:"content_type"`
	ContentIDs  []string `json:"content_ids"`
}

// MembershipPlan is a commerce membership plan with its restriction rules.
type MembershipPlan struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Rules []ContentRule `json:"rules,omitempty"`
}

// SubscriptionListIDs collects the local list identifiers this plan gates,
// scanning the plan's restriction rules for subscription list content.
func (p *MembershipPlan) SubscriptionListIDs() []string {
	var ids []string
	for _, rule := range p.Rules {
		if rule.ContentType != constants.RuleContentTypeSubscriptionList {
			continue
		}
		ids = append(ids, rule.ContentIDs...)
	}
	return ids
}

// IsActiveMembershipStatus reports whether a status grants active access.
// Pending and pending-cancel count as active: the reader still has access.
func IsActiveMembershipStatus(status string) bool {
	switch status {
	case constants.MembershipStatusActive,
		constants.MembershipStatusFreeTrial,
		constants.MembershipStatusComplimentary,
		constants.MembershipStatusPending,
		constants.MembershipStatusPendingCancel:
		return true
	}
	return false
}

// MembershipSaveArgs carries the commerce plugin's membership-saved event
// payload. PreviousStatus travels in the event itself so no cross-handler
// ordering or module-level status cache is needed.
type MembershipSaveArgs struct {
	UserID         string `json:"user_id"`
	MembershipID   string `json:"user_membership_id"`
	IsUpdate       bool   `json:"is_update"`
	PreviousStatus string `json:"previous_status"`
}

// DeactivationSnapshot maps membership ID to the list identifiers a reader was
// subscribed to at the moment that membership left an active status. Written
// on every deactivation, intersected on reactivation so a reader is never
// resubscribed to a list they had manually left.
type DeactivationSnapshot struct {
	UserID    string              `json:"user_id"`
	Lists     map[string][]string `json:"lists"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ListsFor returns the snapshot entry for a membership, nil when absent.
func (s *DeactivationSnapshot) ListsFor(membershipID string) []string {
	if s == nil || s.Lists == nil {
		return nil
	}
	return s.Lists[membershipID]
}
