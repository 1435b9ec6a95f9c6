// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsActiveMembershipStatus(t *testing.T) {
	active := []string{"active", "free_trial", "complimentary", "pending", "pending-cancel"}
	for _, status := range active {
		assert.True(t, IsActiveMembershipStatus(status), status)
	}

	inactive := []string{"paused", "cancelled", "expired", "", "unknown"}
	for _, status := range inactive {
		assert.False(t, IsActiveMembershipStatus(status), status)
	}
}

func TestMembershipPlanSubscriptionListIDs(t *testing.T) {
	plan := &MembershipPlan{
		ID:   "plan-1",
		Name: "Supporter",
		Rules: []ContentRule{
			{ContentType: "post", ContentIDs: []string{"901"}},
			{ContentType: "subscription_list", ContentIDs: []string{"local-1", "local-2"}},
			{ContentType: "subscription_list", ContentIDs: []string{"local-3"}},
		},
	}

	assert.Equal(t, []string{"local-1", "local-2", "local-3"}, plan.SubscriptionListIDs())

	empty := &MembershipPlan{ID: "plan-2", Rules: []ContentRule{{ContentType: "page", ContentIDs: []string{"7"}}}}
	assert.Empty(t, empty.SubscriptionListIDs())
}

func TestDeactivationSnapshotListsFor(t *testing.T) {
	var nilSnapshot *DeactivationSnapshot
	assert.Nil(t, nilSnapshot.ListsFor("m1"))

	snapshot := &DeactivationSnapshot{
		UserID:    "u1",
		Lists:     map[string][]string{"m1": {"local-1", "L9"}},
		UpdatedAt: time.Now(),
	}
	assert.Equal(t, []string{"local-1", "L9"}, snapshot.ListsFor("m1"))
	assert.Nil(t, snapshot.ListsFor("m2"))
}

func TestSendStateAppendErrorIsBounded(t *testing.T) {
	state := &SendState{NewsletterID: "n1"}
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < MaxSendErrorLogEntries+5; i++ {
		state.AppendError("send failed", base.Add(time.Duration(i)*time.Minute))
	}

	assert.Len(t, state.Errors, MaxSendErrorLogEntries)
	// Oldest entries are dropped first.
	assert.Equal(t, base.Add(5*time.Minute), state.Errors[0].OccurredAt)
	assert.Equal(t, base.Add(14*time.Minute), state.LastError().OccurredAt)
}
