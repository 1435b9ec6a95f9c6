// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/mock"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

type bridgeFixture struct {
	bridge    *MembershipBridge
	provider  *mock.Provider
	commerce  *mock.CommerceReader
	snapshots *mock.SnapshotStore
}

// newBridgeFixture wires a bridge over the in-memory doubles: three local
// lists on the registry, a plan gating two of them, and one customer.
func newBridgeFixture(postCheckoutSignup bool) *bridgeFixture {
	provider := mock.NewProvider(constants.ProviderMailchimp, true)
	registry := mock.NewListRegistry()
	for formID, tagID := range map[string]string{"local-1": "T1", "local-2": "T2", "local-3": "T3"} {
		registry.AddList(&model.SubscriptionList{
			FormID: formID,
			Settings: map[string]model.ProviderListSettings{
				constants.ProviderMailchimp: {List: "L", TagID: tagID},
			},
		})
	}

	commerce := mock.NewCommerceReader()
	commerce.AddCustomer(&model.Customer{ID: "u1", Email: "member@example.com"})
	commerce.AddPlan(&model.MembershipPlan{
		ID:   "plan-1",
		Name: "Premium",
		Rules: []model.ContentRule{
			{ContentType: constants.RuleContentTypeSubscriptionList, ContentIDs: []string{"local-1", "local-2"}},
		},
	})

	snapshots := mock.NewSnapshotStore()
	engine := NewContactSyncEngine(provider, registry)

	return &bridgeFixture{
		bridge:    NewMembershipBridge(engine, commerce, snapshots, postCheckoutSignup),
		provider:  provider,
		commerce:  commerce,
		snapshots: snapshots,
	}
}

func (f *bridgeFixture) membership() *model.Membership {
	return &model.Membership{ID: "m1", UserID: "u1", PlanID: "plan-1", Status: constants.MembershipStatusActive}
}

// subscribe puts the member on the given local lists through the engine, the
// same path a signup form would take.
func (f *bridgeFixture) subscribe(t *testing.T, formIDs ...string) {
	t.Helper()
	for _, formID := range formIDs {
		_, err := f.bridge.engine.AddContact(context.Background(), model.Contact{Email: "member@example.com"}, formID)
		require.NoError(t, err)
	}
}

func TestDeactivationSnapshotsExactSubset(t *testing.T) {
	f := newBridgeFixture(false)
	// Member is on local-1 and local-3, but the plan only gates local-1 and
	// local-2. Only the intersection may be snapshotted and removed.
	f.subscribe(t, "local-1", "local-3")

	err := f.bridge.HandleMembershipStatusChange(context.Background(), f.membership(),
		constants.MembershipStatusActive, constants.MembershipStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, []string{"local-1"}, f.snapshots.SnapshotFor("u1", "m1"))

	locals, err := f.bridge.engine.GetContactLocalLists(context.Background(), "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"local-3"}, locals, "non-plan list must survive deactivation")
}

func TestDeactivationWithNoPlanListsHeldIsSnapshotOnly(t *testing.T) {
	f := newBridgeFixture(false)
	f.subscribe(t, "local-3")
	before := f.provider.MutationCount()

	err := f.bridge.HandleMembershipStatusChange(context.Background(), f.membership(),
		constants.MembershipStatusActive, constants.MembershipStatusExpired)
	require.NoError(t, err)

	// A snapshot entry is written even when the intersection is empty, and no
	// provider mutation happens.
	assert.Empty(t, f.snapshots.SnapshotFor("u1", "m1"))
	assert.Equal(t, before, f.provider.MutationCount())
}

func TestReactivationRestrictedToSnapshot(t *testing.T) {
	f := newBridgeFixture(false)
	f.subscribe(t, "local-1", "local-2")

	ctx := context.Background()
	membership := f.membership()

	require.NoError(t, f.bridge.HandleMembershipStatusChange(ctx, membership,
		constants.MembershipStatusActive, constants.MembershipStatusPaused))
	// Simulate the member having held only local-1 at deactivation time.
	require.NoError(t, f.bridge.writeSnapshotEntry(ctx, "u1", "m1", []string{"local-1"}))

	require.NoError(t, f.bridge.HandleMembershipStatusChange(ctx, membership,
		constants.MembershipStatusPaused, constants.MembershipStatusActive))

	locals, err := f.bridge.engine.GetContactLocalLists(ctx, "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"local-1"}, locals, "reactivation must not exceed the snapshot")

	// The consumed snapshot entry is gone.
	assert.Nil(t, f.snapshots.SnapshotFor("u1", "m1"))
}

func TestReactivationWithoutSnapshotAddsAllPlanLists(t *testing.T) {
	f := newBridgeFixture(false)

	err := f.bridge.HandleMembershipStatusChange(context.Background(), f.membership(),
		constants.MembershipStatusPending, constants.MembershipStatusActive)
	require.NoError(t, err)

	locals, err := f.bridge.engine.GetContactLocalLists(context.Background(), "member@example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"local-1", "local-2"}, locals)
}

func TestRedundantTransitionsAreNoOps(t *testing.T) {
	testCases := []struct {
		name      string
		oldStatus string
		newStatus string
	}{
		{name: "active to active-equivalent", oldStatus: constants.MembershipStatusActive, newStatus: constants.MembershipStatusFreeTrial},
		{name: "inactive to inactive", oldStatus: constants.MembershipStatusCancelled, newStatus: constants.MembershipStatusExpired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBridgeFixture(false)
			f.subscribe(t, "local-1")
			before := f.provider.MutationCount()

			err := f.bridge.HandleMembershipStatusChange(context.Background(), f.membership(), tc.oldStatus, tc.newStatus)
			require.NoError(t, err)
			assert.Equal(t, before, f.provider.MutationCount())
		})
	}
}

func TestHandleMembershipSaved(t *testing.T) {
	plan := &model.MembershipPlan{
		ID: "plan-1",
		Rules: []model.ContentRule{
			{ContentType: constants.RuleContentTypeSubscriptionList, ContentIDs: []string{"local-1", "local-2"}},
		},
	}

	testCases := []struct {
		name          string
		args          model.MembershipSaveArgs
		expectError   bool
		expectedLists []string
	}{
		{
			name:          "save from inactive previous status resubscribes",
			args:          model.MembershipSaveArgs{UserID: "u1", MembershipID: "m1", IsUpdate: true, PreviousStatus: constants.MembershipStatusCancelled},
			expectedLists: []string{"local-1", "local-2"},
		},
		{
			name: "save of already-active membership is skipped",
			args: model.MembershipSaveArgs{UserID: "u1", MembershipID: "m1", IsUpdate: true, PreviousStatus: constants.MembershipStatusActive},
		},
		{
			name:        "missing membership id is rejected",
			args:        model.MembershipSaveArgs{UserID: "u1"},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBridgeFixture(false)

			err := f.bridge.HandleMembershipSaved(context.Background(), plan, tc.args)

			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			locals, err := f.bridge.engine.GetContactLocalLists(context.Background(), "member@example.com")
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.expectedLists, locals)
		})
	}
}

func TestPostCheckoutSignupFlagNarrowsReactivation(t *testing.T) {
	testCases := []struct {
		name           string
		previousStatus string
		isUpdate       bool
		snapshotLists  []string
		expectedLists  []string
	}{
		{
			name:           "paused renewal with snapshot resubscribes",
			previousStatus: constants.MembershipStatusPaused,
			isUpdate:       true,
			snapshotLists:  []string{"local-1"},
			expectedLists:  []string{"local-1"},
		},
		{
			name:           "non-paused previous status is skipped",
			previousStatus: constants.MembershipStatusCancelled,
			isUpdate:       true,
			snapshotLists:  []string{"local-1"},
		},
		{
			name:           "paused renewal without snapshot is skipped",
			previousStatus: constants.MembershipStatusPaused,
			isUpdate:       true,
		},
		{
			name:           "initial save is skipped",
			previousStatus: constants.MembershipStatusPaused,
			snapshotLists:  []string{"local-1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBridgeFixture(true)
			ctx := context.Background()
			if tc.snapshotLists != nil {
				require.NoError(t, f.bridge.writeSnapshotEntry(ctx, "u1", "m1", tc.snapshotLists))
			}

			err := f.bridge.reactivate(ctx, f.membership(), tc.previousStatus, tc.isUpdate)
			require.NoError(t, err)

			locals, err := f.bridge.engine.GetContactLocalLists(ctx, "member@example.com")
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.expectedLists, locals)
		})
	}
}

func TestHandleMembershipDeleted(t *testing.T) {
	f := newBridgeFixture(false)
	f.subscribe(t, "local-1", "local-2")

	err := f.bridge.HandleMembershipDeleted(context.Background(), f.membership())
	require.NoError(t, err)

	locals, err := f.bridge.engine.GetContactLocalLists(context.Background(), "member@example.com")
	require.NoError(t, err)
	assert.Empty(t, locals)
	assert.ElementsMatch(t, []string{"local-1", "local-2"}, f.snapshots.SnapshotFor("u1", "m1"))
}

func TestFilterListsHidesGatedListsFromStrangers(t *testing.T) {
	lists := []string{"local-1", "local-3", "NATIVE-9"}

	testCases := []struct {
		name     string
		syncCtx  SyncContext
		grant    bool
		expected []string
	}{
		{
			name:     "anonymous reader never sees gated lists",
			expected: []string{"local-3", "NATIVE-9"},
		},
		{
			name:     "acting user without access",
			syncCtx:  SyncContext{ActingUserID: "u1"},
			expected: []string{"local-3", "NATIVE-9"},
		},
		{
			name:     "acting user with plan access",
			syncCtx:  SyncContext{ActingUserID: "u1"},
			grant:    true,
			expected: []string{"local-1", "local-3", "NATIVE-9"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBridgeFixture(false)
			if tc.grant {
				f.commerce.GrantAccess("u1", "local-1")
			}

			visible, err := f.bridge.FilterLists(context.Background(), tc.syncCtx, lists)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, visible)
		})
	}
}

func TestFilterListsObjects(t *testing.T) {
	f := newBridgeFixture(false)
	lists := []*model.SubscriptionList{
		{FormID: "local-1"},
		{FormID: "local-3"},
	}

	visible, err := f.bridge.FilterListsObjects(context.Background(), SyncContext{}, lists)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "local-3", visible[0].FormID)
}
