// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

func TestMembershipEventServiceHandleMessage(t *testing.T) {
	ctx := context.Background()

	mustMarshal := func(t *testing.T, v any) []byte {
		t.Helper()
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return data
	}

	t.Run("status changed event deactivates", func(t *testing.T) {
		f := newBridgeFixture(false)
		f.subscribe(t, "local-1")
		events := NewMembershipEventService(f.bridge)

		msg := &nats.Msg{
			Subject: constants.MembershipStatusChangedSubject,
			Data: mustMarshal(t, model.MembershipStatusChangedEvent{
				Membership: f.membership(),
				OldStatus:  constants.MembershipStatusActive,
				NewStatus:  constants.MembershipStatusCancelled,
				Timestamp:  time.Now(),
			}),
		}

		require.NoError(t, events.HandleMessage(ctx, msg))

		locals, err := f.bridge.engine.GetContactLocalLists(ctx, "member@example.com")
		require.NoError(t, err)
		assert.Empty(t, locals)
	})

	t.Run("saved event resubscribes", func(t *testing.T) {
		f := newBridgeFixture(false)
		events := NewMembershipEventService(f.bridge)

		plan, err := f.commerce.GetPlan(ctx, "plan-1")
		require.NoError(t, err)

		msg := &nats.Msg{
			Subject: constants.MembershipSavedSubject,
			Data: mustMarshal(t, model.MembershipSavedEvent{
				Plan: plan,
				Args: model.MembershipSaveArgs{
					UserID:         "u1",
					MembershipID:   "m1",
					IsUpdate:       true,
					PreviousStatus: constants.MembershipStatusExpired,
				},
			}),
		}

		require.NoError(t, events.HandleMessage(ctx, msg))

		locals, err := f.bridge.engine.GetContactLocalLists(ctx, "member@example.com")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"local-1", "local-2"}, locals)
	})

	t.Run("deleted event removes plan lists", func(t *testing.T) {
		f := newBridgeFixture(false)
		f.subscribe(t, "local-2")
		events := NewMembershipEventService(f.bridge)

		msg := &nats.Msg{
			Subject: constants.MembershipDeletedSubject,
			Data:    mustMarshal(t, model.MembershipDeletedEvent{Membership: f.membership()}),
		}

		require.NoError(t, events.HandleMessage(ctx, msg))

		locals, err := f.bridge.engine.GetContactLocalLists(ctx, "member@example.com")
		require.NoError(t, err)
		assert.Empty(t, locals)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		f := newBridgeFixture(false)
		events := NewMembershipEventService(f.bridge)

		msg := &nats.Msg{
			Subject: constants.MembershipStatusChangedSubject,
			Data:    []byte("{not json"),
		}
		assert.Error(t, events.HandleMessage(ctx, msg))
	})

	t.Run("event without membership is rejected", func(t *testing.T) {
		f := newBridgeFixture(false)
		events := NewMembershipEventService(f.bridge)

		msg := &nats.Msg{
			Subject: constants.MembershipDeletedSubject,
			Data:    mustMarshal(t, model.MembershipDeletedEvent{}),
		}
		assert.Error(t, events.HandleMessage(ctx, msg))
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		f := newBridgeFixture(false)
		events := NewMembershipEventService(f.bridge)

		msg := &nats.Msg{Subject: "commerce.membership.archived", Data: []byte("{}")}
		assert.Error(t, events.HandleMessage(ctx, msg))
	})
}
