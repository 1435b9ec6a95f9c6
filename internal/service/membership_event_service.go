// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// MembershipEventService routes commerce membership events from NATS to the
// membership bridge. Processing errors are returned for acknowledgment
// handling; they never propagate into other subscribers on the same subject.
type MembershipEventService struct {
	bridge *MembershipBridge
}

// NewMembershipEventService creates the event router over the bridge.
func NewMembershipEventService(bridge *MembershipBridge) *MembershipEventService {
	return &MembershipEventService{bridge: bridge}
}

// HandleMessage routes NATS messages to the bridge based on subject.
func (s *MembershipEventService) HandleMessage(ctx context.Context, msg *nats.Msg) error {
	subject := msg.Subject

	slog.DebugContext(ctx, "received commerce membership event", "subject", subject)

	var err error
	switch subject {
	case constants.MembershipStatusChangedSubject:
		err = s.handleStatusChanged(ctx, msg)
	case constants.MembershipSavedSubject:
		err = s.handleSaved(ctx, msg)
	case constants.MembershipDeletedSubject:
		err = s.handleDeleted(ctx, msg)
	default:
		slog.WarnContext(ctx, "unknown commerce event subject", "subject", subject)
		return fmt.Errorf("unknown commerce event subject: %s", subject)
	}

	if err != nil {
		slog.ErrorContext(ctx, "error processing commerce membership event",
			"error", err,
			"subject", subject)
		return err
	}

	return nil
}

func (s *MembershipEventService) handleStatusChanged(ctx context.Context, msg *nats.Msg) error {
	var event model.MembershipStatusChangedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal membership status changed event", "error", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Membership == nil {
		return errs.NewValidation("status changed event carries no membership")
	}

	slog.InfoContext(ctx, "processing membership status change",
		"membership_id", event.Membership.ID,
		"user_id", event.Membership.UserID,
		"old_status", event.OldStatus,
		"new_status", event.NewStatus,
	)

	return s.bridge.HandleMembershipStatusChange(ctx, event.Membership, event.OldStatus, event.NewStatus)
}

func (s *MembershipEventService) handleSaved(ctx context.Context, msg *nats.Msg) error {
	var event model.MembershipSavedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal membership saved event", "error", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Plan == nil {
		return errs.NewValidation("membership saved event carries no plan")
	}

	slog.InfoContext(ctx, "processing membership save",
		"membership_id", event.Args.MembershipID,
		"user_id", event.Args.UserID,
		"plan_id", event.Plan.ID,
		"is_update", event.Args.IsUpdate,
		"previous_status", event.Args.PreviousStatus,
	)

	return s.bridge.HandleMembershipSaved(ctx, event.Plan, event.Args)
}

func (s *MembershipEventService) handleDeleted(ctx context.Context, msg *nats.Msg) error {
	var event model.MembershipDeletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal membership deleted event", "error", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Membership == nil {
		return errs.NewValidation("deleted event carries no membership")
	}

	slog.InfoContext(ctx, "processing membership deletion",
		"membership_id", event.Membership.ID,
		"user_id", event.Membership.UserID,
	)

	return s.bridge.HandleMembershipDeleted(ctx, event.Membership)
}
