// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import "time"

// MembershipStatusChangedEvent carries one membership state transition with
// old and new status in the same payload.
type MembershipStatusChangedEvent struct {
	Membership *Membership `json:"membership"`
	OldStatus  string      `json:"old_status"`
	NewStatus  string      `json:"new_status"`
	Timestamp  time.Time   `json:"timestamp"`
}

// MembershipSavedEvent fires on every membership save, including saves that
// do not change status. PreviousStatus in the args makes redundant saves
// detectable without shared handler state.
type MembershipSavedEvent struct {
	Plan      *MembershipPlan    `json:"plan"`
	Args      MembershipSaveArgs `json:"args"`
	Timestamp time.Time          `json:"timestamp"`
}

// MembershipDeletedEvent fires when a membership record is deleted outright.
type MembershipDeletedEvent struct {
	Membership *Membership `json:"membership"`
	Timestamp  time.Time   `json:"timestamp"`
}
