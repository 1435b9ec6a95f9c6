// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import "time"

// MaxSendErrorLogEntries bounds the per-newsletter send error log.
const MaxSendErrorLogEntries = 10

// Newsletter is the minimal view of an authored newsletter the sync core
// needs to trigger a send: identity and resolved audience.
type Newsletter struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	ListIDs []string `json:"list_ids"`
}

// SendError is one logged failure while attempting a newsletter send.
type SendError struct {
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SendState is the persisted per-newsletter send bookkeeping: the at-most-once
// sent marker and the bounded error log.
type SendState struct {
	NewsletterID string      `json:"newsletter_id"`
	SentAt       *time.Time  `json:"sent_at,omitempty"`
	Errors       []SendError `json:"errors,omitempty"`
}

// AppendError records a send failure, keeping only the most recent entries.
func (s *SendState) AppendError(message string, at time.Time) {
	s.Errors = append(s.Errors, SendError{Message: message, OccurredAt: at})
	if len(s.Errors) > MaxSendErrorLogEntries {
		s.Errors = s.Errors[len(s.Errors)-MaxSendErrorLogEntries:]
	}
}

// LastError returns the most recent send error, nil when none was logged.
func (s *SendState) LastError() *SendError {
	if len(s.Errors) == 0 {
		return nil
	}
	return &s.Errors[len(s.Errors)-1]
}

// TestEmailPreferences holds a user's test-send recipient addresses.
type TestEmailPreferences struct {
	UserID    string    `json:"user_id"`
	Emails    []string  `json:"emails"`
	UpdatedAt time.Time `json:"updated_at"`
}
