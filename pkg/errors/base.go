// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package errors provides the typed error taxonomy for the audience sync service.
package errors

import "fmt"

// base holds the common fields shared by every error type in this package.
type base struct {
	message string
	err     error
}

// error renders the message, appending the wrapped cause when present.
// Any change here is reflected in every error type that embeds base.
func (b base) error() string {
	if b.err == nil {
		return b.message
	}
	return fmt.Sprintf("%s: %v", b.message, b.err)
}

// Unwrap exposes the underlying error to support errors.Is / errors.As.
func (b base) Unwrap() error {
	return b.err
}
