// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package errors

import "errors"

// Validation represents a malformed or otherwise unacceptable request.
type Validation struct {
	base
}

// Error returns the error message for Validation.
func (v Validation) Error() string {
	return v.error()
}

// Unwrap returns the wrapped error, if any.
func (v Validation) Unwrap() error {
	return v.err
}

// NewValidation creates a new Validation error with the provided message.
func NewValidation(message string, err ...error) Validation {
	return Validation{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// NotFound represents a referenced entity that does not exist.
type NotFound struct {
	base
}

// Error returns the error message for NotFound.
func (n NotFound) Error() string {
	return n.error()
}

// Unwrap returns the wrapped error, if any.
func (n NotFound) Unwrap() error {
	return n.err
}

// NewNotFound creates a new NotFound error with the provided message.
func NewNotFound(message string, err ...error) NotFound {
	return NotFound{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Configuration represents missing or invalid local configuration: absent
// credentials, a local list not configured for the active provider, or a
// disabled sync environment. Never retried automatically.
type Configuration struct {
	base
}

// Error returns the error message for Configuration.
func (c Configuration) Error() string {
	return c.error()
}

// Unwrap returns the wrapped error, if any.
func (c Configuration) Unwrap() error {
	return c.err
}

// NewConfiguration creates a new Configuration error with the provided message.
func NewConfiguration(message string, err ...error) Configuration {
	return Configuration{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Provider represents a failure reported by, or while talking to, an ESP API.
// Code carries a machine-readable classification suitable for log filtering.
type Provider struct {
	base
	code string
}

// Error returns the error message for Provider.
func (p Provider) Error() string {
	return p.error()
}

// Unwrap returns the wrapped error, if any.
func (p Provider) Unwrap() error {
	return p.err
}

// Code returns the machine-readable error code.
func (p Provider) Code() string {
	return p.code
}

// NewProvider creates a new Provider error with the given code and message.
func NewProvider(code, message string, err ...error) Provider {
	return Provider{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
		code: code,
	}
}

// NotImplemented represents a capability a provider does not support. Always a
// static, predictable response for that provider, never tied to request contents.
type NotImplemented struct {
	base
}

// Error returns the error message for NotImplemented.
func (n NotImplemented) Error() string {
	return n.error()
}

// Unwrap returns the wrapped error, if any.
func (n NotImplemented) Unwrap() error {
	return n.err
}

// NewNotImplemented creates a new NotImplemented error with the provided message.
func NewNotImplemented(message string, err ...error) NotImplemented {
	return NotImplemented{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Conflict represents a uniqueness or concurrent-revision conflict.
type Conflict struct {
	base
}

// Error returns the error message for Conflict.
func (c Conflict) Error() string {
	return c.error()
}

// Unwrap returns the wrapped error, if any.
func (c Conflict) Unwrap() error {
	return c.err
}

// NewConflict creates a new Conflict error with the provided message.
func NewConflict(message string, err ...error) Conflict {
	return Conflict{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Unauthorized represents an authentication failure against an external API.
type Unauthorized struct {
	base
}

// Error returns the error message for Unauthorized.
func (u Unauthorized) Error() string {
	return u.error()
}

// Unwrap returns the wrapped error, if any.
func (u Unauthorized) Unwrap() error {
	return u.err
}

// NewUnauthorized creates a new Unauthorized error with the provided message.
func NewUnauthorized(message string, err ...error) Unauthorized {
	return Unauthorized{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// ServiceUnavailable represents a dependency that is temporarily unreachable.
type ServiceUnavailable struct {
	base
}

// Error returns the error message for ServiceUnavailable.
func (s ServiceUnavailable) Error() string {
	return s.error()
}

// Unwrap returns the wrapped error, if any.
func (s ServiceUnavailable) Unwrap() error {
	return s.err
}

// NewServiceUnavailable creates a new ServiceUnavailable error with the provided message.
func NewServiceUnavailable(message string, err ...error) ServiceUnavailable {
	return ServiceUnavailable{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Unexpected represents an unexpected error in the application.
type Unexpected struct {
	base
}

// Error returns the error message for Unexpected.
func (u Unexpected) Error() string {
	return u.error()
}

// Unwrap returns the wrapped error, if any.
func (u Unexpected) Unwrap() error {
	return u.err
}

// NewUnexpected creates a new Unexpected error with the provided message.
func NewUnexpected(message string, err ...error) Unexpected {
	return Unexpected{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}
