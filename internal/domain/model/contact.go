// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// Contact is an ESP-addressable subscriber. Email is the sole stable identity
// key across providers; a contact may not yet exist in the provider's system,
// creation is implicit on first add.
type Contact struct {
	Email    string            `json:"email"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks the contact carries the required identity key.
func (c *Contact) Validate() error {
	if c.Email == "" {
		return errs.NewValidation("contact email is required")
	}
	return nil
}

// ContactDetails is the provider-side view of a contact: identity plus the
// provider-native lists the contact is currently a member of.
type ContactDetails struct {
	Email    string            `json:"email"`
	Name     string            `json:"name,omitempty"`
	Lists    []string          `json:"lists"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ProviderList is a list or segment that exists directly in an ESP's own data
// model, referenced by the ESP's own identifier.
type ProviderList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}
