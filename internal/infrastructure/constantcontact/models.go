// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package constantcontact

// API data structures for the Constant Contact v3 API.

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type contactList struct {
	ListID          string `json:"list_id"`
	Name            string `json:"name"`
	MembershipCount int    `json:"membership_count"`
}

type contactListsResponse struct {
	Lists []contactList `json:"lists"`
}

type emailAddress struct {
	Address          string `json:"address"`
	PermissionToSend string `json:"permission_to_send,omitempty"`
}

type ccContact struct {
	ContactID       string       `json:"contact_id"`
	EmailAddress    emailAddress `json:"email_address"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	ListMemberships []string     `json:"list_memberships"`
}

type contactsResponse struct {
	Contacts []ccContact `json:"contacts"`
}

type signUpFormRequest struct {
	EmailAddress    string   `json:"email_address"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	ListMemberships []string `json:"list_memberships"`
}

type contactUpdateRequest struct {
	EmailAddress    emailAddress `json:"email_address"`
	FirstName       string       `json:"first_name,omitempty"`
	LastName        string       `json:"last_name,omitempty"`
	ListMemberships []string     `json:"list_memberships"`
	UpdateSource    string       `json:"update_source"`
}
