// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package activecampaign

// API data structures for the ActiveCampaign v3 API. Numeric identifiers and
// counters arrive as JSON strings, which is why most fields here are strings.

const (
	contactListStatusActive       = "1"
	contactListStatusUnsubscribed = "2"
)

type list struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listsResponse struct {
	Lists []list `json:"lists"`
}

type contact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type contactsResponse struct {
	Contacts []contact    `json:"contacts"`
	Meta     responseMeta `json:"meta"`
}

type responseMeta struct {
	Total string `json:"total"`
}

type contactFields struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type contactSyncRequest struct {
	Contact contactFields `json:"contact"`
}

type contactSyncResponse struct {
	Contact contact `json:"contact"`
}

type contactListUpdate struct {
	List    string `json:"list"`
	Contact string `json:"contact"`
	Status  string `json:"status"`
}

type contactListUpdateRequest struct {
	ContactList contactListUpdate `json:"contactList"`
}

type contactListEntry struct {
	List   string `json:"list"`
	Status string `json:"status"`
}

type contactListsResponse struct {
	ContactLists []contactListEntry `json:"contactLists"`
}

type tag struct {
	ID   string `json:"id"`
	Name string `json:"tag"`
}

type tagsResponse struct {
	Tags []tag `json:"tags"`
}

type tagCreateFields struct {
	Name    string `json:"tag"`
	TagType string `json:"tagType"`
}

type tagCreateRequest struct {
	Tag tagCreateFields `json:"tag"`
}

type tagCreateResponse struct {
	Tag tag `json:"tag"`
}

type contactTagFields struct {
	Contact string `json:"contact"`
	Tag     string `json:"tag"`
}

type contactTagRequest struct {
	ContactTag contactTagFields `json:"contactTag"`
}

type contactTagEntry struct {
	ID  string `json:"id"`
	Tag string `json:"tag"`
}

type contactTagsResponse struct {
	ContactTags []contactTagEntry `json:"contactTags"`
}

type campaignStats struct {
	SendAmount  string `json:"send_amt"`
	UniqueOpens string `json:"uniqueopens"`
	LinkClicks  string `json:"linkclicks"`
}

type campaignsResponse struct {
	Campaigns []campaignStats `json:"campaigns"`
}
