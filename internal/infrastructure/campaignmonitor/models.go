// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package campaignmonitor

// API data structures for the Campaign Monitor v3.3 API.

type listSummary struct {
	ListID string `json:"ListID"`
	Name   string `json:"Name"`
}

type listStats struct {
	TotalActiveSubscribers int `json:"TotalActiveSubscribers"`
}

type subscriberAddRequest struct {
	EmailAddress   string `json:"EmailAddress"`
	Name           string `json:"Name,omitempty"`
	Resubscribe    bool   `json:"Resubscribe"`
	ConsentToTrack string `json:"ConsentToTrack"`
}

type unsubscribeRequest struct {
	EmailAddress string `json:"EmailAddress"`
}

type listForEmail struct {
	ListID          string `json:"ListID"`
	SubscriberState string `json:"SubscriberState"`
}

// subscriberQuery is the query string for subscriber lookups.
type subscriberQuery struct {
	Email string `url:"email"`
}
