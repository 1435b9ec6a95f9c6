// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package woocommerce

// API data structures for the WooCommerce v3 REST API, including the
// Subscriptions and Memberships extension endpoints.

type billing struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type wcCustomer struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Billing   billing `json:"billing"`
}

type wcOrder struct {
	ID         int64   `json:"id"`
	CustomerID int64   `json:"customer_id"`
	Billing    billing `json:"billing"`
}

type metaEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type wcSubscription struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     string      `json:"status"`
	MetaData   []metaEntry `json:"meta_data"`
}

type wcContentRule struct {
	ContentType string   `json:"content_type"`
	ContentIDs  []string `json:"content_ids"`
}

type wcMembershipPlan struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Rules []wcContentRule `json:"rules"`
}

type accessCheckResponse struct {
	CanView bool `json:"can_view"`
}

// pageQuery is the query string for paged collection requests.
type pageQuery struct {
	Offset  int `url:"offset"`
	PerPage int `url:"per_page"`
}

// migratedQuery adds the migration source filter to a paged request.
type migratedQuery struct {
	Offset          int    `url:"offset"`
	PerPage         int    `url:"per_page"`
	MigrationSource string `url:"migration_source"`
}

// customerQuery filters subscriptions by owning customer.
type customerQuery struct {
	Customer string `url:"customer"`
}

// accessQuery is the query string for the content access check.
type accessQuery struct {
	UserID    string `url:"user_id"`
	ContentID string `url:"content_id"`
}
