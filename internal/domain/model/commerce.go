// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

// Customer is a commerce customer/user record.
type Customer struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	BillingEmail string `json:"billing_email,omitempty"`
	BillingName  string `json:"billing_name,omitempty"`
}

// ContactPayload derives the ESP contact for a customer. A missing billing
// email is backfilled from the account email.
func (c *Customer) ContactPayload() Contact {
	email := c.BillingEmail
	if email == "" {
		email = c.Email
	}
	name := c.BillingName
	if name == "" {
		name = c.Name
	}
	return Contact{
		Email: email,
		Name:  name,
		Metadata: map[string]string{
			"registration_source": "woocommerce",
			"customer_id":         c.ID,
		},
	}
}

// Order is a commerce order record.
type Order struct {
	ID           string `json:"id"`
	CustomerID   string `json:"customer_id"`
	BillingEmail string `json:"billing_email"`
	BillingName  string `json:"billing_name,omitempty"`
}

// ContactPayload derives the ESP contact for an order's billing identity.
func (o *Order) ContactPayload() Contact {
	return Contact{
		Email: o.BillingEmail,
		Name:  o.BillingName,
		Metadata: map[string]string{
			"registration_source": "woocommerce-order",
			"order_id":            o.ID,
		},
	}
}

// Subscription is a recurring commerce subscription record.
type Subscription struct {
	ID              string `json:"id"`
	CustomerID      string `json:"customer_id"`
	Status          string `json:"status"`
	MigrationSource string `json:"migration_source,omitempty"`
}
