// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
)

// CommerceReader is the read-only view of the commerce plugin's data the sync
// core needs: customers, orders, subscriptions, membership plans, and the
// plugin's own content access check.
type CommerceReader interface {
	// GetCustomer fetches a customer/user record. NotFound when absent.
	GetCustomer(ctx context.Context, userID string) (*model.Customer, error)

	// ListCustomers returns one page of customers. An empty page signals
	// exhaustion to batch drivers.
	ListCustomers(ctx context.Context, offset, limit int) ([]*model.Customer, error)

	// GetOrder fetches an order record. NotFound when absent.
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)

	// GetSubscription fetches a subscription record. NotFound when absent.
	GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error)

	// ListMigratedSubscriptions returns one page of subscriptions imported
	// from the named migration source.
	ListMigratedSubscriptions(ctx context.Context, source string, offset, limit int) ([]*model.Subscription, error)

	// CustomerSubscriptions returns all subscriptions belonging to a customer,
	// used by the active-only resync filter.
	CustomerSubscriptions(ctx context.Context, userID string) ([]*model.Subscription, error)

	// GetPlan fetches a membership plan with its content restriction rules.
	GetPlan(ctx context.Context, planID string) (*model.MembershipPlan, error)

	// ListPlans returns every membership plan, used to map local lists to the
	// plans that gate them for visibility filtering.
	ListPlans(ctx context.Context) ([]*model.MembershipPlan, error)

	// UserCanViewContent runs the commerce plugin's access-control check for a
	// piece of restricted content.
	UserCanViewContent(ctx context.Context, userID, contentID string) (bool, error)
}
