// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// CommerceReader is an in-memory commerce data double.
type CommerceReader struct {
	customers     map[string]*model.Customer
	orders        map[string]*model.Order
	subscriptions map[string]*model.Subscription
	plans         map[string]*model.MembershipPlan
	access        map[string]bool // userID|contentID -> can view

	ListCustomersCalls int

	mu sync.RWMutex
}

// NewCommerceReader creates an empty commerce double.
func NewCommerceReader() *CommerceReader {
	return &CommerceReader{
		customers:     make(map[string]*model.Customer),
		orders:        make(map[string]*model.Order),
		subscriptions: make(map[string]*model.Subscription),
		plans:         make(map[string]*model.MembershipPlan),
		access:        make(map[string]bool),
	}
}

// AddCustomer installs a customer record.
func (c *CommerceReader) AddCustomer(customer *model.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[customer.ID] = customer
}

// AddOrder installs an order record.
func (c *CommerceReader) AddOrder(order *model.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[order.ID] = order
}

// AddSubscription installs a subscription record.
func (c *CommerceReader) AddSubscription(subscription *model.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[subscription.ID] = subscription
}

// AddPlan installs a membership plan.
func (c *CommerceReader) AddPlan(plan *model.MembershipPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[plan.ID] = plan
}

// GrantAccess marks a user as able to view a piece of restricted content.
func (c *CommerceReader) GrantAccess(userID, contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access[userID+"|"+contentID] = true
}

// GetCustomer implements port.CommerceReader.
func (c *CommerceReader) GetCustomer(_ context.Context, userID string) (*model.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	customer, ok := c.customers[userID]
	if !ok {
		return nil, errs.NewNotFound("customer not found")
	}
	return customer, nil
}

// ListCustomers implements port.CommerceReader with deterministic ID order.
func (c *CommerceReader) ListCustomers(_ context.Context, offset, limit int) ([]*model.Customer, error) {
	c.mu.Lock()
	c.ListCustomersCalls++
	c.mu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.customers))
	for id := range c.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	page := make([]*model.Customer, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, c.customers[id])
	}
	return page, nil
}

// GetOrder implements port.CommerceReader.
func (c *CommerceReader) GetOrder(_ context.Context, orderID string) (*model.Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	order, ok := c.orders[orderID]
	if !ok {
		return nil, errs.NewNotFound("order not found")
	}
	return order, nil
}

// GetSubscription implements port.CommerceReader.
func (c *CommerceReader) GetSubscription(_ context.Context, subscriptionID string) (*model.Subscription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subscription, ok := c.subscriptions[subscriptionID]
	if !ok {
		return nil, errs.NewNotFound("subscription not found")
	}
	return subscription, nil
}

// ListMigratedSubscriptions implements port.CommerceReader.
func (c *CommerceReader) ListMigratedSubscriptions(_ context.Context, source string, offset, limit int) ([]*model.Subscription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.subscriptions))
	for id, subscription := range c.subscriptions {
		if subscription.MigrationSource == source {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	page := make([]*model.Subscription, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, c.subscriptions[id])
	}
	return page, nil
}

// CustomerSubscriptions implements port.CommerceReader.
func (c *CommerceReader) CustomerSubscriptions(_ context.Context, userID string) ([]*model.Subscription, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.subscriptions))
	for id, subscription := range c.subscriptions {
		if subscription.CustomerID == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*model.Subscription, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.subscriptions[id])
	}
	return out, nil
}

// GetPlan implements port.CommerceReader.
func (c *CommerceReader) GetPlan(_ context.Context, planID string) (*model.MembershipPlan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	plan, ok := c.plans[planID]
	if !ok {
		return nil, errs.NewNotFound("membership plan not found")
	}
	return plan, nil
}

// ListPlans implements port.CommerceReader.
func (c *CommerceReader) ListPlans(_ context.Context) ([]*model.MembershipPlan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.plans))
	for id := range c.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*model.MembershipPlan, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.plans[id])
	}
	return out, nil
}

// UserCanViewContent implements port.CommerceReader.
func (c *CommerceReader) UserCanViewContent(_ context.Context, userID, contentID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access[userID+"|"+contentID], nil
}
