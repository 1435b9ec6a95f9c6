// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
	"github.com/daybreak-media/audience-sync-service/pkg/redaction"
)

// ResyncService re-derives and re-pushes contact data for commerce customers,
// subscriptions, and orders. Per-item failures are logged and skipped; the
// batch keeps going and the processed count reflects successes only.
type ResyncService struct {
	engine   *ContactSyncEngine
	commerce port.CommerceReader

	// syncEnabled is the environment-level gate. Checked once per run, not
	// per item; dry runs proceed regardless since nothing is sent.
	syncEnabled bool

	// masterListID is the list resynced contacts are upserted onto. May be a
	// local or provider-native identifier.
	masterListID string
}

// NewResyncService wires the bulk resync driver.
func NewResyncService(engine *ContactSyncEngine, commerce port.CommerceReader, syncEnabled bool, masterListID string) *ResyncService {
	return &ResyncService{
		engine:       engine,
		commerce:     commerce,
		syncEnabled:  syncEnabled,
		masterListID: masterListID,
	}
}

// Resync runs one bulk resync per the config's selection mode and returns the
// number of successfully processed contacts.
func (s *ResyncService) Resync(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	if !s.syncEnabled && !cfg.IsDryRun {
		return 0, errs.NewConfiguration("contact sync is disabled for this environment")
	}

	switch {
	case len(cfg.SubscriptionIDs) > 0:
		return s.resyncSubscriptionIDs(ctx, cfg)
	case len(cfg.OrderIDs) > 0:
		return s.resyncOrderIDs(ctx, cfg)
	case len(cfg.UserIDs) > 0:
		return s.resyncUserIDs(ctx, cfg)
	case cfg.MigratedSubscriptions != "":
		return s.resyncMigratedSubscriptions(ctx, cfg)
	default:
		return s.resyncAllCustomers(ctx, cfg)
	}
}

func (s *ResyncService) resyncSubscriptionIDs(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	processed := 0
	for _, id := range cfg.SubscriptionIDs {
		subscription, err := s.commerce.GetSubscription(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "skipping subscription", "subscription_id", id, "error", err)
			continue
		}
		if s.resyncSubscription(ctx, subscription, cfg) {
			processed++
		}
	}
	return processed, nil
}

func (s *ResyncService) resyncOrderIDs(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	processed := 0
	for _, id := range cfg.OrderIDs {
		order, err := s.commerce.GetOrder(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "skipping order", "order_id", id, "error", err)
			continue
		}
		if s.syncContact(ctx, order.ContactPayload(), cfg.IsDryRun) {
			processed++
		}
	}
	return processed, nil
}

func (s *ResyncService) resyncUserIDs(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	processed := 0
	for _, id := range cfg.UserIDs {
		customer, err := s.commerce.GetCustomer(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "skipping user", "user_id", id, "error", err)
			continue
		}
		if s.resyncCustomer(ctx, customer, cfg) {
			processed++
		}
	}
	return processed, nil
}

func (s *ResyncService) resyncMigratedSubscriptions(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	processed := 0
	offset := cfg.Offset

	for batch := 0; cfg.MaxBatches == 0 || batch < cfg.MaxBatches; batch++ {
		page, err := s.commerce.ListMigratedSubscriptions(ctx, cfg.MigratedSubscriptions, offset, cfg.BatchSize)
		if err != nil {
			return processed, err
		}
		if len(page) == 0 {
			break
		}

		for _, subscription := range page {
			if s.resyncSubscription(ctx, subscription, cfg) {
				processed++
			}
		}
		offset += len(page)
	}

	return processed, nil
}

func (s *ResyncService) resyncAllCustomers(ctx context.Context, cfg model.ResyncConfig) (int, error) {
	processed := 0
	offset := cfg.Offset

	for batch := 0; cfg.MaxBatches == 0 || batch < cfg.MaxBatches; batch++ {
		page, err := s.commerce.ListCustomers(ctx, offset, cfg.BatchSize)
		if err != nil {
			return processed, err
		}
		if len(page) == 0 {
			break
		}

		for _, customer := range page {
			if s.resyncCustomer(ctx, customer, cfg) {
				processed++
			}
		}
		offset += len(page)
	}

	return processed, nil
}

// resyncSubscription resolves the subscription's customer and pushes their
// contact payload.
func (s *ResyncService) resyncSubscription(ctx context.Context, subscription *model.Subscription, cfg model.ResyncConfig) bool {
	if cfg.ActiveOnly && subscription.Status != constants.SubscriptionStatusActive {
		slog.DebugContext(ctx, "skipping inactive subscription",
			"subscription_id", subscription.ID,
			"status", subscription.Status,
		)
		return false
	}

	customer, err := s.commerce.GetCustomer(ctx, subscription.CustomerID)
	if err != nil {
		slog.WarnContext(ctx, "skipping subscription without customer",
			"subscription_id", subscription.ID,
			"customer_id", subscription.CustomerID,
			"error", err,
		)
		return false
	}

	return s.syncContact(ctx, customer.ContactPayload(), cfg.IsDryRun)
}

// resyncCustomer applies the active-only filter and pushes the customer's
// contact payload.
func (s *ResyncService) resyncCustomer(ctx context.Context, customer *model.Customer, cfg model.ResyncConfig) bool {
	if cfg.ActiveOnly {
		subscriptions, err := s.commerce.CustomerSubscriptions(ctx, customer.ID)
		if err != nil {
			slog.WarnContext(ctx, "skipping customer, subscriptions unavailable",
				"customer_id", customer.ID,
				"error", err,
			)
			return false
		}
		active := false
		for _, subscription := range subscriptions {
			if subscription.Status == constants.SubscriptionStatusActive {
				active = true
				break
			}
		}
		if !active {
			slog.DebugContext(ctx, "skipping customer without active subscription",
				"customer_id", customer.ID,
			)
			return false
		}
	}

	return s.syncContact(ctx, customer.ContactPayload(), cfg.IsDryRun)
}

// syncContact pushes one contact to the master list, or only logs the intent
// on a dry run. Dry runs still count toward the processed total.
func (s *ResyncService) syncContact(ctx context.Context, contact model.Contact, dryRun bool) bool {
	if err := contact.Validate(); err != nil {
		slog.WarnContext(ctx, "skipping contact with no email", "error", err)
		return false
	}

	if dryRun {
		slog.InfoContext(ctx, "dry run, would resync contact",
			"email", redaction.RedactEmail(contact.Email),
			"list", s.masterListID,
		)
		return true
	}

	if _, err := s.engine.AddContact(ctx, contact, s.masterListID); err != nil {
		slog.WarnContext(ctx, "failed to resync contact",
			"email", redaction.RedactEmail(contact.Email),
			"error", err,
		)
		return false
	}

	slog.InfoContext(ctx, "contact resynced",
		"email", redaction.RedactEmail(contact.Email),
	)
	return true
}
