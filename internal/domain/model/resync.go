// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"

	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// DefaultResyncBatchSize is the page size used when none is configured.
const DefaultResyncBatchSize = 10

// MigrationSources is the closed set of subscription migration source names
// accepted by the migrated-subscriptions resync mode.
var MigrationSources = []string{"stripe", "piano", "network"}

// ResyncConfig enumerates the bulk resync selection and batching options.
// Selection modes are mutually exclusive in priority order: subscription IDs,
// then order IDs, then user IDs, then migrated subscriptions, then the default
// all-customers sweep.
type ResyncConfig struct {
	ActiveOnly            bool     `json:"active_only"`
	MigratedSubscriptions string   `json:"migrated_subscriptions,omitempty"`
	SubscriptionIDs       []string `json:"subscription_ids,omitempty"`
	UserIDs               []string `json:"user_ids,omitempty"`
	OrderIDs              []string `json:"order_ids,omitempty"`
	BatchSize             int      `json:"batch_size"`
	Offset                int      `json:"offset"`
	MaxBatches            int      `json:"max_batches"`
	IsDryRun              bool     `json:"is_dry_run"`
}

// Validate checks the migrated-subscriptions source against the closed set and
// normalizes the batch size.
func (c *ResyncConfig) Validate() error {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultResyncBatchSize
	}
	if c.Offset < 0 {
		return errs.NewValidation("offset must not be negative")
	}
	if c.MaxBatches < 0 {
		return errs.NewValidation("max batches must not be negative")
	}
	if c.MigratedSubscriptions == "" {
		return nil
	}
	for _, source := range MigrationSources {
		if c.MigratedSubscriptions == source {
			return nil
		}
	}
	return errs.NewValidation(
		fmt.Sprintf("unknown migration source %q", c.MigratedSubscriptions))
}
