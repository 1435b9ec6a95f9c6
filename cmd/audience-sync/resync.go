// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	natsinfra "github.com/daybreak-media/audience-sync-service/internal/infrastructure/nats"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/woocommerce"
	"github.com/daybreak-media/audience-sync-service/internal/service"
)

func newResyncCmd() *cobra.Command {
	var resyncCfg model.ResyncConfig

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Push store customers to the active provider in batches",
		Long: `Resync pushes commerce customers to the active email provider.

Without a selector flag every customer is processed. Selector flags narrow
the run to specific subscriptions, orders, users, or a migration source.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResync(cmd.Context(), resyncCfg)
		},
	}

	cmd.Flags().BoolVar(&resyncCfg.IsDryRun, "dry-run", false, "count contacts without mutating the provider")
	cmd.Flags().BoolVar(&resyncCfg.ActiveOnly, "active-only", false, "only customers with an active subscription")
	cmd.Flags().StringVar(&resyncCfg.MigratedSubscriptions, "migrated-subscriptions", "", "resync subscriptions imported from this source")
	cmd.Flags().StringSliceVar(&resyncCfg.SubscriptionIDs, "subscription-ids", nil, "resync these subscription IDs")
	cmd.Flags().StringSliceVar(&resyncCfg.UserIDs, "user-ids", nil, "resync these user IDs")
	cmd.Flags().StringSliceVar(&resyncCfg.OrderIDs, "order-ids", nil, "resync the billing identities of these order IDs")
	cmd.Flags().IntVar(&resyncCfg.BatchSize, "batch-size", model.DefaultResyncBatchSize, "customers fetched per page")
	cmd.Flags().IntVar(&resyncCfg.Offset, "offset", 0, "customers to skip before the first batch")
	cmd.Flags().IntVar(&resyncCfg.MaxBatches, "max-batches", 0, "stop after this many batches, 0 means unbounded")

	return cmd
}

func runResync(ctx context.Context, resyncCfg model.ResyncConfig) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	natsClient, err := natsinfra.NewClient(ctx, natsinfra.Config{
		URL:           cfg.NATS.URL,
		Timeout:       cfg.NATS.Timeout,
		MaxReconnect:  cfg.NATS.MaxReconnect,
		ReconnectWait: cfg.NATS.ReconnectWait,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := natsClient.Close(); closeErr != nil {
			slog.ErrorContext(ctx, "failed to close NATS connection", "error", closeErr)
		}
	}()

	registry, err := service.NewProviderRegistry(cfg.Provider.Active, buildProviders()...)
	if err != nil {
		return err
	}

	commerce, err := woocommerce.NewClient(woocommerce.NewConfigFromEnv())
	if err != nil {
		return err
	}

	engine := service.NewContactSyncEngine(registry.Active(), natsinfra.NewStorage(natsClient))
	resync := service.NewResyncService(engine, commerce, cfg.Sync.Enabled, cfg.Provider.MasterListID)

	processed, err := resync.Resync(ctx, resyncCfg)
	if err != nil {
		return err
	}

	mode := "live"
	if resyncCfg.IsDryRun {
		mode = "dry-run"
	}
	fmt.Printf("resync complete: %d contacts processed (%s)\n", processed, mode)
	return nil
}
