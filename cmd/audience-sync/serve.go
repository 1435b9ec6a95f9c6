// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/activecampaign"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/campaignmonitor"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/constantcontact"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/letterhead"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/mailchimp"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/manual"
	natsinfra "github.com/daybreak-media/audience-sync-service/internal/infrastructure/nats"
	"github.com/daybreak-media/audience-sync-service/internal/infrastructure/woocommerce"
	"github.com/daybreak-media/audience-sync-service/internal/rest"
	"github.com/daybreak-media/audience-sync-service/internal/service"
	"github.com/daybreak-media/audience-sync-service/pkg/constants"
)

const messageTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync API server and commerce event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// buildProviders constructs every registered provider from its environment
// configuration.
func buildProviders() []port.Provider {
	return []port.Provider{
		mailchimp.NewClient(mailchimp.NewConfigFromEnv()),
		activecampaign.NewClient(activecampaign.NewConfigFromEnv()),
		campaignmonitor.NewClient(campaignmonitor.NewConfigFromEnv()),
		constantcontact.NewClient(constantcontact.NewConfigFromEnv()),
		letterhead.NewClient(letterhead.NewConfigFromEnv()),
		manual.NewProvider(),
	}
}

func runServe(parentCtx context.Context) error {
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	storage := natsinfra.NewStorage(natsClient)

	registry, err := service.NewProviderRegistry(cfg.Provider.Active, buildProviders()...)
	if err != nil {
		return err
	}

	engine := service.NewContactSyncEngine(registry.Active(), storage)

	commerce, err := woocommerce.NewClient(woocommerce.NewConfigFromEnv())
	if err != nil {
		return err
	}

	bridge := service.NewMembershipBridge(engine, commerce, storage, cfg.Sync.PostCheckoutSignup)
	events := service.NewMembershipEventService(bridge)
	if err := subscribeMembershipEvents(ctx, natsClient, events); err != nil {
		return err
	}

	server := rest.NewServer(rest.Config{
		Engine:    engine,
		Bridge:    bridge,
		Resync:    service.NewResyncService(engine, commerce, cfg.Sync.Enabled, cfg.Provider.MasterListID),
		SendGate:  service.NewSendGate(registry.Active(), storage, storage),
		Reporter:  service.NewUsageReporter(registry),
		Registry:  storage,
		Readiness: natsClient.IsReady,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "starting HTTP server",
			"port", cfg.Port,
			"provider", cfg.Provider.Active,
		)
		if serveErr := httpServer.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// subscribeMembershipEvents wires the commerce event subjects into the
// membership event service through a load-balanced queue group.
func subscribeMembershipEvents(ctx context.Context, natsClient *natsinfra.Client, events *service.MembershipEventService) error {
	subjects := []string{
		constants.MembershipStatusChangedSubject,
		constants.MembershipSavedSubject,
		constants.MembershipDeletedSubject,
	}

	for _, subject := range subjects {
		_, err := natsClient.QueueSubscribe(subject, constants.AudienceSyncQueue, func(msg *nats.Msg) {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "rejecting message, service shutting down", "subject", msg.Subject)
				if nakErr := msg.Nak(); nakErr != nil {
					slog.ErrorContext(ctx, "failed to nak message during shutdown", "error", nakErr)
				}
				return
			default:
			}

			// Fresh timeout context per message, not derived from the
			// shutdown context, so in-flight work finishes cleanly.
			msgCtx, cancel := context.WithTimeout(context.Background(), messageTimeout)
			defer cancel()

			if handleErr := events.HandleMessage(msgCtx, msg); handleErr != nil {
				slog.ErrorContext(msgCtx, "failed to process commerce event, will retry",
					"error", handleErr,
					"subject", msg.Subject,
				)
				if nakErr := msg.Nak(); nakErr != nil {
					slog.ErrorContext(msgCtx, "failed to nak message", "error", nakErr)
				}
				return
			}

			if ackErr := msg.Ack(); ackErr != nil {
				slog.ErrorContext(msgCtx, "failed to ack message", "error", ackErr)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		slog.InfoContext(ctx, "subscribed to commerce events", "subject", subject)
	}

	return nil
}
