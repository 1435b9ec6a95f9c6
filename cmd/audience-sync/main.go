// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// The audience-sync service keeps a publication's reader base in sync with
// its email service provider: contact sync, membership-driven subscription
// changes, bulk resyncs, and at-most-once newsletter delivery.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/daybreak-media/audience-sync-service/pkg/log"
)

var configPath string

func main() {
	// Missing .env is fine, real deployments configure the environment
	// directly.
	_ = godotenv.Load()

	log.InitStructuredLogConfig()

	rootCmd := &cobra.Command{
		Use:          "audience-sync",
		Short:        "Contact list synchronization service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newResyncCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
