// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/daybreak-media/audience-sync-service/internal/domain/model"
	"github.com/daybreak-media/audience-sync-service/pkg/concurrent"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// UsageReporter collects delivery counters from the registered providers.
type UsageReporter struct {
	registry *ProviderRegistry
}

// NewUsageReporter creates a reporter over the provider registry.
func NewUsageReporter(registry *ProviderRegistry) *UsageReporter {
	return &UsageReporter{registry: registry}
}

// ActiveReport returns the active provider's usage report.
func (r *UsageReporter) ActiveReport(ctx context.Context) (*model.UsageReport, error) {
	return r.registry.Active().GetUsageReport(ctx)
}

// CollectReports fans out to every credentialed provider concurrently and
// returns the reports keyed by provider name. Providers without usage
// reporting are skipped, not treated as failures.
func (r *UsageReporter) CollectReports(ctx context.Context) (map[string]*model.UsageReport, error) {
	providers := r.registry.All()

	var (
		mu      sync.Mutex
		reports = make(map[string]*model.UsageReport, len(providers))
		fns     []func() error
	)

	for _, p := range providers {
		if !p.HasAPICredentials() {
			continue
		}
		provider := p
		fns = append(fns, func() error {
			report, err := provider.GetUsageReport(ctx)
			if err != nil {
				var notImplemented errs.NotImplemented
				if errors.As(err, &notImplemented) {
					slog.DebugContext(ctx, "provider has no usage reporting",
						"provider", provider.Name(),
					)
					return nil
				}
				return err
			}
			mu.Lock()
			reports[provider.Name()] = report
			mu.Unlock()
			return nil
		})
	}

	if err := concurrent.NewWorkerPool(len(fns)).Run(ctx, fns...); err != nil {
		return nil, err
	}

	return reports, nil
}
