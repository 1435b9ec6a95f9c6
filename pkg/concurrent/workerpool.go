// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

// Package concurrent provides a bounded worker pool for fanning out
// independent operations, such as collecting usage reports from every
// credentialed provider.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a set of functions with a bounded level of parallelism.
type WorkerPool struct {
	limit int
}

// NewWorkerPool creates a pool that runs at most limit functions concurrently.
// A limit below 1 is treated as 1.
func NewWorkerPool(limit int) *WorkerPool {
	if limit < 1 {
		limit = 1
	}
	return &WorkerPool{limit: limit}
}

// Run executes all functions and returns the first error encountered, if any.
// Remaining functions are cancelled through the shared context once one fails.
func (p *WorkerPool) Run(ctx context.Context, fns ...func() error) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for _, fn := range fns {
		g.Go(fn)
	}

	return g.Wait()
}
