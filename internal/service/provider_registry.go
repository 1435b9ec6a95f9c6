// Copyright Daybreak Media and each contributor to the audience sync service.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"sort"

	"github.com/daybreak-media/audience-sync-service/internal/domain/port"
	errs "github.com/daybreak-media/audience-sync-service/pkg/errors"
)

// ProviderRegistry holds the closed set of ESP variants and resolves the
// configured active provider. Construction fails when the active name is not
// among the registered variants, so a misconfigured provider is caught at
// startup rather than at first sync.
type ProviderRegistry struct {
	providers map[string]port.Provider
	active    string
}

// NewProviderRegistry builds the registry from the given variants.
func NewProviderRegistry(activeName string, providers ...port.Provider) (*ProviderRegistry, error) {
	byName := make(map[string]port.Provider, len(providers))
	for _, p := range providers {
		if _, exists := byName[p.Name()]; exists {
			return nil, errs.NewConfiguration(fmt.Sprintf("duplicate provider registration %q", p.Name()))
		}
		byName[p.Name()] = p
	}

	if _, ok := byName[activeName]; !ok {
		return nil, errs.NewConfiguration(fmt.Sprintf("active provider %q is not registered", activeName))
	}

	return &ProviderRegistry{
		providers: byName,
		active:    activeName,
	}, nil
}

// Get resolves a provider by name.
func (r *ProviderRegistry) Get(name string) (port.Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, errs.NewNotFound(fmt.Sprintf("provider %q is not registered", name))
	}
	return p, nil
}

// Active returns the configured active provider.
func (r *ProviderRegistry) Active() port.Provider {
	return r.providers[r.active]
}

// All returns every registered provider in name order.
func (r *ProviderRegistry) All() []port.Provider {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]port.Provider, 0, len(names))
	for _, name := range names {
		all = append(all, r.providers[name])
	}
	return all
}
