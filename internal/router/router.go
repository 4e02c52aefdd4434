// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router aggregates AI backend adapters behind one chat surface.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// Error variables for routing failures.
var (
	// ErrNoProvidersConfigured indicates initialization found zero reachable
	// backends.
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrUnknownModel indicates the requested model matches no known
	// descriptor.
	ErrUnknownModel = errors.New("unknown model")

	// ErrProviderUnavailable indicates the backend owning a model failed its
	// reachability probe.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderHealth is one row of a health report.
type ProviderHealth struct {
	ProviderID string
	Available  bool
	ModelCount int
}

// Router owns the provider registry and the aggregated model catalog.
// The catalog is rebuilt wholesale by Initialize and Refresh, never patched
// in place; reads see either the old snapshot or the new one.
type Router struct {
	mu        sync.RWMutex
	providers []provider.Provider
	active    map[string]provider.Provider        // provider ID -> reachable adapter
	catalog   map[string]provider.ModelDescriptor // model ID -> descriptor
	models    []provider.ModelDescriptor          // sorted snapshot for listing
}

// New creates a router over the given adapters. Call Initialize before Chat.
func New(providers ...provider.Provider) *Router {
	return &Router{
		providers: providers,
		active:    make(map[string]provider.Provider),
		catalog:   make(map[string]provider.ModelDescriptor),
	}
}

// Initialize probes every registered adapter and aggregates the catalogs of
// the reachable ones. An unreachable or erroring backend is skipped with a
// log line, never fatal. Returns ErrNoProvidersConfigured when no backend
// contributes any models.
func (r *Router) Initialize(ctx context.Context) error {
	active := make(map[string]provider.Provider)
	catalog := make(map[string]provider.ModelDescriptor)

	for _, p := range r.providers {
		if !p.IsAvailable(ctx) {
			log.Printf("router: provider %s unavailable, skipping", p.ID())
			continue
		}

		models, err := p.ListModels(ctx)
		if err != nil {
			log.Printf("router: provider %s model discovery failed: %v", p.ID(), err)
			continue
		}

		active[p.ID()] = p
		for _, m := range models {
			if _, dup := catalog[m.ID]; dup {
				// First provider to claim an ID wins; registration order is
				// the configured preference order.
				continue
			}
			catalog[m.ID] = m
		}
		log.Printf("router: provider %s contributed %d models", p.ID(), len(models))
	}

	if len(catalog) == 0 {
		return ErrNoProvidersConfigured
	}

	models := make([]provider.ModelDescriptor, 0, len(catalog))
	for _, m := range catalog {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].ProviderID != models[j].ProviderID {
			return models[i].ProviderID < models[j].ProviderID
		}
		return models[i].ID < models[j].ID
	})

	r.mu.Lock()
	r.active = active
	r.catalog = catalog
	r.models = models
	r.mu.Unlock()

	return nil
}

// Refresh re-runs discovery. The previous catalog stays in place on total
// failure so an intermittent outage does not blank the model picker.
func (r *Router) Refresh(ctx context.Context) error {
	return r.Initialize(ctx)
}

// Models returns the aggregated catalog snapshot, sorted by provider then ID.
func (r *Router) Models() []provider.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]provider.ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Lookup resolves a model ID to its descriptor.
func (r *Router) Lookup(modelID string) (provider.ModelDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.catalog[modelID]
	if !ok {
		return provider.ModelDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}
	return m, nil
}

// HasModel reports whether the catalog knows the given model ID.
func (r *Router) HasModel(modelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.catalog[modelID]
	return ok
}

// Chat dispatches a request to the provider owning the request's model.
// Routing failures come back as a terminal error chunk on the returned
// channel, so callers consume every outcome the same way.
func (r *Router) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	r.mu.RLock()
	descriptor, known := r.catalog[req.ModelID]
	var target provider.Provider
	if known {
		target = r.active[descriptor.ProviderID]
	}
	r.mu.RUnlock()

	if !known {
		log.Printf("router: chat rejected, unknown model %q", req.ModelID)
		return provider.FailStream(fmt.Sprintf("unknown model: %s", req.ModelID))
	}
	if target == nil {
		log.Printf("router: chat rejected, provider %s not active", descriptor.ProviderID)
		return provider.FailStream(fmt.Sprintf("provider unavailable: %s", descriptor.ProviderID))
	}

	log.Printf("router: chat model=%s provider=%s messages=%d",
		req.ModelID, descriptor.ProviderID, len(req.Messages))
	return target.Chat(ctx, req)
}

// HealthCheck probes every registered adapter and reports per-provider
// status with the current catalog counts.
func (r *Router) HealthCheck(ctx context.Context) []ProviderHealth {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, m := range r.models {
		counts[m.ProviderID]++
	}
	r.mu.RUnlock()

	report := make([]ProviderHealth, 0, len(r.providers))
	for _, p := range r.providers {
		report = append(report, ProviderHealth{
			ProviderID: p.ID(),
			Available:  p.IsAvailable(ctx),
			ModelCount: counts[p.ID()],
		})
	}
	return report
}
