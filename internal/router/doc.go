// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router aggregates AI backend adapters behind one chat surface.
//
// At initialization every registered adapter is probed; unreachable backends
// are skipped with a log line rather than failing startup, and the reachable
// ones contribute their model catalogs to a single aggregated snapshot.
// Chat requests are dispatched to the provider owning the requested model,
// and routing failures travel as terminal error chunks so callers consume
// every outcome through the same channel.
//
// # Key Types
//
//   - Router: provider registry plus aggregated model catalog
//   - ProviderHealth: per-backend row from HealthCheck
//
// # Usage
//
//	r := router.New(ollamaAdapter, openrouterAdapter)
//	if err := r.Initialize(ctx); err != nil {
//	    // no backend reachable
//	}
//	for chunk := range r.Chat(ctx, req) {
//	    // content chunks, then one terminal chunk
//	}
package router
