// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"
)

// =============================================================================
// PROVIDER CONTRACT
// =============================================================================

// AvailabilityTimeout bounds IsAvailable probes. An adapter that cannot
// answer within this window reports unavailable rather than blocking startup.
const AvailabilityTimeout = 10 * time.Second

// Provider is the uniform capability set implemented by every AI backend
// adapter.
//
// Contract:
//   - Chat must stop producing Content chunks within one read cycle of
//     context cancellation and must always terminate the channel with one
//     Done or Error chunk before closing it.
//   - ListModels returns descriptors for every model the backend currently
//     offers; an error means the backend contributes zero models.
//   - IsAvailable must return false, never panic or hang past
//     AvailabilityTimeout, on any network failure.
type Provider interface {
	// ID returns the stable provider identifier used for routing
	// (e.g. "ollama", "openai", "azure", "openrouter").
	ID() string

	// ListModels retrieves the backend's current model catalog.
	ListModels(ctx context.Context) ([]ModelDescriptor, error)

	// Chat dispatches a streaming chat request. The returned channel carries
	// zero or more Content chunks followed by exactly one terminal chunk,
	// then closes.
	Chat(ctx context.Context, req ChatRequest) <-chan ChatChunk

	// IsAvailable probes backend reachability within AvailabilityTimeout.
	IsAvailable(ctx context.Context) bool
}

// =============================================================================
// STREAM HELPERS
// =============================================================================

// Emit sends a chunk unless the context is already cancelled. Returns false
// when the send was abandoned because of cancellation.
func Emit(ctx context.Context, ch chan<- ChatChunk, chunk ChatChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// FailStream returns a closed channel carrying a single terminal Error
// chunk. Adapters use it for failures detected before streaming starts.
func FailStream(message string) <-chan ChatChunk {
	ch := make(chan ChatChunk, 1)
	ch <- ErrorChunk(message)
	close(ch)
	return ch
}
