// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama adapts a local Ollama server to the provider contract.
package ollama

import (
	"context"
	"strings"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// ProviderID is the stable routing identifier for the local backend.
const ProviderID = "ollama"

// =============================================================================
// PROVIDER ADAPTER
// =============================================================================

// Adapter exposes a local Ollama server through the provider contract.
type Adapter struct {
	client *Client
}

// NewAdapter wraps an existing client.
func NewAdapter(client *Client) *Adapter {
	if client == nil {
		client = NewClient()
	}
	return &Adapter{client: client}
}

// ID returns the stable provider identifier.
func (a *Adapter) ID() string {
	return ProviderID
}

// IsAvailable probes the local server root endpoint.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, provider.AvailabilityTimeout)
	defer cancel()
	return a.client.CheckRunning(probeCtx) == nil
}

// ListModels maps the local model catalog onto provider descriptors.
// Every local model streams and costs nothing per token.
func (a *Adapter) ListModels(ctx context.Context) ([]provider.ModelDescriptor, error) {
	models, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]provider.ModelDescriptor, 0, len(models))
	for _, m := range models {
		descriptors = append(descriptors, provider.ModelDescriptor{
			ID:                m.Name,
			DisplayName:       displayName(m),
			ProviderID:        ProviderID,
			ContextWindow:     a.client.config.ContextWindow,
			SupportsStreaming: true,
			IsLocal:           true,
		})
	}
	return descriptors, nil
}

// Chat dispatches a streaming request. The returned channel carries zero or
// more content chunks followed by exactly one terminal chunk, then closes.
func (a *Adapter) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	ch := make(chan provider.ChatChunk)

	go func() {
		defer close(ch)

		var usage provider.Usage
		finished := false

		err := a.client.ChatStream(ctx, a.client.buildRequest(req), func(chunk StreamChunk) {
			if chunk.Content != "" {
				provider.Emit(ctx, ch, provider.ContentChunk(chunk.Content))
			}
			if chunk.Done {
				usage = provider.Usage{
					PromptTokens:     chunk.PromptTokens,
					CompletionTokens: chunk.CompletionTokens,
					TotalTokens:      chunk.PromptTokens + chunk.CompletionTokens,
				}
				finished = true
			}
		})

		switch {
		case err != nil:
			provider.Emit(ctx, ch, provider.ErrorChunk(err.Error()))
		case finished:
			provider.Emit(ctx, ch, provider.DoneChunk(usage))
		default:
			// Stream ended without a done marker; treat as truncated.
			provider.Emit(ctx, ch, provider.ErrorChunk("stream ended unexpectedly"))
		}
	}()

	return ch
}

// displayName strips the tag suffix for cleaner picker rows
// ("qwen2.5-coder:14b" becomes "qwen2.5-coder 14b").
func displayName(m ModelInfo) string {
	name, tag, found := strings.Cut(m.Name, ":")
	if !found || tag == "latest" {
		return name
	}
	return name + " " + tag
}
