// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// Provider identifiers for the cloud backend variants.
const (
	OpenAIProviderID     = "openai"
	AzureProviderID      = "azure"
	OpenRouterProviderID = "openrouter"
)

// Endpoint defaults.
const (
	DefaultOpenAIURL       = "https://api.openai.com/v1"
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultAzureAPIVersion = "2024-06-01"
)

// CatalogModel is one curated model entry for backends whose /models
// endpoint does not report context or pricing (OpenAI) or that scope models
// to deployments (Azure).
type CatalogModel struct {
	ID             string
	DisplayName    string
	ContextWindow  int
	CostPerKInput  float64
	CostPerKOutput float64
}

// descriptor maps a catalog entry onto a provider descriptor.
func (m CatalogModel) descriptor(providerID string) provider.ModelDescriptor {
	name := m.DisplayName
	if name == "" {
		name = m.ID
	}
	return provider.ModelDescriptor{
		ID:                m.ID,
		DisplayName:       name,
		ProviderID:        providerID,
		ContextWindow:     m.ContextWindow,
		SupportsStreaming: true,
		CostPerKInput:     m.CostPerKInput,
		CostPerKOutput:    m.CostPerKOutput,
	}
}

// =============================================================================
// SHARED CHAT PATH
// =============================================================================

// wireRequest maps a provider request onto the OpenAI chat/completions body.
func wireRequest(req provider.ChatRequest) ChatRequest {
	wire := ChatRequest{
		Model:       req.ModelID,
		Messages:    req.WireMessages(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		wire.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return wire
}

// streamChat runs one streaming request and relays chunks onto a provider
// channel with the closed-after-terminal contract.
func streamChat(ctx context.Context, client *Client, url string, req provider.ChatRequest) <-chan provider.ChatChunk {
	ch := make(chan provider.ChatChunk)

	go func() {
		defer close(ch)

		var usage provider.Usage
		finished := false

		err := client.ChatStream(ctx, url, wireRequest(req), func(chunk StreamChunk) {
			if content := chunk.GetContent(); content != "" {
				provider.Emit(ctx, ch, provider.ContentChunk(content))
			}
			if chunk.Usage != nil {
				usage = provider.Usage{
					PromptTokens:     chunk.Usage.PromptTokens,
					CompletionTokens: chunk.Usage.CompletionTokens,
					TotalTokens:      chunk.Usage.TotalTokens,
				}
			}
			if chunk.IsDone() {
				finished = true
			}
		})

		switch {
		case err != nil:
			provider.Emit(ctx, ch, provider.ErrorChunk(err.Error()))
		case finished:
			provider.Emit(ctx, ch, provider.DoneChunk(usage))
		default:
			// [DONE] without a finish_reason still ends the stream cleanly.
			provider.Emit(ctx, ch, provider.DoneChunk(usage))
		}
	}()

	return ch
}

// =============================================================================
// OPENAI
// =============================================================================

// OpenAIProvider adapts the OpenAI API. The model catalog is curated from
// configuration because the live /models endpoint reports neither context
// windows nor pricing.
type OpenAIProvider struct {
	client *Client
	models []CatalogModel
}

// NewOpenAIProvider creates an adapter for the OpenAI API.
func NewOpenAIProvider(apiKey string, models []CatalogModel) *OpenAIProvider {
	return &OpenAIProvider{
		client: NewClient(apiKey, DefaultOpenAIURL),
		models: models,
	}
}

func (p *OpenAIProvider) ID() string {
	return OpenAIProviderID
}

func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if !p.client.IsConfigured() {
		return false
	}
	return p.client.Ping(ctx, p.client.baseURL+"/models") == nil
}

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]provider.ModelDescriptor, error) {
	descriptors := make([]provider.ModelDescriptor, 0, len(p.models))
	for _, m := range p.models {
		descriptors = append(descriptors, m.descriptor(OpenAIProviderID))
	}
	return descriptors, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	if !p.client.IsConfigured() {
		return provider.FailStream(ErrNotConfigured.Error())
	}
	return streamChat(ctx, p.client, p.client.baseURL+"/chat/completions", req)
}

// =============================================================================
// AZURE OPENAI
// =============================================================================

// AzureProvider adapts Azure OpenAI. Models map one-to-one onto configured
// deployments, and authentication uses the api-key header instead of a
// Bearer token.
type AzureProvider struct {
	client      *Client
	endpoint    string
	apiVersion  string
	deployments []CatalogModel
}

// NewAzureProvider creates an adapter for an Azure OpenAI resource.
// The endpoint is the resource base URL, e.g. https://myres.openai.azure.com.
func NewAzureProvider(endpoint, apiKey, apiVersion string, deployments []CatalogModel) *AzureProvider {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	client := NewClient(apiKey, endpoint).
		WithBearerAuth(false).
		WithHeader("api-key", apiKey)

	return &AzureProvider{
		client:      client,
		endpoint:    client.baseURL,
		apiVersion:  apiVersion,
		deployments: deployments,
	}
}

func (p *AzureProvider) ID() string {
	return AzureProviderID
}

func (p *AzureProvider) IsAvailable(ctx context.Context) bool {
	if !p.client.IsConfigured() || len(p.deployments) == 0 {
		return false
	}
	url := p.chatURL(p.deployments[0].ID)
	// A GET against the chat URL answers 405 when the deployment exists;
	// only transport failures and 5xx mark the backend unavailable.
	return p.client.Ping(ctx, url) == nil
}

func (p *AzureProvider) ListModels(ctx context.Context) ([]provider.ModelDescriptor, error) {
	descriptors := make([]provider.ModelDescriptor, 0, len(p.deployments))
	for _, d := range p.deployments {
		descriptors = append(descriptors, d.descriptor(AzureProviderID))
	}
	return descriptors, nil
}

func (p *AzureProvider) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	if !p.client.IsConfigured() {
		return provider.FailStream(ErrNotConfigured.Error())
	}
	return streamChat(ctx, p.client, p.chatURL(req.ModelID), req)
}

// chatURL builds the deployment-scoped completions URL.
func (p *AzureProvider) chatURL(deployment string) string {
	return p.endpoint + "/openai/deployments/" + deployment + "/chat/completions?api-version=" + p.apiVersion
}

// =============================================================================
// OPENROUTER
// =============================================================================

// OpenRouterProvider adapts the OpenRouter aggregator. The model catalog is
// fetched live with per-model context windows and pricing.
type OpenRouterProvider struct {
	client *Client
}

// NewOpenRouterProvider creates an adapter for OpenRouter.
func NewOpenRouterProvider(apiKey string) *OpenRouterProvider {
	client := NewClient(apiKey, DefaultOpenRouterURL).
		WithHeader("HTTP-Referer", "https://drillrun.local").
		WithHeader("X-Title", "drillrun")
	return &OpenRouterProvider{client: client}
}

func (p *OpenRouterProvider) ID() string {
	return OpenRouterProviderID
}

func (p *OpenRouterProvider) IsAvailable(ctx context.Context) bool {
	if !p.client.IsConfigured() {
		return false
	}
	return p.client.Ping(ctx, p.client.baseURL+"/models") == nil
}

func (p *OpenRouterProvider) ListModels(ctx context.Context) ([]provider.ModelDescriptor, error) {
	entries, err := p.client.FetchModels(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]provider.ModelDescriptor, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.ID
		}
		descriptors = append(descriptors, provider.ModelDescriptor{
			ID:                e.ID,
			DisplayName:       name,
			ProviderID:        OpenRouterProviderID,
			ContextWindow:     e.ContextLength,
			SupportsStreaming: true,
			CostPerKInput:     e.PromptPricePerK,
			CostPerKOutput:    e.CompletionPricePerK,
		})
	}
	return descriptors, nil
}

func (p *OpenRouterProvider) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	if !p.client.IsConfigured() {
		return provider.FailStream(ErrNotConfigured.Error())
	}
	return streamChat(ctx, p.client, p.client.baseURL+"/chat/completions", req)
}
