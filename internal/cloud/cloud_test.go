// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// =============================================================================
// SSE READER TESTS
// =============================================================================

func TestSSEReaderParsesEvents(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata: [DONE]\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, data, err = reader.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "[DONE]", string(data))
}

func TestSSEReaderIgnoresComments(t *testing.T) {
	input := ": keepalive\nid: 7\ndata: payload\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

const sseBody = `data: {"id":"c1","model":"gpt-4o","choices":[{"delta":{"role":"assistant","content":"Hel"},"finish_reason":""}]}

data: {"id":"c1","model":"gpt-4o","choices":[{"delta":{"content":"lo"},"finish_reason":""}]}

data: {"id":"c1","model":"gpt-4o","choices":[{"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":8,"completion_tokens":2,"total_tokens":10}}

data: [DONE]

`

func sseServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sseBody))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestChatStreamDeliversChunks(t *testing.T) {
	server := sseServer(t)
	client := NewClient("sk-test", server.URL)

	var content strings.Builder
	var sawUsage bool
	err := client.ChatStream(context.Background(), server.URL+"/chat/completions", ChatRequest{
		Model:    "gpt-4o",
		Messages: []provider.Message{provider.NewUserMessage("hi")},
	}, func(chunk StreamChunk) {
		content.WriteString(chunk.GetContent())
		if chunk.Usage != nil {
			sawUsage = true
			assert.Equal(t, 10, chunk.Usage.TotalTokens)
		}
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", content.String())
	assert.True(t, sawUsage)
}

func TestChatStreamRequiresAPIKey(t *testing.T) {
	client := NewClient("", DefaultOpenAIURL)

	err := client.ChatStream(context.Background(), "http://unused", ChatRequest{}, func(StreamChunk) {})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStreamChatTerminatesWithDone(t *testing.T) {
	server := sseServer(t)
	client := NewClient("sk-test", server.URL)

	var content strings.Builder
	var terminal provider.ChatChunk
	for chunk := range streamChat(context.Background(), client, server.URL+"/chat/completions", provider.ChatRequest{
		ModelID:  "gpt-4o",
		Messages: []provider.Message{provider.NewUserMessage("hi")},
	}) {
		if chunk.Kind == provider.ChunkContent {
			content.WriteString(chunk.Text)
		} else {
			terminal = chunk
		}
	}

	assert.Equal(t, "Hello", content.String())
	assert.Equal(t, provider.ChunkDone, terminal.Kind)
	assert.Equal(t, 8, terminal.Usage.PromptTokens)
	assert.Equal(t, 2, terminal.Usage.CompletionTokens)
}

func TestStreamChatSurfacesAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"invalid_api_key","message":"bad key"}}`))
	}))
	t.Cleanup(server.Close)
	client := NewClient("sk-bad", server.URL)

	var chunks []provider.ChatChunk
	for chunk := range streamChat(context.Background(), client, server.URL+"/chat/completions", provider.ChatRequest{ModelID: "gpt-4o"}) {
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 1)
	assert.Equal(t, provider.ChunkError, chunks[0].Kind)
	assert.Contains(t, chunks[0].Err, "authentication failed")
}

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestHandleErrorResponse(t *testing.T) {
	client := NewClient("sk-test", DefaultOpenAIURL)

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusPaymentRequired, ErrInsufficientCredits},
		{http.StatusNotFound, ErrModelNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		err := client.handleErrorResponse(tt.status, []byte(`{"error":{"message":"nope"}}`))
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(ErrRateLimited))
	assert.True(t, isRetryable(&APIError{Status: 503}))
	assert.False(t, isRetryable(&APIError{Status: 404}))
	assert.False(t, isRetryable(context.Canceled))
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestOpenRouterListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"anthropic/claude-3.5-sonnet","name":"Claude 3.5 Sonnet","context_length":200000,"pricing":{"prompt":"0.000003","completion":"0.000015"}}]}`))
	}))
	t.Cleanup(server.Close)

	p := NewOpenRouterProvider("sk-or-test")
	p.client.baseURL = server.URL

	descriptors, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)

	d := descriptors[0]
	assert.Equal(t, "anthropic/claude-3.5-sonnet", d.ID)
	assert.Equal(t, "Claude 3.5 Sonnet", d.DisplayName)
	assert.Equal(t, OpenRouterProviderID, d.ProviderID)
	assert.Equal(t, 200000, d.ContextWindow)
	assert.InDelta(t, 0.003, d.CostPerKInput, 1e-9)
	assert.InDelta(t, 0.015, d.CostPerKOutput, 1e-9)
	assert.False(t, d.IsLocal)
}

func TestPerTokenToPerK(t *testing.T) {
	assert.InDelta(t, 0.003, perTokenToPerK("0.000003"), 1e-9)
	assert.Zero(t, perTokenToPerK("not-a-number"))
}

func TestOpenAIListModelsUsesCuratedCatalog(t *testing.T) {
	p := NewOpenAIProvider("sk-test", []CatalogModel{
		{ID: "gpt-4o", DisplayName: "GPT-4o", ContextWindow: 128000, CostPerKInput: 0.005, CostPerKOutput: 0.015},
	})

	descriptors, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, OpenAIProviderID, descriptors[0].ProviderID)
	assert.Equal(t, 128000, descriptors[0].ContextWindow)
}

// =============================================================================
// AZURE TESTS
// =============================================================================

func TestAzureChatURL(t *testing.T) {
	p := NewAzureProvider("https://myres.openai.azure.com/", "key", "", []CatalogModel{{ID: "gpt-4o-drill"}})

	url := p.chatURL("gpt-4o-drill")
	assert.Equal(t,
		"https://myres.openai.azure.com/openai/deployments/gpt-4o-drill/chat/completions?api-version="+DefaultAzureAPIVersion,
		url)
}

func TestAzureUsesAPIKeyHeader(t *testing.T) {
	var gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("api-key")
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	t.Cleanup(server.Close)

	p := NewAzureProvider(server.URL, "azure-key", "", []CatalogModel{{ID: "dep"}})
	for range p.Chat(context.Background(), provider.ChatRequest{ModelID: "dep"}) {
	}

	assert.Empty(t, gotAuth)
	assert.Equal(t, "azure-key", gotKey)
}

func TestAzureListModelsAreDeployments(t *testing.T) {
	p := NewAzureProvider("https://myres.openai.azure.com", "key", "", []CatalogModel{
		{ID: "gpt-4o-drill", DisplayName: "GPT-4o (drill)", ContextWindow: 128000},
	})

	descriptors, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "gpt-4o-drill", descriptors[0].ID)
	assert.Equal(t, AzureProviderID, descriptors[0].ProviderID)
}

// =============================================================================
// FINGERPRINT TESTS
// =============================================================================

func TestKeyFingerprintNeverExposesKey(t *testing.T) {
	client := NewClient("sk-secret-value", DefaultOpenAIURL)

	fp := client.KeyFingerprint()
	assert.Len(t, fp, 8)
	assert.NotContains(t, fp, "secret")

	assert.Equal(t, "none", NewClient("", DefaultOpenAIURL).KeyFingerprint())
}
