// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

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
// TEST HELPERS
// =============================================================================

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.CheckRunning(context.Background()))
}

func TestCheckRunningDown(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})

	err := client.CheckRunning(context.Background())
	assert.True(t, IsNotRunning(err))
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"qwen2.5-coder:14b","size":9000000000},{"name":"llama3.2:latest"}]}`))
	}))

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "qwen2.5-coder:14b", models[0].Name)
}

func TestAdapterListModels(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"qwen2.5-coder:14b"}]}`))
	}))
	adapter := NewAdapter(client)

	descriptors, err := adapter.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, descriptors, 1)

	d := descriptors[0]
	assert.Equal(t, "qwen2.5-coder:14b", d.ID)
	assert.Equal(t, "qwen2.5-coder 14b", d.DisplayName)
	assert.Equal(t, ProviderID, d.ProviderID)
	assert.True(t, d.IsLocal)
	assert.True(t, d.SupportsStreaming)
	assert.Zero(t, d.CostPerKInput)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"qwen2.5-coder:14b", "qwen2.5-coder 14b"},
		{"llama3.2:latest", "llama3.2"},
		{"mistral", "mistral"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, displayName(ModelInfo{Name: tt.name}))
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

const streamBody = `{"model":"qwen2.5-coder:14b","message":{"role":"assistant","content":"Hello"},"done":false}
{"model":"qwen2.5-coder:14b","message":{"role":"assistant","content":" world"},"done":false}
{"model":"qwen2.5-coder:14b","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":2}
`

func TestAdapterChatStreamsContentThenDone(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(streamBody))
	}))
	adapter := NewAdapter(client)

	var content strings.Builder
	var terminal provider.ChatChunk
	for chunk := range adapter.Chat(context.Background(), provider.ChatRequest{
		ModelID:  "qwen2.5-coder:14b",
		Messages: []provider.Message{provider.NewUserMessage("hi")},
	}) {
		switch chunk.Kind {
		case provider.ChunkContent:
			content.WriteString(chunk.Text)
		default:
			terminal = chunk
		}
	}

	assert.Equal(t, "Hello world", content.String())
	assert.Equal(t, provider.ChunkDone, terminal.Kind)
	assert.Equal(t, 12, terminal.Usage.PromptTokens)
	assert.Equal(t, 2, terminal.Usage.CompletionTokens)
	assert.Equal(t, 14, terminal.Usage.TotalTokens)
}

func TestAdapterChatModelNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	adapter := NewAdapter(client)

	var chunks []provider.ChatChunk
	for chunk := range adapter.Chat(context.Background(), provider.ChatRequest{ModelID: "nope"}) {
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 1)
	assert.Equal(t, provider.ChunkError, chunks[0].Kind)
	assert.Contains(t, chunks[0].Err, "model not found")
}

func TestAdapterChatTruncatedStream(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"m","message":{"role":"assistant","content":"partial"},"done":false}` + "\n"))
	}))
	adapter := NewAdapter(client)

	var terminal provider.ChatChunk
	for chunk := range adapter.Chat(context.Background(), provider.ChatRequest{ModelID: "m"}) {
		if chunk.IsTerminal() {
			terminal = chunk
		}
	}

	assert.Equal(t, provider.ChunkError, terminal.Kind)
}

func TestStreamReaderSkipsMalformedLines(t *testing.T) {
	body := "not json\n" + `{"message":{"content":"ok"},"done":true}` + "\n"
	reader := NewStreamReader(strings.NewReader(body))

	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(c StreamChunk) {
		chunks = append(chunks, c)
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "ok", chunks[0].Content)
	assert.True(t, chunks[0].Done)
}

// =============================================================================
// REQUEST MAPPING TESTS
// =============================================================================

func TestBuildRequest(t *testing.T) {
	client := NewClient()

	wire := client.buildRequest(provider.ChatRequest{
		ModelID:      "qwen2.5-coder:14b",
		SystemPrompt: "coach mode",
		Messages:     []provider.Message{provider.NewUserMessage("hi")},
		Temperature:  0.4,
		MaxTokens:    256,
		JSONMode:     true,
	})

	assert.Equal(t, "qwen2.5-coder:14b", wire.Model)
	require.Len(t, wire.Messages, 2)
	assert.Equal(t, provider.RoleSystem, wire.Messages[0].Role)
	assert.Equal(t, "json", wire.Format)
	require.NotNil(t, wire.Options)
	assert.Equal(t, 0.4, wire.Options.Temperature)
	assert.Equal(t, 256, wire.Options.NumPredict)
}
