// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// =============================================================================
// FAKE PROVIDER
// =============================================================================

type fakeProvider struct {
	id        string
	available bool
	models    []provider.ModelDescriptor
	listErr   error
	chatCalls int
	reply     string
}

func (f *fakeProvider) ID() string { return f.id }

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakeProvider) ListModels(ctx context.Context) ([]provider.ModelDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.models, nil
}

func (f *fakeProvider) Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	f.chatCalls++
	ch := make(chan provider.ChatChunk, 2)
	ch <- provider.ContentChunk(f.reply)
	ch <- provider.DoneChunk(provider.Usage{})
	close(ch)
	return ch
}

func model(id, providerID string) provider.ModelDescriptor {
	return provider.ModelDescriptor{ID: id, ProviderID: providerID, SupportsStreaming: true}
}

// =============================================================================
// INITIALIZATION TESTS
// =============================================================================

func TestInitializeSkipsUnreachableProviders(t *testing.T) {
	up := &fakeProvider{id: "ollama", available: true, models: []provider.ModelDescriptor{model("local-a", "ollama")}}
	down := &fakeProvider{id: "openrouter", available: false, models: []provider.ModelDescriptor{model("cloud-a", "openrouter")}}

	r := New(up, down)
	require.NoError(t, r.Initialize(context.Background()))

	models := r.Models()
	require.Len(t, models, 1)
	assert.Equal(t, "local-a", models[0].ID)
	assert.False(t, r.HasModel("cloud-a"))
}

func TestInitializeNoReachableProviders(t *testing.T) {
	r := New(
		&fakeProvider{id: "ollama", available: false},
		&fakeProvider{id: "openai", available: true, listErr: assert.AnError},
	)

	err := r.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNoProvidersConfigured)
}

func TestInitializeFirstProviderWinsDuplicateIDs(t *testing.T) {
	first := &fakeProvider{id: "ollama", available: true, models: []provider.ModelDescriptor{model("shared", "ollama")}}
	second := &fakeProvider{id: "openrouter", available: true, models: []provider.ModelDescriptor{model("shared", "openrouter")}}

	r := New(first, second)
	require.NoError(t, r.Initialize(context.Background()))

	d, err := r.Lookup("shared")
	require.NoError(t, err)
	assert.Equal(t, "ollama", d.ProviderID)
}

func TestModelsSortedByProviderThenID(t *testing.T) {
	p := &fakeProvider{id: "z", available: true, models: []provider.ModelDescriptor{
		model("b", "z"), model("a", "z"),
	}}
	q := &fakeProvider{id: "a", available: true, models: []provider.ModelDescriptor{
		model("c", "a"),
	}}

	r := New(p, q)
	require.NoError(t, r.Initialize(context.Background()))

	models := r.Models()
	require.Len(t, models, 3)
	assert.Equal(t, "c", models[0].ID)
	assert.Equal(t, "a", models[1].ID)
	assert.Equal(t, "b", models[2].ID)
}

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestChatRoutesToOwningProvider(t *testing.T) {
	local := &fakeProvider{id: "ollama", available: true, reply: "from local",
		models: []provider.ModelDescriptor{model("local-a", "ollama")}}
	cloud := &fakeProvider{id: "openrouter", available: true, reply: "from cloud",
		models: []provider.ModelDescriptor{model("cloud-a", "openrouter")}}

	r := New(local, cloud)
	require.NoError(t, r.Initialize(context.Background()))

	var text string
	for chunk := range r.Chat(context.Background(), provider.ChatRequest{ModelID: "cloud-a"}) {
		if chunk.Kind == provider.ChunkContent {
			text += chunk.Text
		}
	}

	assert.Equal(t, "from cloud", text)
	assert.Zero(t, local.chatCalls)
	assert.Equal(t, 1, cloud.chatCalls)
}

func TestChatUnknownModelYieldsErrorChunk(t *testing.T) {
	p := &fakeProvider{id: "ollama", available: true, models: []provider.ModelDescriptor{model("known", "ollama")}}
	r := New(p)
	require.NoError(t, r.Initialize(context.Background()))

	var chunks []provider.ChatChunk
	for chunk := range r.Chat(context.Background(), provider.ChatRequest{ModelID: "missing"}) {
		chunks = append(chunks, chunk)
	}

	require.Len(t, chunks, 1)
	assert.Equal(t, provider.ChunkError, chunks[0].Kind)
	assert.Contains(t, chunks[0].Err, "unknown model")
	assert.Zero(t, p.chatCalls)
}

func TestLookupUnknownModel(t *testing.T) {
	r := New()

	_, err := r.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestHealthCheckReportsAllProviders(t *testing.T) {
	up := &fakeProvider{id: "ollama", available: true, models: []provider.ModelDescriptor{
		model("a", "ollama"), model("b", "ollama"),
	}}
	down := &fakeProvider{id: "azure", available: false}

	r := New(up, down)
	require.NoError(t, r.Initialize(context.Background()))

	report := r.HealthCheck(context.Background())
	require.Len(t, report, 2)
	assert.Equal(t, "ollama", report[0].ProviderID)
	assert.True(t, report[0].Available)
	assert.Equal(t, 2, report[0].ModelCount)
	assert.False(t, report[1].Available)
	assert.Zero(t, report[1].ModelCount)
}

func TestRefreshRebuildsCatalog(t *testing.T) {
	p := &fakeProvider{id: "ollama", available: true, models: []provider.ModelDescriptor{model("old", "ollama")}}
	r := New(p)
	require.NoError(t, r.Initialize(context.Background()))
	require.True(t, r.HasModel("old"))

	p.models = []provider.ModelDescriptor{model("new", "ollama")}
	require.NoError(t, r.Refresh(context.Background()))

	assert.False(t, r.HasModel("old"))
	assert.True(t, r.HasModel("new"))
}
