// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireMessagesPrependsSystemPrompt(t *testing.T) {
	req := ChatRequest{
		ModelID:      "qwen2.5-coder:14b",
		SystemPrompt: "You are a coach.",
		Messages: []Message{
			NewUserMessage("hello"),
			NewAssistantMessage("hi"),
		},
	}

	msgs := req.WireMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are a coach.", msgs[0].Content)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
}

func TestWireMessagesWithoutSystemPrompt(t *testing.T) {
	req := ChatRequest{Messages: []Message{NewUserMessage("hello")}}

	msgs := req.WireMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
}

func TestChunkVariants(t *testing.T) {
	tests := []struct {
		name     string
		chunk    ChatChunk
		terminal bool
	}{
		{"content", ContentChunk("token"), false},
		{"done", DoneChunk(Usage{PromptTokens: 10, CompletionTokens: 5}), true},
		{"error", ErrorChunk("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.chunk.IsTerminal())
		})
	}
}

func TestFailStreamTerminates(t *testing.T) {
	ch := FailStream("no such model")

	chunk, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, ChunkError, chunk.Kind)
	assert.Equal(t, "no such model", chunk.Err)

	_, ok = <-ch
	assert.False(t, ok, "stream must close after the terminal chunk")
}

func TestEmitAbandonsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan ChatChunk) // unbuffered, nobody reading
	sent := Emit(ctx, ch, ContentChunk("x"))
	assert.False(t, sent)
}
