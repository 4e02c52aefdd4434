// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Role identifies the author of a chat message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// MODEL DESCRIPTOR
// =============================================================================

// ModelDescriptor is an immutable snapshot of one model offered by a backend.
// Descriptors are regenerated wholesale on every router (re)initialization,
// never patched in place.
type ModelDescriptor struct {
	ID                string  `json:"id"`
	DisplayName       string  `json:"display_name"`
	ProviderID        string  `json:"provider_id"`
	ContextWindow     int     `json:"context_window"`
	SupportsStreaming bool    `json:"supports_streaming"`
	SupportsTools     bool    `json:"supports_tools"`
	CostPerKInput     float64 `json:"cost_per_k_input,omitempty"`  // USD per 1K input tokens, 0 for local
	CostPerKOutput    float64 `json:"cost_per_k_output,omitempty"` // USD per 1K output tokens, 0 for local
	IsLocal           bool    `json:"is_local"`
}

// =============================================================================
// CHAT REQUEST
// =============================================================================

// ChatRequest describes one chat turn dispatched to a backend. Requests are
// constructed fresh per turn and never mutated after dispatch; cancellation
// travels on the context passed to Chat.
type ChatRequest struct {
	ModelID      string
	Messages     []Message
	SystemPrompt string
	Temperature  float64 // 0 means backend default
	MaxTokens    int     // 0 means backend default
	JSONMode     bool
}

// WireMessages returns the request messages with the system prompt, if any,
// prepended as a system-role message.
func (r *ChatRequest) WireMessages() []Message {
	msgs := make([]Message, 0, len(r.Messages)+1)
	if r.SystemPrompt != "" {
		msgs = append(msgs, NewSystemMessage(r.SystemPrompt))
	}
	msgs = append(msgs, r.Messages...)
	return msgs
}

// =============================================================================
// CHAT CHUNKS
// =============================================================================

// ChunkKind tags the variant of a ChatChunk.
type ChunkKind int

const (
	// ChunkContent carries an incremental piece of assistant text.
	ChunkContent ChunkKind = iota
	// ChunkDone terminates a stream after normal completion.
	ChunkDone
	// ChunkError terminates a stream after a failure.
	ChunkError
)

// Usage summarizes token accounting for a completed stream.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatChunk is the tagged variant streamed back from a backend: zero or more
// Content chunks followed by exactly one Done or Error chunk.
type ChatChunk struct {
	Kind  ChunkKind
	Text  string // set for ChunkContent
	Usage Usage  // set for ChunkDone when the backend reports it
	Err   string // set for ChunkError
}

// ContentChunk builds a content chunk.
func ContentChunk(text string) ChatChunk {
	return ChatChunk{Kind: ChunkContent, Text: text}
}

// DoneChunk builds the terminal success chunk.
func DoneChunk(usage Usage) ChatChunk {
	return ChatChunk{Kind: ChunkDone, Usage: usage}
}

// ErrorChunk builds the terminal failure chunk.
func ErrorChunk(message string) ChatChunk {
	return ChatChunk{Kind: ChunkError, Err: message}
}

// IsTerminal reports whether this chunk ends the stream.
func (c ChatChunk) IsTerminal() bool {
	return c.Kind == ChunkDone || c.Kind == ChunkError
}
