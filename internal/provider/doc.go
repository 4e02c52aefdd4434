// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the uniform capability set every AI backend
// adapter implements: model listing, streaming chat, and a bounded
// availability probe.
//
// Adapters normalize wildly different wire formats (Ollama NDJSON, OpenAI
// SSE, Azure deployments, OpenRouter catalogs) into a single chunk stream:
// zero or more Content chunks terminated by exactly one Done or Error chunk.
// The channel returned by Chat is always closed after the terminal chunk, on
// success, failure, and cancellation alike, so consumers can range over it
// without leaking goroutines.
package provider
