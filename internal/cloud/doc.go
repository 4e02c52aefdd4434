// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud adapts OpenAI-compatible HTTP backends to the provider
// contract.
//
// Three variants share one wire client: the OpenAI API itself, Azure OpenAI
// with its deployment-scoped URLs and api-key header, and the OpenRouter
// aggregator with its live model catalog. All three speak the same
// chat/completions SSE dialect, so the streaming path is written once and
// parameterized by endpoint and headers.
//
// Requests are paced through a token-bucket limiter and retried with
// exponential backoff on 5xx and rate-limit responses. API keys never appear
// in logs; diagnostics carry a SHA-256 fingerprint instead.
package cloud
