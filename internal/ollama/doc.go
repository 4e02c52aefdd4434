// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama adapts a local Ollama server to the provider contract.
//
// The server speaks NDJSON over HTTP on 127.0.0.1:11434. Each streamed line
// carries an incremental message fragment; the final line sets done and
// reports token counts, which the adapter folds into the terminal Done chunk.
// Local models are advertised as free and streaming-capable.
//
// EnsureRunning can launch the server process itself when it is installed
// but not running (see start_unix.go and start_windows.go).
package ollama
