// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat history. A Conversation owns an ordered message list
// plus token accounting; a Message tracks its own streaming state so tokens
// can accumulate without reallocating, and carries an interrupted flag for
// cancelled streams.
//
// # Key Types
//
//   - Conversation: chat history with token tracking and title management
//   - Message: a single turn, streaming-aware
//   - Statistics: generation timing captured while streaming
package model
