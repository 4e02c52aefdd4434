// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// This package handles parsing and executing slash commands in the chat
// interface, providing autocomplete and command registration.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - Parser: Quote-aware command line parser
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /start, /end, /hint, /giveup, /rate: Practice session control
//   - /timer, /pause, /resume, /stop: Countdown control
//   - /mode, /model, /models: Persona and model selection
//   - /clear, /export, /transcripts: Conversation management
//
// # Usage
//
// Parse and dispatch a command:
//
//	result := parser.Parse(input)
//	if result.IsCommand && result.Command != nil {
//	    return result.Command.Handler(ctx, result.Args)
//	}
//
// Get completions:
//
//	completions := completer.Complete("/mo", 3)
//	// Returns /mode, /model, /models
package commands
