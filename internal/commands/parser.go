// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult is what the chat input layer dispatches on: whether the turn
// is a command at all, the registry match if any, and the argument split.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is the registry match, nil for an unknown name. The UI
	// reports unknown names with Name.
	Command *Command

	// Name is the command word as typed (e.g. "/rate")
	Name string

	// Args are the arguments after quote processing
	Args []string

	// RawArgs is the argument portion as typed, for commands that want
	// the unsplit text
	RawArgs string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser resolves chat input against a command registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser over the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse classifies one input line. Anything not starting with / is a plain
// chat turn (IsCommand=false). Problem titles and rating words may be
// quoted: `/start "linked list cycle"` yields one argument.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)

	result := ParseResult{}

	if !strings.HasPrefix(input, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}

	result.Name = parts[0]
	if len(parts) > 1 {
		result.Args = parts[1:]
		result.RawArgs = strings.TrimSpace(strings.TrimPrefix(input, result.Name))
	}

	result.Command = p.registry.Get(result.Name)
	return result
}

// IsCommand reports whether the input would parse as a command, for the
// input layer to decide between dispatch and a chat turn without a full
// Parse.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// =============================================================================
// TOKENIZING
// =============================================================================

// splitCommandLine tokenizes on spaces, keeping quoted runs together.
// Single and double quotes both group; \" and \' escape inside quotes.
// Shared with tab completion, which needs the same word boundaries the
// parser sees.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingle, inDouble bool

	for i := 0; i < len(input); i++ {
		char := rune(input[i])

		switch {
		case char == '\'' && !inDouble:
			inSingle = !inSingle

		case char == '"' && !inSingle:
			inDouble = !inDouble

		case char == '\\' && i+1 < len(input) && (inSingle || inDouble):
			next := rune(input[i+1])
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingle && !inDouble:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// =============================================================================
// ARGUMENT VALIDATION
// =============================================================================

// ValidateArgs checks parsed arguments against a command's definitions:
// required arguments must be present, and enum arguments (such as the
// /rate grades) must match one of the declared values, case-insensitively.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}

	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      argDef.Name,
				Message:  "required argument missing",
				Expected: argDef.Description,
			}
		}

		if i < len(args) && argDef.Type == ArgTypeEnum && len(argDef.Values) > 0 {
			valid := false
			for _, v := range argDef.Values {
				if strings.EqualFold(args[i], v) {
					valid = true
					break
				}
			}
			if !valid {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		}
	}

	return nil
}

// ValidationError explains which argument of which command failed and what
// would have been accepted; the UI shows Error() verbatim.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
