// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/drillrun-tui/internal/config"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/rate <rating>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string

	// Completer for custom completion
	Completer func() []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString     ArgType = iota // Free-form string
	ArgTypeModel                     // Model id from the router catalog
	ArgTypeProblem                   // Problem id from the catalog
	ArgTypeTranscript                // Transcript id from saved transcripts
	ArgTypeEnum                      // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [category]",
		Args: []ArgDef{
			{
				Name:        "category",
				Required:    false,
				Type:        ArgTypeEnum,
				Values:      []string{"session", "timer", "conversation", "model"},
				Description: "Help category",
			},
		},
		Category: "Navigation",
		Handler:  HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit drillrun",
		Category:    "Navigation",
		Handler:     HandleQuit,
	})

	// Session
	r.Register(&Command{
		Name:        "/start",
		Aliases:     []string{"/begin"},
		Description: "Start a practice session on a problem",
		Usage:       "/start [problem]",
		Args: []ArgDef{
			{Name: "problem", Required: false, Type: ArgTypeProblem, Description: "Problem id, random when omitted"},
		},
		Category: "Session",
		Handler:  HandleStart,
	})

	r.Register(&Command{
		Name:        "/end",
		Description: "End the current practice session",
		Category:    "Session",
		Handler:     HandleEnd,
	})

	r.Register(&Command{
		Name:        "/problems",
		Description: "List the problem catalog",
		Category:    "Session",
		Handler:     HandleProblems,
	})

	r.Register(&Command{
		Name:        "/hint",
		Description: "Ask the interviewer for a hint",
		Category:    "Session",
		Handler:     HandleHint,
	})

	r.Register(&Command{
		Name:        "/giveup",
		Description: "Give up on the current problem and switch to teach mode",
		Category:    "Session",
		Handler:     HandleGiveUp,
	})

	r.Register(&Command{
		Name:        "/rate",
		Description: "Rate the completed attempt for scheduling",
		Usage:       "/rate <again|hard|good|easy>",
		Args: []ArgDef{
			{
				Name:        "rating",
				Required:    true,
				Type:        ArgTypeEnum,
				Values:      []string{"again", "hard", "good", "easy"},
				Description: "How the attempt went",
			},
		},
		Category: "Session",
		Handler:  HandleRate,
	})

	r.Register(&Command{
		Name:        "/stats",
		Description: "Show practice statistics",
		Category:    "Session",
		Handler:     HandleStats,
	})

	// Timer
	r.Register(&Command{
		Name:        "/timer",
		Aliases:     []string{"/t"},
		Description: "Start the countdown or show its state",
		Usage:       "/timer [minutes]",
		Args: []ArgDef{
			{Name: "minutes", Required: false, Type: ArgTypeString, Description: "Countdown length in minutes"},
		},
		Category: "Timer",
		Handler:  HandleTimer,
	})

	r.Register(&Command{
		Name:        "/pause",
		Description: "Pause the countdown",
		Category:    "Timer",
		Handler:     HandlePause,
	})

	r.Register(&Command{
		Name:        "/resume",
		Description: "Resume the paused countdown",
		Category:    "Timer",
		Handler:     HandleResume,
	})

	r.Register(&Command{
		Name:        "/stop",
		Description: "Stop the countdown",
		Category:    "Timer",
		Handler:     HandleStop,
	})

	// Conversation
	r.Register(&Command{
		Name:        "/mode",
		Description: "Select the coaching persona",
		Usage:       "/mode <interview|coach|teach>",
		Args: []ArgDef{
			{
				Name:        "mode",
				Required:    true,
				Type:        ArgTypeEnum,
				Values:      []string{"interview", "coach", "teach"},
				Description: "Coaching persona",
			},
		},
		Category: "Conversation",
		Handler:  HandleMode,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear conversation history",
		Category:    "Conversation",
		Handler:     HandleClear,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the session transcript",
		Usage:       "/export [format]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum, Values: []string{"markdown", "json", "html"}, Description: "Export format"},
		},
		Category: "Conversation",
		Handler:  HandleExport,
	})

	r.Register(&Command{
		Name:        "/transcripts",
		Aliases:     []string{"/list"},
		Description: "List saved transcripts",
		Category:    "Conversation",
		Handler:     HandleTranscripts,
	})

	// Model
	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Switch or show the current model",
		Usage:       "/model [name]",
		Args: []ArgDef{
			{Name: "name", Required: false, Type: ArgTypeModel, Description: "Model to switch to"},
		},
		Category: "Model",
		Handler:  HandleModel,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List available models across providers",
		Category:    "Model",
		Handler:     HandleModels,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// All fields are optional and may be nil; handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Store handles problem, card, and attempt persistence
	Store *storage.Store

	// Transcripts handles transcript persistence
	Transcripts *storage.TranscriptStore
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(cfg *config.Config, store *storage.Store, transcripts *storage.TranscriptStore) *Context {
	return &Context{
		Config:      cfg,
		Store:       store,
		Transcripts: transcripts,
	}
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int

	// IsCurrent indicates this is the current selection
	IsCurrent bool
}
