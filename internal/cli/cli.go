// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the non-TUI
// commands: stats, problems, doctor, version, and help.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdStats
	CmdProblems
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model   string // Override the default model
	Mode    string // Override the default persona mode
	Minutes int    // Override the default timer length
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format

	// Subcommand and remaining args
	Subcommand string
	Raw        []string
}

const usageText = `drillrun - timed coding-interview practice in your terminal

Drillrun pairs a countdown timer and spaced-repetition scheduling with an
AI interviewer. Practice against a local Ollama model or a cloud provider,
get graded hints, and let the scheduler decide what to review next.

Usage:
  drillrun                   Start the TUI (default)
  drillrun stats             Show practice statistics
  drillrun problems          List the problem catalog
  drillrun doctor            Run connectivity and storage diagnostics
  drillrun version           Show version information
  drillrun help              Show this help

Global Flags:
  --model NAME    Override the default model
  --mode MODE     Start in a persona mode (interview, coach, teach)
  --minutes N     Override the default timer length
  --json          Output stats/problems in JSON
  -q, --quiet     Minimal output
  -v, --verbose   Debug output

In-session Commands:
  /start [problem]  Start a practice session
  /timer <minutes>  Start or restart the countdown
  /hint             Ask for a hint (counted against the attempt)
  /rate <grade>     Rate the attempt: again, hard, good, easy
  /mode <persona>   Switch interviewer persona
  /help             Full command reference

Examples:
  drillrun                           Start the TUI
  drillrun --model llama3:8b         Start with a specific model
  drillrun --mode coach --minutes 45 Coaching session with a 45 min timer
  drillrun stats --json              Stats for scripting
  drillrun doctor                    Check Ollama and the database

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("drillrun version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "stats", "statistics":
		return CmdStats, parsedArgs
	case "problems", "problem", "list":
		return CmdProblems, parsedArgs
	case "doctor":
		return CmdDoctor, parsedArgs
	case "version", "-v", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		// Unknown word: keep it for the TUI rather than failing hard
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--mode":
			if i+1 < len(args) {
				i++
				parsedArgs.Mode = args[i]
			}
		case "--minutes", "--timer":
			if i+1 < len(args) {
				i++
				if n, err := strconv.Atoi(args[i]); err == nil && n > 0 {
					parsedArgs.Minutes = n
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--mode="):
				parsedArgs.Mode = strings.TrimPrefix(arg, "--mode=")
			case strings.HasPrefix(arg, "--minutes="):
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--minutes=")); err == nil && n > 0 {
					parsedArgs.Minutes = n
				}
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
