// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct {
	Topic string // Optional category for specific help
}

// StartSessionMsg requests a new practice session.
type StartSessionMsg struct {
	Problem string // Problem id, empty for a random pick
}

// EndSessionMsg ends the active session.
type EndSessionMsg struct{}

// ProblemListMsg carries the problem catalog.
type ProblemListMsg struct {
	Problems []ProblemInfo
	Error    error
}

// ProblemInfo contains metadata about one catalog problem.
type ProblemInfo struct {
	ID         string
	Title      string
	Difficulty string
	Topic      string
}

// HintMsg asks the interviewer for a hint on the current problem.
type HintMsg struct{}

// GiveUpMsg marks the current problem as given up.
type GiveUpMsg struct{}

// RateAttemptMsg rates the completed attempt for scheduling.
type RateAttemptMsg struct {
	Rating string // "again", "hard", "good", "easy"
}

// StatsMsg carries practice statistics.
type StatsMsg struct {
	Problems int
	Cards    int
	Due      int
	Attempts int
	Sessions int
	Error    error
}

// TimerStartMsg starts the countdown.
type TimerStartMsg struct {
	Duration time.Duration
}

// TimerShowMsg requests the current countdown state.
type TimerShowMsg struct{}

// TimerPauseMsg pauses the countdown.
type TimerPauseMsg struct{}

// TimerResumeMsg resumes the paused countdown.
type TimerResumeMsg struct{}

// TimerStopMsg stops the countdown.
type TimerStopMsg struct{}

// ModeSwitchMsg selects a coaching persona.
type ModeSwitchMsg struct {
	Mode string // "interview", "coach", "teach"
}

// ModelSwitchMsg indicates a model switch request. An empty Model shows the
// current selection instead.
type ModelSwitchMsg struct {
	Model string
}

// ShowModelsMsg triggers showing the aggregated model list.
type ShowModelsMsg struct{}

// ClearConversationMsg triggers clearing the conversation.
type ClearConversationMsg struct{}

// ExportTranscriptMsg triggers exporting the session transcript.
type ExportTranscriptMsg struct {
	Format string // "markdown", "json", "html"
}

// TranscriptListMsg carries the saved transcript list.
type TranscriptListMsg struct {
	Transcripts []TranscriptInfo
	Error       error
}

// TranscriptInfo contains metadata about a saved transcript.
type TranscriptInfo struct {
	ID       string
	Summary  string
	Problem  string
	Updated  string
	MsgCount int
}

// ErrorMsg indicates an error occurred.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// SystemMessageMsg adds a system notice to the chat.
type SystemMessageMsg struct {
	Content string
}

// =============================================================================
// HANDLER IMPLEMENTATIONS
// =============================================================================

// HandleHelp shows help information.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return ShowHelpMsg{Topic: topic}
	}
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// HandleStart starts a practice session.
func HandleStart(ctx *Context, args []string) tea.Cmd {
	problem := ""
	if len(args) > 0 {
		problem = args[0]
	}
	return func() tea.Msg {
		return StartSessionMsg{Problem: problem}
	}
}

// HandleEnd ends the active session.
func HandleEnd(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return EndSessionMsg{}
	}
}

// HandleProblems lists the problem catalog.
func HandleProblems(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Store == nil {
		return func() tea.Msg {
			return ProblemListMsg{Error: fmt.Errorf("problem catalog unavailable")}
		}
	}

	store := ctx.Store
	return func() tea.Msg {
		problems, err := store.ListProblems(context.Background())
		if err != nil {
			return ProblemListMsg{Error: err}
		}

		infos := make([]ProblemInfo, len(problems))
		for i, p := range problems {
			infos[i] = ProblemInfo{
				ID:         p.ID,
				Title:      p.Title,
				Difficulty: p.Difficulty,
				Topic:      p.Topic,
			}
		}
		return ProblemListMsg{Problems: infos}
	}
}

// HandleHint asks the interviewer for a hint.
func HandleHint(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return HintMsg{}
	}
}

// HandleGiveUp gives up on the current problem.
func HandleGiveUp(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return GiveUpMsg{}
	}
}

// HandleRate rates the completed attempt.
func HandleRate(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing rating",
				Message: "A rating is required",
				Tip:     "Usage: /rate <again|hard|good|easy>",
			}
		}
	}
	rating := strings.ToLower(args[0])
	return func() tea.Msg {
		return RateAttemptMsg{Rating: rating}
	}
}

// HandleStats shows practice statistics.
func HandleStats(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Store == nil {
		return func() tea.Msg {
			return StatsMsg{Error: fmt.Errorf("statistics unavailable")}
		}
	}

	store := ctx.Store
	return func() tea.Msg {
		stats, err := store.GetStats(context.Background())
		if err != nil {
			return StatsMsg{Error: err}
		}
		return StatsMsg{
			Problems: stats.ProblemCount,
			Cards:    stats.CardCount,
			Due:      stats.DueCount,
			Attempts: stats.AttemptCount,
			Sessions: stats.SessionCount,
		}
	}
}

// HandleTimer starts the countdown or shows its state.
func HandleTimer(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		minutes := 0
		if ctx != nil && ctx.Config != nil {
			minutes = ctx.Config.Timer.DefaultMinutes
		}
		if minutes <= 0 {
			return func() tea.Msg {
				return TimerShowMsg{}
			}
		}
		duration := time.Duration(minutes) * time.Minute
		return func() tea.Msg {
			return TimerStartMsg{Duration: duration}
		}
	}

	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes < 0 || minutes > 180 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid timer length",
				Message: fmt.Sprintf("Not a usable minute count: %s", args[0]),
				Tip:     "Usage: /timer [minutes] with 0-180",
			}
		}
	}

	return func() tea.Msg {
		return TimerStartMsg{Duration: time.Duration(minutes) * time.Minute}
	}
}

// HandlePause pauses the countdown.
func HandlePause(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return TimerPauseMsg{}
	}
}

// HandleResume resumes the paused countdown.
func HandleResume(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return TimerResumeMsg{}
	}
}

// HandleStop stops the countdown.
func HandleStop(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return TimerStopMsg{}
	}
}

// HandleMode selects a coaching persona.
func HandleMode(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Missing mode",
				Message: "A persona is required",
				Tip:     "Usage: /mode <interview|coach|teach>",
			}
		}
	}
	m := strings.ToLower(args[0])
	return func() tea.Msg {
		return ModeSwitchMsg{Mode: m}
	}
}

// HandleClear clears the conversation history.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ClearConversationMsg{}
	}
}

// HandleExport exports the session transcript.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	format := "markdown"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
		if format == "md" {
			format = "markdown"
		} else if format == "htm" {
			format = "html"
		}
	}

	switch format {
	case "markdown", "html", "json":
	default:
		return func() tea.Msg {
			return ErrorMsg{
				Title:   "Invalid export format",
				Message: fmt.Sprintf("Unknown format: %s", format),
				Tip:     "Supported formats: markdown, html, json",
			}
		}
	}

	return func() tea.Msg {
		return ExportTranscriptMsg{Format: format}
	}
}

// HandleTranscripts lists saved transcripts.
func HandleTranscripts(ctx *Context, args []string) tea.Cmd {
	if ctx == nil || ctx.Transcripts == nil {
		return func() tea.Msg {
			return TranscriptListMsg{Error: fmt.Errorf("transcript store unavailable")}
		}
	}

	store := ctx.Transcripts
	return func() tea.Msg {
		metas, err := store.List()
		if err != nil {
			return TranscriptListMsg{Error: err}
		}

		infos := make([]TranscriptInfo, len(metas))
		for i, m := range metas {
			infos[i] = TranscriptInfo{
				ID:       m.ID,
				Summary:  m.Summary,
				Problem:  m.Problem,
				Updated:  m.UpdatedAt.Format("2006-01-02 15:04"),
				MsgCount: m.MessageCount,
			}
		}
		return TranscriptListMsg{Transcripts: infos}
	}
}

// HandleModel switches or shows the current model.
func HandleModel(ctx *Context, args []string) tea.Cmd {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	return func() tea.Msg {
		return ModelSwitchMsg{Model: name}
	}
}

// HandleModels lists available models.
func HandleModels(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ShowModelsMsg{}
	}
}
