// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/drillrun-tui/internal/commands"
	"github.com/jeranaias/drillrun-tui/internal/controller"
	"github.com/jeranaias/drillrun-tui/internal/timer"
)

// =============================================================================
// UPDATE DISPATCH
// =============================================================================

// Update handles all incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// Countdown
	case timer.TickMsg:
		return m, m.countdown.HandleTick()

	case timer.UpdateMsg:
		m.statusBar.SetTimer(msg.Snapshot)
		return m, nil

	case timer.WarningMsg:
		m.ctrl.AddSystemNotice("5 minutes remaining.")
		m.refreshTranscript()
		return m, nil

	case timer.ExpiredMsg:
		m.ctrl.AddSystemNotice("Time is up. Rate your attempt with /rate, or keep discussing the problem.")
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil

	// Controller events
	case ControllerEventMsg:
		return m.handleControllerEvent(msg.Event)

	case HeartbeatTickMsg:
		if m.ctrl != nil {
			m.ctrl.HandleHeartbeatTick()
		}
		if m.heartbeatEnabled() {
			return m, heartbeatTickCmd()
		}
		return m, nil

	// Async results
	case RouterReadyMsg:
		return m.handleRouterReady(msg)

	case SessionStartedMsg:
		return m.handleSessionStarted(msg)

	case SessionEndedMsg:
		m.currentProblem = nil
		m.ctrl.AddSystemNotice("Session ended.")
		m.refreshTranscript()
		m.syncStatusBar()
		return m, m.saveTranscriptCmd()

	case AttemptRatedMsg:
		return m.handleAttemptRated(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.notifyError("Export failed", msg.Err.Error())
		} else {
			m.ctrl.AddSystemNotice("Transcript exported to " + msg.Path)
			m.refreshTranscript()
		}
		return m, nil

	case TranscriptSavedMsg:
		if msg.Err != nil {
			m.notifyError("Autosave failed", msg.Err.Error())
		}
		return m, nil
	}

	// Command system messages
	if mdl, cmd, handled := m.handleCommandMsg(msg); handled {
		return mdl, cmd
	}

	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key dismisses the welcome screen
	if m.state == StateWelcome {
		m.state = StateReady
		m.syncStatusBar()
		m.refreshTranscript()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Sequence(m.saveTranscriptCmd(), tea.Quit)

	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl != nil && m.ctrl.InFlight() {
			m.ctrl.Interrupt()
			return m, nil
		}
		m.quitting = true
		return m, tea.Sequence(m.saveTranscriptCmd(), tea.Quit)

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClearHistory()
		m.state = StateReady
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		return m.handleCompletion()

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.ScrollUp):
		if m.completion.HasCompletions() {
			m.completion.Prev()
			return m, nil
		}
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		if m.completion.HasCompletions() {
			m.completion.Next()
			return m, nil
		}
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		return m, commands.HandleHelp(m.cmdCtx, nil)
	}

	// Everything else goes to the text input
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateCompletions()
	return m, cmd
}

// handleCompletion cycles through or accepts tab completions.
func (m *Model) handleCompletion() (tea.Model, tea.Cmd) {
	input := m.input.Value()
	if !commands.IsCommand(input) {
		return m, nil
	}

	if m.completion.HasCompletions() {
		// Second tab accepts the selection
		if sel := m.completion.GetSelectedCompletion(); sel != nil {
			m.acceptCompletion(sel.Value)
			m.completion.Clear()
		}
		return m, nil
	}

	comps := m.completer.Complete(input, len(input))
	if len(comps) == 1 {
		m.acceptCompletion(comps[0].Value)
		return m, nil
	}
	m.completion.SetCompletions(comps)
	return m, nil
}

// acceptCompletion replaces the token at the cursor with the completion.
func (m *Model) acceptCompletion(value string) {
	input := m.input.Value()

	if idx := strings.LastIndex(input, " "); idx >= 0 {
		// Complete the current argument
		m.input.SetValue(input[:idx+1] + value + " ")
	} else {
		// Complete the command itself
		m.input.SetValue(value + " ")
	}
	m.input.CursorEnd()
}

// updateCompletions refreshes the live completion list as the user types.
func (m *Model) updateCompletions() {
	input := m.input.Value()
	if !commands.IsCommand(input) {
		m.completion.Clear()
		return
	}
	m.completion.SetCompletions(m.completer.Complete(input, len(input)))
}

// handleSubmit dispatches the input line: a slash command or a chat turn.
func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.completion.Clear()

	if commands.IsCommand(input) {
		return m.executeCommand(input)
	}

	// Plain chat turn: single-writer controller takes it from here
	m.ctrl.SendMessage(input)
	m.ctrl.ResetHeartbeat()
	m.state = StateStreaming
	m.refreshTranscript()
	m.syncStatusBar()
	return m, m.spin.Tick
}

// executeCommand parses and runs a slash command.
func (m *Model) executeCommand(input string) (tea.Model, tea.Cmd) {
	result := m.parser.Parse(input)

	if !result.IsCommand {
		return m, nil
	}

	if result.Command == nil {
		m.notifyError("Unknown command", result.Name+" is not a command. Try /help.")
		return m, nil
	}

	if err := commands.ValidateArgs(result.Command, result.Args); err != nil {
		m.notifyError("Invalid arguments", err.Error())
		return m, nil
	}

	return m, result.Command.Handler(m.cmdCtx, result.Args)
}

// =============================================================================
// CONTROLLER EVENTS
// =============================================================================

func (m *Model) handleControllerEvent(ev controller.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForEvent()}

	switch ev := ev.(type) {
	case controller.ChunkEvent:
		m.state = StateStreaming
		m.refreshTranscript()

	case controller.DoneEvent:
		m.state = StateReady
		m.refreshTranscript()
		m.syncStatusBar()
		if !ev.Heartbeat {
			cmds = append(cmds, m.saveTranscriptCmd())
		}

	case controller.InterruptedEvent:
		m.state = StateReady
		m.refreshTranscript()
		m.syncStatusBar()

	case controller.ErrorEvent:
		m.state = StateError
		m.lastError = ev.Message
		m.refreshTranscript()
		m.syncStatusBar()

	case controller.ModeOverrideEvent:
		m.syncStatusBar()
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// ASYNC RESULT HANDLERS
// =============================================================================

func (m *Model) handleRouterReady(msg RouterReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notifyError("No models available", msg.Err.Error())
		return m, nil
	}

	available := 0
	models := 0
	for _, h := range msg.Health {
		if h.Available {
			available++
			models += h.ModelCount
		}
	}

	// Pick the configured default, or the first cataloged model
	if m.ctrl.SelectedModel() == "" {
		if m.cfg != nil && m.cfg.DefaultModel != "" && m.rtr.HasModel(m.cfg.DefaultModel) {
			m.ctrl.SelectModel(m.cfg.DefaultModel)
		} else if all := m.rtr.Models(); len(all) > 0 {
			m.ctrl.SelectModel(all[0].ID)
		}
	}

	m.welcome.SetModelName(m.ctrl.SelectedModel())
	m.syncStatusBar()
	return m, nil
}

func (m *Model) handleSessionStarted(msg SessionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notifyError("Could not start session", msg.Err.Error())
		return m, nil
	}

	m.currentProblem = msg.Problem

	notice := "Practice session started."
	if msg.Problem != nil {
		notice = "Practice session started: " + msg.Problem.Title +
			" (" + msg.Problem.Difficulty + ", " + msg.Problem.Topic + ")"
	}
	if msg.Session != nil && msg.Session.ReviewProblemID != "" {
		notice += " A review problem is queued after this one."
	}
	m.ctrl.AddSystemNotice(notice)
	m.ctrl.ResetHeartbeat()
	m.refreshTranscript()
	m.syncStatusBar()

	// Start the default countdown when one is configured
	if m.cfg != nil && m.cfg.Timer.DefaultMinutes > 0 {
		d := time.Duration(m.cfg.Timer.DefaultMinutes) * time.Minute
		m.countdown.Start(d)
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
		return m, timer.TickCmd()
	}

	return m, nil
}

func (m *Model) handleAttemptRated(msg AttemptRatedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.notifyError("Could not record rating", msg.Err.Error())
		return m, nil
	}
	if msg.Result == nil {
		m.notifyError("No active attempt", "Start a session with /start before rating.")
		return m, nil
	}

	next := msg.Result.NextReview.Format("Jan 2")
	m.ctrl.AddSystemNotice("Attempt recorded. Next review: " + next + ".")
	m.refreshTranscript()
	return m, nil
}

// notifyError drops an error notice into the transcript and flags the state.
func (m *Model) notifyError(title, detail string) {
	m.state = StateError
	m.lastError = title + ": " + detail
	if m.ctrl != nil {
		m.ctrl.AddSystemNotice("Error - " + title + ": " + detail)
		m.refreshTranscript()
	}
	m.syncStatusBar()
}
