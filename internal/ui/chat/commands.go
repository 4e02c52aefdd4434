// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/drillrun-tui/internal/commands"
	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/scheduler"
	"github.com/jeranaias/drillrun-tui/internal/timer"
)

// =============================================================================
// COMMAND MESSAGE DISPATCH
// =============================================================================

// handleCommandMsg routes messages emitted by slash command handlers.
// Returns handled=false for messages this dispatcher does not know.
func (m *Model) handleCommandMsg(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case commands.ShowHelpMsg:
		m.ctrl.AddSystemNotice(m.buildHelpText(msg.Topic))
		m.refreshTranscript()
		return m, nil, true

	// Session lifecycle
	case commands.StartSessionMsg:
		if m.orch.IsActive() {
			m.notifyError("Session already active", "End it with /end before starting another.")
			return m, nil, true
		}
		return m, m.startSessionCmd(msg.Problem), true

	case commands.EndSessionMsg:
		if !m.orch.IsActive() {
			m.notifyError("No active session", "Start one with /start.")
			return m, nil, true
		}
		if m.countdown.IsRunning() || m.countdown.IsPaused() {
			m.countdown.Stop()
			m.statusBar.SetTimer(m.countdown.GetSnapshot())
		}
		return m, m.endSessionCmd(), true

	case commands.ProblemListMsg:
		if msg.Error != nil {
			m.notifyError("Could not list problems", msg.Error.Error())
			return m, nil, true
		}
		m.ctrl.AddSystemNotice(formatProblemList(msg.Problems))
		m.refreshTranscript()
		return m, nil, true

	case commands.HintMsg:
		if !m.orch.IsActive() {
			m.notifyError("No active session", "Hints are tracked per attempt. Start with /start.")
			return m, nil, true
		}
		m.orch.RecordHint()
		m.ctrl.SendMessage("I'm stuck. Could you give me a small hint without revealing the solution?")
		m.ctrl.ResetHeartbeat()
		m.state = StateStreaming
		m.refreshTranscript()
		m.syncStatusBar()
		return m, m.spin.Tick, true

	case commands.GiveUpMsg:
		if !m.orch.IsActive() {
			m.notifyError("No active session", "Nothing to give up on.")
			return m, nil, true
		}
		m.orch.MarkGaveUp()
		m.ctrl.AddSystemNotice("Marked as given up. Switching to a walkthrough.")
		m.ctrl.SendMessage("I give up on this one. Please walk me through the solution step by step.")
		m.state = StateStreaming
		m.refreshTranscript()
		m.syncStatusBar()
		return m, m.spin.Tick, true

	case commands.RateAttemptMsg:
		return m.dispatchRating(msg.Rating)

	case commands.StatsMsg:
		if msg.Error != nil {
			m.notifyError("Could not load stats", msg.Error.Error())
			return m, nil, true
		}
		m.ctrl.AddSystemNotice(formatStats(msg))
		m.refreshTranscript()
		return m, nil, true

	// Countdown
	case commands.TimerStartMsg:
		m.countdown.Start(msg.Duration)
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
		m.ctrl.AddSystemNotice("Timer started: " + formatMinutes(msg.Duration) + ".")
		m.refreshTranscript()
		return m, timer.TickCmd(), true

	case commands.TimerShowMsg:
		m.ctrl.AddSystemNotice(describeTimer(m.countdown.GetSnapshot()))
		m.refreshTranscript()
		return m, nil, true

	case commands.TimerPauseMsg:
		if !m.countdown.IsRunning() {
			m.notifyError("Timer not running", "Start one with /timer <minutes>.")
			return m, nil, true
		}
		m.countdown.Pause()
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
		m.ctrl.AddSystemNotice("Timer paused.")
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil, true

	case commands.TimerResumeMsg:
		if !m.countdown.IsPaused() {
			m.notifyError("Timer not paused", "Nothing to resume.")
			return m, nil, true
		}
		m.countdown.Resume()
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
		m.ctrl.AddSystemNotice("Timer resumed.")
		m.refreshTranscript()
		m.syncStatusBar()
		return m, timer.TickCmd(), true

	case commands.TimerStopMsg:
		if !m.countdown.IsRunning() && !m.countdown.IsPaused() {
			m.notifyError("Timer not active", "Nothing to stop.")
			return m, nil, true
		}
		result := m.countdown.Stop()
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
		m.ctrl.AddSystemNotice("Timer stopped after " + formatMinutes(result.Elapsed) + ".")
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil, true

	// Persona and model
	case commands.ModeSwitchMsg:
		parsed, ok := mode.Parse(msg.Mode)
		if !ok {
			m.notifyError("Unknown mode", msg.Mode+" is not one of interview, coach, teach.")
			return m, nil, true
		}
		m.ctrl.SetMode(parsed)
		effective := m.ctrl.EffectiveMode()
		notice := "Mode set to " + string(parsed) + "."
		if effective != parsed {
			notice += " The session currently overrides it to " + string(effective) + "."
		}
		m.ctrl.AddSystemNotice(notice)
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil, true

	case commands.ModelSwitchMsg:
		return m.dispatchModelSwitch(msg.Model)

	case commands.ShowModelsMsg:
		m.ctrl.AddSystemNotice(m.formatModelList())
		m.refreshTranscript()
		return m, nil, true

	// Conversation management
	case commands.ClearConversationMsg:
		m.ctrl.ClearHistory()
		m.state = StateReady
		m.refreshTranscript()
		m.syncStatusBar()
		return m, nil, true

	case commands.ExportTranscriptMsg:
		return m, m.exportCmd(msg.Format), true

	case commands.TranscriptListMsg:
		if msg.Error != nil {
			m.notifyError("Could not list transcripts", msg.Error.Error())
			return m, nil, true
		}
		m.ctrl.AddSystemNotice(formatTranscriptList(msg.Transcripts))
		m.refreshTranscript()
		return m, nil, true

	// Generic
	case commands.ErrorMsg:
		detail := msg.Message
		if msg.Tip != "" {
			detail += " (" + msg.Tip + ")"
		}
		m.notifyError(msg.Title, detail)
		return m, nil, true

	case commands.SystemMessageMsg:
		m.ctrl.AddSystemNotice(msg.Content)
		m.refreshTranscript()
		return m, nil, true
	}

	return m, nil, false
}

// dispatchRating validates the rating word and completes the attempt.
func (m *Model) dispatchRating(word string) (tea.Model, tea.Cmd, bool) {
	rating, ok := scheduler.ParseRating(strings.ToLower(word))
	if !ok {
		m.notifyError("Unknown rating", word+" is not one of again, hard, good, easy.")
		return m, nil, true
	}

	active := m.orch.Active()
	if active == nil {
		m.notifyError("No active session", "Start one with /start before rating.")
		return m, nil, true
	}

	// Attempt timing comes from the countdown when one ran, otherwise
	// from wall clock since the attempt began.
	snap := m.countdown.GetSnapshot()
	var timerLimitMs int64
	if snap.Duration > 0 {
		timerLimitMs = snap.Duration.Milliseconds()
	}

	var timeSpentMs int64
	if m.countdown.IsRunning() || m.countdown.IsPaused() {
		result := m.countdown.Stop()
		timeSpentMs = result.Elapsed.Milliseconds()
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
	} else if !active.AttemptStartedAt.IsZero() {
		timeSpentMs = time.Since(active.AttemptStartedAt).Milliseconds()
	}

	gaveUp := m.orch.GaveUp()
	return m, m.rateAttemptCmd(rating, timeSpentMs, timerLimitMs, gaveUp), true
}

// dispatchModelSwitch switches the model or reports the current one.
func (m *Model) dispatchModelSwitch(id string) (tea.Model, tea.Cmd, bool) {
	if id == "" {
		current := m.ctrl.SelectedModel()
		if current == "" {
			current = "(none)"
		}
		m.ctrl.AddSystemNotice("Current model: " + current)
		m.refreshTranscript()
		return m, nil, true
	}

	if m.rtr != nil && !m.rtr.HasModel(id) {
		m.notifyError("Unknown model", id+" is not in the catalog. See /models.")
		return m, nil, true
	}

	m.ctrl.SelectModel(id)
	m.ctrl.AddSystemNotice("Model switched to " + id + ".")
	m.refreshTranscript()
	m.syncStatusBar()
	return m, nil, true
}

// =============================================================================
// NOTICE FORMATTING
// =============================================================================

// buildHelpText renders the command reference grouped by category.
func (m *Model) buildHelpText(topic string) string {
	var b strings.Builder
	b.WriteString("Commands:\n")

	byCategory := m.registry.ByCategory()

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		if topic != "" && !strings.EqualFold(cat, topic) {
			continue
		}
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		b.WriteString("\n" + cat + ":\n")
		for _, cmd := range byCategory[cat] {
			if cmd.Hidden {
				continue
			}
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			b.WriteString("  " + usage + " - " + cmd.Description + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatProblemList(problems []commands.ProblemInfo) string {
	if len(problems) == 0 {
		return "The problem catalog is empty."
	}

	var b strings.Builder
	b.WriteString("Problems:\n")
	for _, p := range problems {
		b.WriteString("  " + p.ID + " - " + p.Title + " (" + p.Difficulty + ", " + p.Topic + ")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTranscriptList(transcripts []commands.TranscriptInfo) string {
	if len(transcripts) == 0 {
		return "No saved transcripts yet."
	}

	var b strings.Builder
	b.WriteString("Transcripts:\n")
	for _, t := range transcripts {
		line := "  " + t.ID + " - " + t.Summary
		if t.Problem != "" {
			line += " [" + t.Problem + "]"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(s commands.StatsMsg) string {
	var b strings.Builder
	b.WriteString("Practice statistics:\n")
	b.WriteString("  Problems:  " + strconv.Itoa(s.Problems) + "\n")
	b.WriteString("  Cards:     " + strconv.Itoa(s.Cards) + "\n")
	b.WriteString("  Due today: " + strconv.Itoa(s.Due) + "\n")
	b.WriteString("  Attempts:  " + strconv.Itoa(s.Attempts) + "\n")
	b.WriteString("  Sessions:  " + strconv.Itoa(s.Sessions))
	return b.String()
}

// formatModelList lists the catalog grouped by provider.
func (m *Model) formatModelList() string {
	if m.rtr == nil {
		return "No providers configured."
	}

	models := m.rtr.Models()
	if len(models) == 0 {
		return "No models available. Is Ollama running?"
	}

	selected := m.ctrl.SelectedModel()

	var b strings.Builder
	b.WriteString("Available models:\n")
	for _, d := range models {
		marker := "  "
		if d.ID == selected {
			marker = "* "
		}
		b.WriteString(marker + d.ID + " (" + d.ProviderID + ")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeTimer(snap timer.Snapshot) string {
	switch {
	case snap.IsPaused:
		return "Timer paused with " + formatMinutes(snap.Remaining) + " remaining."
	case snap.IsRunning:
		return "Timer running: " + formatMinutes(snap.Remaining) + " remaining."
	default:
		return "No timer active. Start one with /timer <minutes>."
	}
}

func formatMinutes(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes <= 0 {
		seconds := int(d.Round(time.Second) / time.Second)
		return strconv.Itoa(seconds) + "s"
	}
	return strconv.Itoa(minutes) + " min"
}
