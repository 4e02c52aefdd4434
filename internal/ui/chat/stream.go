// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/drillrun-tui/internal/controller"
	"github.com/jeranaias/drillrun-tui/internal/export"
	"github.com/jeranaias/drillrun-tui/internal/scheduler"
	"github.com/jeranaias/drillrun-tui/internal/session"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// spinnerFPS keeps the ASCII spinner smooth without hammering the renderer.
const spinnerFPS = time.Second / 12

// =============================================================================
// BACKGROUND COMMANDS
// =============================================================================

// waitForEvent blocks on the controller's event stream and delivers the next
// event as a message. Update re-arms it after every delivery.
func (m *Model) waitForEvent() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ch := m.ctrl.Events()
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ControllerEventMsg{Event: ev}
	}
}

// heartbeatTickCmd schedules the next idle-nudge check.
func heartbeatTickCmd() tea.Cmd {
	return tea.Tick(controller.HeartbeatInterval, func(t time.Time) tea.Msg {
		return HeartbeatTickMsg{Time: t}
	})
}

// initRouterCmd refreshes the provider catalog in the background.
func (m *Model) initRouterCmd() tea.Cmd {
	rtr := m.rtr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := rtr.Initialize(ctx); err != nil {
			return RouterReadyMsg{Err: err}
		}
		return RouterReadyMsg{Health: rtr.HealthCheck(ctx)}
	}
}

// startSessionCmd starts a practice session and resolves its new problem.
func (m *Model) startSessionCmd(problemID string) tea.Cmd {
	orch := m.orch
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		active, err := orch.StartSession(ctx, problemID)
		if err != nil {
			return SessionStartedMsg{Err: err}
		}

		// Arm the new-slot attempt so hints and ratings have a card to land on
		if err := orch.BeginAttempt(ctx, session.SlotNew); err != nil {
			return SessionStartedMsg{Err: err}
		}
		active = orch.Active()

		var problem *storage.Problem
		if store != nil && active.NewProblemID != "" {
			if p, perr := store.GetProblem(ctx, active.NewProblemID); perr == nil {
				problem = &p
			}
		}

		return SessionStartedMsg{Session: active, Problem: problem}
	}
}

// endSessionCmd closes the active session.
func (m *Model) endSessionCmd() tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		orch.EndSession(ctx)
		return SessionEndedMsg{}
	}
}

// rateAttemptCmd records the rating and reschedules the card.
func (m *Model) rateAttemptCmd(rating scheduler.Rating, timeSpentMs, timerLimitMs int64, gaveUp bool) tea.Cmd {
	orch := m.orch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := orch.CompleteAttempt(ctx, rating, timeSpentMs, timerLimitMs, "", gaveUp)
		return AttemptRatedMsg{Result: result, Err: err}
	}
}

// exportCmd writes the conversation transcript to disk in the given format.
func (m *Model) exportCmd(format string) tea.Cmd {
	conv := m.ctrl.Snapshot()
	opts := export.DefaultOptions()
	if m.cfg != nil && m.cfg.Storage.ExportDir != "" {
		opts.OutputDir = m.cfg.Storage.ExportDir
	}
	return func() tea.Msg {
		path, err := export.ExportConversation(conv, format, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// saveTranscriptCmd autosaves the conversation to the transcript store.
func (m *Model) saveTranscriptCmd() tea.Cmd {
	if m.transcripts == nil || m.ctrl == nil {
		return nil
	}
	conv := m.ctrl.Snapshot()
	if conv.IsEmpty() {
		return nil
	}
	store := m.transcripts
	problem := ""
	if m.currentProblem != nil {
		problem = m.currentProblem.Title
	}
	return func() tea.Msg {
		tr := export.TranscriptFromConversation(conv)
		tr.Problem = problem
		_, err := store.Save(tr)
		return TranscriptSavedMsg{Err: err}
	}
}

// trimRenderedMarkdown strips the blank frame glamour adds around output.
func trimRenderedMarkdown(s string) string {
	return strings.Trim(s, "\n")
}
