// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/commands"
	"github.com/jeranaias/drillrun-tui/internal/mode"
)

// =============================================================================
// COMMAND DISPATCH TESTS
// =============================================================================

func TestShowHelpListsCommands(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.ShowHelpMsg{})

	if !transcriptContains(m, "Commands:") {
		t.Error("help should land in the transcript")
	}
	if !transcriptContains(m, "/help") {
		t.Error("help should list the command usages")
	}
}

func TestStartWhileSessionActive(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.orch.StartSession(context.Background(), "two-sum"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	m.Update(commands.StartSessionMsg{Problem: "other"})

	if !transcriptContains(m, "Session already active") {
		t.Error("starting over an active session should be rejected")
	}
}

func TestEndWithoutSession(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.EndSessionMsg{})

	if m.state != StateError {
		t.Error("ending with no session should be an error")
	}
}

func TestHintWithoutSession(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.HintMsg{})

	if m.state != StateError {
		t.Error("hint with no session should be an error")
	}
}

func TestHintDuringSessionStreamsRequest(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.orch.StartSession(context.Background(), "two-sum"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	m.Update(commands.HintMsg{})

	if m.state != StateStreaming {
		t.Error("a hint request should start streaming")
	}
	if m.orch.Active().HintsUsed != 1 {
		t.Error("the hint should be counted on the attempt")
	}
}

func TestGiveUpMarksSession(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.orch.StartSession(context.Background(), "two-sum"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	m.Update(commands.GiveUpMsg{})

	if !m.orch.GaveUp() {
		t.Error("give up should be recorded on the session")
	}
	if m.state != StateStreaming {
		t.Error("give up should request a walkthrough")
	}
}

func TestRateUnknownWord(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.RateAttemptMsg{Rating: "amazing"})

	if m.state != StateError {
		t.Error("an unknown rating word should be rejected")
	}
}

func TestRateWithoutSession(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.RateAttemptMsg{Rating: "good"})

	if !transcriptContains(m, "No active session") {
		t.Error("rating with no session should explain the problem")
	}
}

func TestProblemListFormatting(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.ProblemListMsg{Problems: []commands.ProblemInfo{
		{ID: "two-sum", Title: "Two Sum", Difficulty: "easy", Topic: "arrays"},
	}})

	if !transcriptContains(m, "two-sum - Two Sum (easy, arrays)") {
		t.Error("problem list should include id, title, difficulty, and topic")
	}
}

func TestStatsNotice(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.StatsMsg{Problems: 12, Cards: 8, Due: 3, Attempts: 40, Sessions: 15})

	if !transcriptContains(m, "Practice statistics") {
		t.Error("stats should land in the transcript")
	}
	if !transcriptContains(m, "Due today: 3") {
		t.Error("stats should include the due count")
	}
}

// =============================================================================
// TIMER COMMAND TESTS
// =============================================================================

func TestTimerStartCommand(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(commands.TimerStartMsg{Duration: 45 * time.Minute})

	if !m.countdown.IsRunning() {
		t.Error("/timer should start the countdown")
	}
	if cmd == nil {
		t.Error("/timer should return a tick command")
	}
	if !transcriptContains(m, "Timer started: 45 min") {
		t.Error("timer start should be announced")
	}
}

func TestTimerPauseResumeStop(t *testing.T) {
	m := newTestModel(t)
	m.Update(commands.TimerStartMsg{Duration: 25 * time.Minute})

	m.Update(commands.TimerPauseMsg{})
	if !m.countdown.IsPaused() {
		t.Error("pause should pause the countdown")
	}

	m.Update(commands.TimerResumeMsg{})
	if !m.countdown.IsRunning() || m.countdown.IsPaused() {
		t.Error("resume should restart the countdown")
	}

	m.Update(commands.TimerStopMsg{})
	if m.countdown.IsRunning() {
		t.Error("stop should stop the countdown")
	}
}

func TestTimerPauseWithoutTimer(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.TimerPauseMsg{})

	if m.state != StateError {
		t.Error("pausing a stopped timer should be an error")
	}
}

func TestTimerShowWithoutTimer(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.TimerShowMsg{})

	if !transcriptContains(m, "No timer active") {
		t.Error("/timer show should report the idle state")
	}
}

// =============================================================================
// MODE AND MODEL COMMAND TESTS
// =============================================================================

func TestModeSwitch(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.ModeSwitchMsg{Mode: "coach"})

	if m.ctrl.SelectedMode() != mode.Coach {
		t.Errorf("selected mode = %s, want coach", m.ctrl.SelectedMode())
	}
	if !transcriptContains(m, "Mode set to coach") {
		t.Error("mode switch should be announced")
	}
}

func TestModeSwitchUnknown(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.ModeSwitchMsg{Mode: "drill-sergeant"})

	if m.state != StateError {
		t.Error("unknown mode should be rejected")
	}
}

func TestModeSwitchReportsOverride(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.orch.StartSession(context.Background(), "two-sum"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	m.orch.MarkGaveUp()

	m.Update(commands.ModeSwitchMsg{Mode: "interview"})

	if !transcriptContains(m, "overrides it to teach") {
		t.Error("a give-up override should be mentioned when switching modes")
	}
}

func TestModelSwitchEmptyShowsCurrent(t *testing.T) {
	m := newTestModel(t)
	m.ctrl.SelectModel("llama3:8b")

	m.Update(commands.ModelSwitchMsg{Model: ""})

	if !transcriptContains(m, "Current model: llama3:8b") {
		t.Error("/model with no argument should show the current model")
	}
}

// =============================================================================
// CONVERSATION COMMAND TESTS
// =============================================================================

func TestClearConversationCommand(t *testing.T) {
	m := newTestModel(t)
	m.ctrl.AddSystemNotice("old turn")

	m.Update(commands.ClearConversationMsg{})

	if !m.ctrl.Snapshot().IsEmpty() {
		t.Error("/clear should empty the conversation")
	}
}

func TestSystemMessagePassthrough(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.SystemMessageMsg{Content: "custom notice"})

	if !transcriptContains(m, "custom notice") {
		t.Error("system messages should land in the transcript")
	}
}

func TestErrorMsgWithTip(t *testing.T) {
	m := newTestModel(t)

	m.Update(commands.ErrorMsg{Title: "Bad input", Message: "nope", Tip: "try /help"})

	if m.state != StateError {
		t.Error("ErrorMsg should set the error state")
	}
	if !transcriptContains(m, "try /help") {
		t.Error("the tip should be included in the notice")
	}
}

// =============================================================================
// FORMATTER TESTS
// =============================================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Minute, "45 min"},
		{25 * time.Minute, "25 min"},
		{90 * time.Second, "2 min"},
		{20 * time.Second, "20s"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.d); got != tt.want {
			t.Errorf("formatMinutes(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatProblemListEmpty(t *testing.T) {
	got := formatProblemList(nil)
	if !strings.Contains(got, "empty") {
		t.Errorf("empty catalog message = %q", got)
	}
}
