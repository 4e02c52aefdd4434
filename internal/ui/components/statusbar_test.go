// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/timer"
	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
)

func newTestStatusBar() *StatusBar {
	return NewStatusBar(styles.NewTheme())
}

func TestStatusBarShowsRunningTimer(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(120)
	bar.SetTimer(timer.Snapshot{
		Duration:  45 * time.Minute,
		Remaining: 12*time.Minute + 30*time.Second,
		Phase:     timer.PhaseYellow,
		IsRunning: true,
	})

	view := bar.View()
	if !strings.Contains(view, "12:30") {
		t.Errorf("status bar should contain remaining time, got %q", view)
	}
	if strings.Contains(view, "PAUSED") {
		t.Error("running timer should not show PAUSED")
	}
}

func TestStatusBarShowsPausedMarker(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(120)
	bar.SetTimer(timer.Snapshot{
		Duration:  45 * time.Minute,
		Remaining: 40 * time.Minute,
		Phase:     timer.PhaseGreen,
		IsPaused:  true,
	})

	view := bar.View()
	if !strings.Contains(view, "PAUSED") {
		t.Errorf("paused timer should show PAUSED marker, got %q", view)
	}
}

func TestStatusBarHidesIdleTimer(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(120)

	view := bar.View()
	if strings.Contains(view, "00:00") {
		t.Error("status bar should not show a clock when no timer is active")
	}
}

func TestStatusBarShowsModeBadge(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(120)
	bar.SetMode("coach", false)

	if !strings.Contains(bar.View(), "COACH") {
		t.Error("status bar should show the persona in upper case")
	}
}

func TestStatusBarShowsOverrideMarker(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(120)
	bar.SetMode("teach", true)

	if !strings.Contains(bar.View(), "TEACH*") {
		t.Errorf("overridden persona should carry a marker, got %q", bar.View())
	}
}

func TestStatusBarShowsProblemAndModel(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(140)
	bar.SetProblem("Two Sum")
	bar.SetModel("qwen2.5-coder")

	view := bar.View()
	if !strings.Contains(view, "Two Sum") {
		t.Error("wide status bar should show the problem title")
	}
	if !strings.Contains(view, "qwen2.5-coder") {
		t.Error("wide status bar should show the model name")
	}
}

func TestStatusBarContextUsage(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(140)
	bar.SetTokenUsage(2048, 4096)

	view := bar.View()
	if !strings.Contains(view, "2,048/4,096") {
		t.Errorf("status bar should show token usage, got %q", view)
	}

	bar.ShowStats = false
	if strings.Contains(bar.View(), "2,048/4,096") {
		t.Error("token usage should be hidden when ShowStats is off")
	}
}

func TestStatusBarNarrowLayout(t *testing.T) {
	bar := newTestStatusBar()
	bar.SetWidth(50)
	bar.SetMode("interview", false)
	bar.SetTimer(timer.Snapshot{
		Remaining: 5 * time.Minute,
		Phase:     timer.PhaseRed,
		IsRunning: true,
	})

	view := bar.View()
	if !strings.Contains(view, "05:00") {
		t.Error("narrow layout should still show the clock")
	}
	// First letter only in narrow layout
	if strings.Contains(view, "INTERVIEW") {
		t.Error("narrow layout should abbreviate the persona")
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusStreaming, "Streaming..."},
		{StatusThinking, "Thinking..."},
		{StatusError, "Error"},
		{StatusIdle, "Idle"},
		{Status(99), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}
