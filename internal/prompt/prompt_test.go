// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/drillrun-tui/internal/mode"
)

func TestBuildSystemPromptPersonas(t *testing.T) {
	tests := []struct {
		name     string
		mode     mode.Mode
		contains string
	}{
		{"interview never reveals", mode.Interview, "NEVER give the solution"},
		{"coach nudges", mode.Coach, "self-discovery"},
		{"teach explains fully", mode.Teach, "full solution"},
		{"unknown falls back to interview", mode.Mode("bogus"), "NEVER give the solution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSystemPrompt(tt.mode, Context{})
			assert.Contains(t, got, tt.contains)
		})
	}
}

func TestBuildSystemPromptEmbedsContext(t *testing.T) {
	got := BuildSystemPrompt(mode.Interview, Context{
		ProblemTitle: "Two Sum",
		Difficulty:   "easy",
		Topic:        "arrays",
		TimerRunning: true,
		RemainingMin: 7,
		HintsUsed:    2,
	})

	assert.Contains(t, got, "Two Sum (easy)")
	assert.Contains(t, got, "Topic: arrays")
	assert.Contains(t, got, "7 minutes remain")
	assert.Contains(t, got, "Hints used so far: 2")
}

func TestBuildSystemPromptOmitsEmptySections(t *testing.T) {
	got := BuildSystemPrompt(mode.Coach, Context{})
	assert.NotContains(t, got, "CURRENT PROBLEM")
	assert.NotContains(t, got, "SESSION STATE")
}

func TestHeartbeatTurn(t *testing.T) {
	turn := HeartbeatTurn(9)
	assert.True(t, strings.HasPrefix(turn, HeartbeatMarker))
	assert.Contains(t, turn, "9 minutes")
	assert.Contains(t, turn, SilenceSentinel)
}

func TestIsSilence(t *testing.T) {
	assert.True(t, IsSilence(SilenceSentinel))
	assert.True(t, IsSilence("  "+SilenceSentinel+"\n"))
	assert.False(t, IsSilence(SilenceSentinel+" but also this"))
	assert.False(t, IsSilence(""))
}
