// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/config"
)

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	cmd := r.Get("/help")
	require.NotNil(t, cmd)
	assert.Equal(t, "/help", cmd.Name)

	// Alias resolves to the same command
	assert.Same(t, cmd, r.Get("/h"))
	assert.Same(t, cmd, r.Get("/?"))

	assert.Nil(t, r.Get("/nonexistent"))
}

func TestRegistryHasAllBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{
		"/help", "/quit", "/start", "/end", "/problems", "/hint",
		"/giveup", "/rate", "/stats", "/timer", "/pause", "/resume",
		"/stop", "/mode", "/clear", "/export", "/transcripts",
		"/model", "/models",
	} {
		assert.NotNil(t, r.Get(name), name)
	}
}

func TestRegistryByCategory(t *testing.T) {
	r := NewRegistry()

	byCat := r.ByCategory()
	assert.NotEmpty(t, byCat["Session"])
	assert.NotEmpty(t, byCat["Timer"])
	assert.NotEmpty(t, byCat["Conversation"])
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParseNonCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("hello there")
	assert.False(t, result.IsCommand)
	assert.Nil(t, result.Command)
}

func TestParseKnownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/mode coach")
	assert.True(t, result.IsCommand)
	require.NotNil(t, result.Command)
	assert.Equal(t, "/mode", result.Command.Name)
	assert.Equal(t, []string{"coach"}, result.Args)
	assert.Equal(t, "coach", result.RawArgs)
}

func TestParseUnknownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/frobnicate")
	assert.True(t, result.IsCommand)
	assert.Nil(t, result.Command)
	assert.Equal(t, "/frobnicate", result.Name)
}

func TestParseAlias(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/t 45")
	require.NotNil(t, result.Command)
	assert.Equal(t, "/timer", result.Command.Name)
	assert.Equal(t, []string{"45"}, result.Args)
}

func TestSplitCommandLineQuotes(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`/start two-sum`, []string{"/start", "two-sum"}},
		{`/start "linked list cycle"`, []string{"/start", "linked list cycle"}},
		{`/start 'merge intervals'`, []string{"/start", "merge intervals"}},
		{`/start "say \"hi\""`, []string{"/start", `say "hi"`}},
		{`   `, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitCommandLine(tt.input), tt.input)
	}
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/help"))
	assert.True(t, IsCommand("  /help"))
	assert.False(t, IsCommand("help"))
	assert.False(t, IsCommand(""))
}

func TestParseNamePreservedForUnknownInput(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("  /definitely-not-a-command arg  ")
	assert.True(t, result.IsCommand)
	assert.Nil(t, result.Command)
	assert.Equal(t, "/definitely-not-a-command", result.Name)
	assert.Equal(t, "arg", result.RawArgs)
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	rate := r.Get("/rate")
	require.NotNil(t, rate)

	assert.Error(t, ValidateArgs(rate, nil))
	assert.Error(t, ValidateArgs(rate, []string{"amazing"}))
	assert.NoError(t, ValidateArgs(rate, []string{"good"}))
	assert.NoError(t, ValidateArgs(rate, []string{"GOOD"}))

	// Optional args may be omitted
	timer := r.Get("/timer")
	require.NotNil(t, timer)
	assert.NoError(t, ValidateArgs(timer, nil))
}

// =============================================================================
// HANDLER TESTS
// =============================================================================

func TestHandleStartCarriesProblem(t *testing.T) {
	msg := HandleStart(nil, []string{"two-sum"})()
	assert.Equal(t, StartSessionMsg{Problem: "two-sum"}, msg)

	msg = HandleStart(nil, nil)()
	assert.Equal(t, StartSessionMsg{}, msg)
}

func TestHandleRate(t *testing.T) {
	msg := HandleRate(nil, []string{"Good"})()
	assert.Equal(t, RateAttemptMsg{Rating: "good"}, msg)

	msg = HandleRate(nil, nil)()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "Missing rating", errMsg.Title)
}

func TestHandleTimerWithMinutes(t *testing.T) {
	msg := HandleTimer(nil, []string{"45"})()
	assert.Equal(t, TimerStartMsg{Duration: 45 * time.Minute}, msg)
}

func TestHandleTimerRejectsBadInput(t *testing.T) {
	for _, arg := range []string{"abc", "-5", "500"} {
		msg := HandleTimer(nil, []string{arg})()
		_, ok := msg.(ErrorMsg)
		assert.True(t, ok, arg)
	}
}

func TestHandleTimerUsesConfigDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Timer.DefaultMinutes = 30
	ctx := NewContext(cfg, nil, nil)

	msg := HandleTimer(ctx, nil)()
	assert.Equal(t, TimerStartMsg{Duration: 30 * time.Minute}, msg)
}

func TestHandleTimerShowsWithoutDefault(t *testing.T) {
	msg := HandleTimer(nil, nil)()
	assert.Equal(t, TimerShowMsg{}, msg)
}

func TestHandleMode(t *testing.T) {
	msg := HandleMode(nil, []string{"Coach"})()
	assert.Equal(t, ModeSwitchMsg{Mode: "coach"}, msg)

	msg = HandleMode(nil, nil)()
	_, ok := msg.(ErrorMsg)
	assert.True(t, ok)
}

func TestHandleExportNormalizesFormat(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"md", "markdown"},
		{"markdown", "markdown"},
		{"htm", "html"},
		{"html", "html"},
		{"json", "json"},
	}

	for _, tt := range tests {
		msg := HandleExport(nil, []string{tt.arg})()
		assert.Equal(t, ExportTranscriptMsg{Format: tt.want}, msg, tt.arg)
	}

	// Default when no argument
	msg := HandleExport(nil, nil)()
	assert.Equal(t, ExportTranscriptMsg{Format: "markdown"}, msg)

	// Unknown format rejected
	msg = HandleExport(nil, []string{"pdf"})()
	_, ok := msg.(ErrorMsg)
	assert.True(t, ok)
}

func TestHandleModel(t *testing.T) {
	msg := HandleModel(nil, []string{"qwen2.5-coder"})()
	assert.Equal(t, ModelSwitchMsg{Model: "qwen2.5-coder"}, msg)

	msg = HandleModel(nil, nil)()
	assert.Equal(t, ModelSwitchMsg{}, msg)
}

func TestStoreBackedHandlersWithoutStore(t *testing.T) {
	msg := HandleProblems(nil, nil)()
	plMsg, ok := msg.(ProblemListMsg)
	require.True(t, ok)
	assert.Error(t, plMsg.Error)

	msg = HandleStats(nil, nil)()
	stMsg, ok := msg.(StatsMsg)
	require.True(t, ok)
	assert.Error(t, stMsg.Error)

	msg = HandleTranscripts(nil, nil)()
	trMsg, ok := msg.(TranscriptListMsg)
	require.True(t, ok)
	assert.Error(t, trMsg.Error)
}
