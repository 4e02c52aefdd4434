// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode derives the effective coaching persona from session state.
//
// The learner picks a persona, but an active session can override it: giving
// up forces the full teacher, and a running countdown forces the Socratic
// interviewer. Resolve is a pure function so every prompt build can call it
// without caching concerns.
package mode

// Mode is a coaching persona.
type Mode string

const (
	// Coach answers questions directly but nudges toward self-discovery.
	Coach Mode = "coach"
	// Interview withholds answers and asks Socratic questions. Forced while
	// the countdown is running.
	Interview Mode = "interview"
	// Teach explains fully, including complete solutions. Forced after the
	// learner gives up.
	Teach Mode = "teach"
)

// IsValid reports whether m is a recognized persona.
func (m Mode) IsValid() bool {
	switch m {
	case Coach, Interview, Teach:
		return true
	}
	return false
}

// String returns the persona name.
func (m Mode) String() string {
	return string(m)
}

// Parse maps a user-supplied string to a Mode.
// Unrecognized input comes back as ok=false with Interview as the fallback.
func Parse(s string) (Mode, bool) {
	m := Mode(s)
	if m.IsValid() {
		return m, true
	}
	return Interview, false
}

// SessionState is the mode-resolution input, recomputed from the
// orchestrator and timer on every prompt build. It is a derived snapshot,
// never stored.
type SessionState struct {
	IsActive     bool
	TimerRunning bool
	GaveUp       bool
}

// Resolve maps (selected persona, session state) to the effective persona.
// The override hierarchy is fixed and short-circuits at the first match:
//
//  1. No active session: the selection stands, returned unchanged even when
//     it is not a recognized persona.
//  2. Learner gave up: Teach, unconditionally.
//  3. Countdown running: Interview, unconditionally.
//  4. Otherwise: the selection stands, with unrecognized selections
//     defaulting to Interview.
func Resolve(selected Mode, state SessionState) Mode {
	if !state.IsActive {
		return selected
	}
	if state.GaveUp {
		return Teach
	}
	if state.TimerRunning {
		return Interview
	}
	return fallback(selected)
}

// Overridden reports whether the state forces a persona different from the
// selection, for surfacing a mode-override notice in the UI.
func Overridden(selected Mode, state SessionState) bool {
	if !state.IsActive {
		return false
	}
	return Resolve(selected, state) != fallback(selected)
}

func fallback(selected Mode) Mode {
	if !selected.IsValid() {
		return Interview
	}
	return selected
}
