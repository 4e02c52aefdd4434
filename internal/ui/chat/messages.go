// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"time"

	"github.com/jeranaias/drillrun-tui/internal/controller"
	"github.com/jeranaias/drillrun-tui/internal/router"
	"github.com/jeranaias/drillrun-tui/internal/session"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// ASYNC MESSAGE TYPES
// =============================================================================

// ControllerEventMsg wraps one event from the conversation controller.
type ControllerEventMsg struct {
	Event controller.Event
}

// HeartbeatTickMsg fires the idle-nudge check.
type HeartbeatTickMsg struct {
	Time time.Time
}

// RouterReadyMsg reports the result of the provider catalog refresh.
type RouterReadyMsg struct {
	Health []router.ProviderHealth
	Err    error
}

// SessionStartedMsg reports a started practice session.
type SessionStartedMsg struct {
	Session *session.ActiveSession
	Problem *storage.Problem
	Err     error
}

// SessionEndedMsg reports a finished practice session.
type SessionEndedMsg struct {
	Err error
}

// AttemptRatedMsg reports a rated attempt and its next review date.
type AttemptRatedMsg struct {
	Result *session.AttemptResult
	Err    error
}

// ExportDoneMsg reports a finished transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// TranscriptSavedMsg reports a transcript autosave.
type TranscriptSavedMsg struct {
	Err error
}
