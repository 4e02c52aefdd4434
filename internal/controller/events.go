// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/model"
)

// =============================================================================
// OUTBOUND EVENTS
// =============================================================================

// Event is the closed set of controller outputs. The UI consumes these from
// the Events channel and matches exhaustively.
type Event interface {
	isEvent()
}

// ChunkEvent delivers streamed content for the in-flight response.
type ChunkEvent struct {
	MessageID string
	Text      string
}

// DoneEvent signals the in-flight response completed. For heartbeat-driven
// responses Text carries the whole nudge at once, since heartbeat content is
// withheld until the silence check passes.
type DoneEvent struct {
	MessageID string
	Text      string
	Stats     *model.Statistics
	Heartbeat bool
}

// InterruptedEvent signals a cancelled stream whose partial content was kept.
type InterruptedEvent struct {
	MessageID string
	Partial   string
}

// ErrorEvent signals a failed stream. The partial content was discarded.
type ErrorEvent struct {
	MessageID string
	Message   string
}

// ModeOverrideEvent reports that session state forced a persona different
// from the learner's selection.
type ModeOverrideEvent struct {
	Selected  mode.Mode
	Effective mode.Mode
}

func (ChunkEvent) isEvent()        {}
func (DoneEvent) isEvent()         {}
func (InterruptedEvent) isEvent()  {}
func (ErrorEvent) isEvent()        {}
func (ModeOverrideEvent) isEvent() {}
