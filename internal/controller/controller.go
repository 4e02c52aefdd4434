// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/model"
	"github.com/jeranaias/drillrun-tui/internal/prompt"
	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Chatter dispatches one chat request. *router.Router satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req provider.ChatRequest) <-chan provider.ChatChunk
}

// SessionInfo exposes the session facts mode resolution needs.
// *session.Orchestrator satisfies it.
type SessionInfo interface {
	IsActive() bool
	GaveUp() bool
}

// TimerInfo exposes the countdown facts the controller reads.
// *timer.Countdown satisfies it.
type TimerInfo interface {
	IsRunning() bool
	IsPaused() bool
	Elapsed() time.Duration
}

// =============================================================================
// HEARTBEAT CONTRACT
// =============================================================================

const (
	// HeartbeatInterval is the cadence of idle checks.
	HeartbeatInterval = 60 * time.Second

	// SilenceThreshold is the minimum user silence before a nudge.
	SilenceThreshold = 90 * time.Second
)

// heartbeatPhases are the absolute elapsed-time thresholds; each phase
// yields at most one nudge per session.
var heartbeatPhases = []time.Duration{
	8 * time.Minute,
	13 * time.Minute,
	19 * time.Minute,
}

// heartbeatPhase maps elapsed time to the highest crossed phase, 0 for none.
func heartbeatPhase(elapsed time.Duration) int {
	phase := 0
	for i, threshold := range heartbeatPhases {
		if elapsed >= threshold {
			phase = i + 1
		}
	}
	return phase
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns all mutable conversation state: the history, the selected
// model and persona, and the single in-flight stream. It is the only writer;
// timer ticks, heartbeat ticks, and user sends all mutate through it, and a
// mutex serializes them. Sending while a stream is open cancels the old
// stream first; the UI never sees interleaved chunks from two requests.
type Controller struct {
	mu sync.Mutex

	history   *model.Conversation
	chatter   Chatter
	sessions  SessionInfo
	countdown TimerInfo

	selected mode.Mode
	modelID  string

	// promptCtx supplies session facts for the system prompt, set by the app
	// wiring once the problem is known.
	promptCtx func() prompt.Context

	cancelMgr *cancelManager

	// generation identifies the current stream; consumers for older
	// generations discard everything they read.
	generation  uint64
	inFlight    bool
	streamingID string

	// heartbeatUserID is the synthetic turn awaiting erasure, "" when none.
	heartbeatUserID string
	lastActivity    time.Time
	lastPhase       int

	events chan Event
	now    func() time.Time
}

// New creates a controller with an empty history and Interview selected.
func New(chatter Chatter, sessions SessionInfo, countdown TimerInfo) *Controller {
	c := &Controller{
		history:   model.NewConversation(),
		chatter:   chatter,
		sessions:  sessions,
		countdown: countdown,
		selected:  mode.Interview,
		cancelMgr: newCancelManager(),
		events:    make(chan Event, 256),
		now:       time.Now,
	}
	c.lastActivity = c.now()
	return c
}

// Events is the outbound event stream consumed by the UI.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// SetPromptContext installs the session-fact supplier for prompt building.
func (c *Controller) SetPromptContext(fn func() prompt.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promptCtx = fn
}

// AddSystemNotice appends a system turn to the history. Timer warnings and
// session lifecycle notices land in the transcript through this.
func (c *Controller) AddSystemNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.AddSystemMessage(text)
}

// ClearHistory drops all turns, keeping model and persona selection.
func (c *Controller) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preemptLocked()
	c.history.ClearHistory()
}

// SelectModel switches the model used for subsequent sends.
func (c *Controller) SelectModel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelID = id
	c.history.Model = id
}

// SelectedModel returns the current model id.
func (c *Controller) SelectedModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelID
}

// SetMode records the learner's persona selection.
// Returns false for unrecognized personas, leaving the selection unchanged.
func (c *Controller) SetMode(m mode.Mode) bool {
	if !m.IsValid() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = m
	return true
}

// SelectedMode returns the learner's last explicit selection.
func (c *Controller) SelectedMode() mode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// EffectiveMode applies the override rules to the current session state.
func (c *Controller) EffectiveMode() mode.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mode.Resolve(c.selected, c.sessionStateLocked())
}

// InFlight reports whether a stream is open.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Snapshot returns a deep copy of the history with any pending heartbeat
// turn removed, safe to persist or export.
func (c *Controller) Snapshot() *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := c.history.Clone()
	if c.heartbeatUserID != "" {
		clone.RemoveMessage(c.heartbeatUserID)
		if c.streamingID != "" {
			clone.RemoveMessage(c.streamingID)
		}
	}
	return clone
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage cancels any in-flight stream, appends the user turn, and
// dispatches a new stream. New input always wins.
func (c *Controller) SendMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.preemptLocked()
	c.lastActivity = c.now()
	c.startStreamLocked(text, false)
}

// Interrupt cancels the in-flight stream, keeping the accumulated partial
// as an interrupted assistant turn. Safe to call with nothing in flight.
func (c *Controller) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preemptLocked()
}

// preemptLocked cancels and commits the in-flight stream synchronously so a
// following send observes the cancellation already applied. A preempted
// heartbeat vanishes without trace; a preempted user request keeps its
// partial, marked interrupted.
func (c *Controller) preemptLocked() {
	if !c.inFlight {
		return
	}

	c.cancelMgr.cancel()
	c.generation++ // orphan the old consumer

	if c.heartbeatUserID != "" {
		c.history.RemoveMessage(c.streamingID)
		c.history.RemoveMessage(c.heartbeatUserID)
		c.heartbeatUserID = ""
	} else {
		msg := c.history.GetMessageByID(c.streamingID)
		c.history.InterruptLast()
		if msg != nil {
			c.emit(InterruptedEvent{MessageID: msg.ID, Partial: msg.Content})
		}
	}

	c.inFlight = false
	c.streamingID = ""
}

// startStreamLocked appends the user turn plus a streaming assistant turn
// and launches the stream consumer. Callers must hold the mutex and have
// preempted any prior stream.
func (c *Controller) startStreamLocked(text string, heartbeat bool) {
	state := c.sessionStateLocked()
	effective := mode.Resolve(c.selected, state)
	if !heartbeat && mode.Overridden(c.selected, state) {
		c.emit(ModeOverrideEvent{Selected: c.selected, Effective: effective})
	}

	var pctx prompt.Context
	if c.promptCtx != nil {
		pctx = c.promptCtx()
	}
	c.history.SystemPrompt = prompt.BuildSystemPrompt(effective, pctx)
	c.history.Mode = effective.String()

	userMsg := c.history.AddUserMessage(text)
	if heartbeat {
		c.heartbeatUserID = userMsg.ID
	}

	req := provider.ChatRequest{
		ModelID:  c.modelID,
		Messages: c.history.ToProviderMessages(),
	}

	asst := c.history.AddAssistantMessage()
	c.streamingID = asst.ID

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelMgr.set(cancel)
	c.generation++
	c.inFlight = true

	gen := c.generation
	stats := model.NewStatistics()
	ch := c.chatter.Chat(ctx, req)
	go c.consume(gen, ch, asst.ID, heartbeat, stats)
}

// =============================================================================
// STREAM CONSUMPTION
// =============================================================================

// consume reads one stream to its terminal chunk. A consumer whose
// generation was orphaned by preemption drains silently; the preemptor
// already committed the outcome.
func (c *Controller) consume(gen uint64, ch <-chan provider.ChatChunk, msgID string, heartbeat bool, stats *model.Statistics) {
	sawFirst := false
	terminal := false

	for chunk := range ch {
		switch chunk.Kind {
		case provider.ChunkContent:
			c.mu.Lock()
			if gen != c.generation {
				c.mu.Unlock()
				continue
			}
			if !sawFirst {
				stats.RecordFirstToken()
				sawFirst = true
			}
			c.history.AppendToLast(chunk.Text)
			c.mu.Unlock()
			// Heartbeat content is withheld until the silence check on Done.
			if !heartbeat {
				c.emit(ChunkEvent{MessageID: msgID, Text: chunk.Text})
			}

		case provider.ChunkDone:
			terminal = true
			c.finishDone(gen, msgID, heartbeat, stats, chunk.Usage)

		case provider.ChunkError:
			terminal = true
			c.finishError(gen, msgID, heartbeat, chunk.Err)
		}
		if terminal {
			return
		}
	}

	// Channel closed with no terminal chunk: a provider contract breach,
	// handled as a stream failure.
	c.finishError(gen, msgID, heartbeat, "stream closed unexpectedly")
}

func (c *Controller) finishDone(gen uint64, msgID string, heartbeat bool, stats *model.Statistics, usage provider.Usage) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	msg := c.history.GetMessageByID(msgID)
	text := ""
	if msg != nil {
		text = msg.GetDisplayContent()
	}
	stats.PromptTokens = usage.PromptTokens
	stats.Finalize(usage.CompletionTokens)

	if heartbeat {
		c.eraseHeartbeatTurnLocked()
		if text == "" || prompt.IsSilence(text) {
			// Suppressed entirely: no turn kept, nothing shown.
			c.history.RemoveMessage(msgID)
			c.finishLocked()
			c.mu.Unlock()
			return
		}
	}

	c.history.FinalizeLast(stats)
	c.finishLocked()
	c.mu.Unlock()

	c.emit(DoneEvent{MessageID: msgID, Text: text, Stats: stats, Heartbeat: heartbeat})
}

func (c *Controller) finishError(gen uint64, msgID string, heartbeat bool, errMsg string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	// Partial content from a failed stream is discarded, never shown as
	// complete.
	c.history.RemoveMessage(msgID)
	if heartbeat {
		c.eraseHeartbeatTurnLocked()
	}
	c.finishLocked()
	c.mu.Unlock()

	if heartbeat {
		log.Printf("controller: heartbeat request failed: %s", errMsg)
		return
	}
	c.emit(ErrorEvent{MessageID: msgID, Message: errMsg})
}

// finishLocked clears in-flight bookkeeping and releases the context.
func (c *Controller) finishLocked() {
	c.inFlight = false
	c.streamingID = ""
	c.cancelMgr.cancel()
}

// eraseHeartbeatTurnLocked removes the synthetic turn. Runs on every
// heartbeat outcome so persisted history never contains it.
func (c *Controller) eraseHeartbeatTurnLocked() {
	if c.heartbeatUserID != "" {
		c.history.RemoveMessage(c.heartbeatUserID)
		c.heartbeatUserID = ""
	}
}

// =============================================================================
// HEARTBEAT
// =============================================================================

// HandleHeartbeatTick runs one idle check. A nudge fires only while the
// countdown runs unpaused in Interview mode, after SilenceThreshold of user
// silence, and at most once per elapsed-time phase. A nudge never preempts
// an open stream; user sends win.
func (c *Controller) HandleHeartbeatTick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return
	}
	if !c.countdown.IsRunning() || c.countdown.IsPaused() {
		return
	}
	if mode.Resolve(c.selected, c.sessionStateLocked()) != mode.Interview {
		return
	}
	if c.now().Sub(c.lastActivity) < SilenceThreshold {
		return
	}

	elapsed := c.countdown.Elapsed()
	phase := heartbeatPhase(elapsed)
	if phase == 0 || phase <= c.lastPhase {
		return
	}
	c.lastPhase = phase

	c.startStreamLocked(prompt.HeartbeatTurn(int(elapsed.Minutes())), true)
}

// ResetHeartbeat rearms the phase tracker, called when a timed attempt
// starts.
func (c *Controller) ResetHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPhase = 0
	c.lastActivity = c.now()
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Controller) sessionStateLocked() mode.SessionState {
	return mode.SessionState{
		IsActive:     c.sessions.IsActive(),
		TimerRunning: c.countdown.IsRunning(),
		GaveUp:       c.sessions.GaveUp(),
	}
}

// emit never blocks the controller; a full buffer drops the event with a
// log line.
func (c *Controller) emit(e Event) {
	select {
	case c.events <- e:
	default:
		log.Printf("controller: event buffer full, dropping %T", e)
	}
}
