// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package timer provides the pausable practice countdown.
package timer

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STATES AND PHASES
// =============================================================================

// State is the countdown lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

// Phase buckets the remaining time for display.
type Phase string

const (
	// PhaseGreen means more than half the time remains.
	PhaseGreen Phase = "green"
	// PhaseYellow means between a quarter and half remains.
	PhaseYellow Phase = "yellow"
	// PhaseRed means a quarter or less remains.
	PhaseRed Phase = "red"
)

// Timing contract constants.
const (
	// TickInterval is the notification cadence while running.
	TickInterval = time.Second

	// WarningThreshold is the absolute remaining time at which the one-shot
	// warning fires.
	WarningThreshold = 5 * time.Minute
)

// Snapshot is the countdown state recomputed on read.
type Snapshot struct {
	Duration  time.Duration
	Remaining time.Duration
	Phase     Phase
	IsRunning bool
	IsPaused  bool
}

// StopResult reports how a countdown ended.
type StopResult struct {
	Elapsed    time.Duration
	WasExpired bool
}

// =============================================================================
// COUNTDOWN
// =============================================================================

// Countdown is a pausable wall-clock countdown. Elapsed time is derived from
// wall-clock timestamps plus an accumulated pause offset, so pausing freezes
// the clock exactly.
//
// The warning and expiry notifications are one-shot: each fires at most once
// per Start, no matter how many ticks observe the crossed threshold. Expiry
// auto-transitions to Stopped.
type Countdown struct {
	mu sync.Mutex

	state       State
	duration    time.Duration
	startTime   time.Time
	pausedAt    time.Time
	totalPaused time.Duration

	// Frozen elapsed for the Stopped state.
	stoppedElapsed time.Duration
	wasExpired     bool

	warningFired bool
	expiredFired bool

	onWarning func(remaining time.Duration)
	onExpired func(StopResult)

	now func() time.Time
}

// New creates an idle countdown.
func New() *Countdown {
	return &Countdown{now: time.Now}
}

// SetWarningCallback sets the function called when remaining first falls to
// or below WarningThreshold.
func (c *Countdown) SetWarningCallback(fn func(remaining time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onWarning = fn
}

// SetExpiredCallback sets the function called when the countdown runs out.
func (c *Countdown) SetExpiredCallback(fn func(StopResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start resets all fields and enters Running.
func (c *Countdown) Start(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateRunning
	c.duration = duration
	c.startTime = c.now()
	c.totalPaused = 0
	c.stoppedElapsed = 0
	c.wasExpired = false
	c.warningFired = false
	c.expiredFired = false
}

// Pause freezes the clock. No-op unless Running.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return
	}
	c.pausedAt = c.now()
	c.state = StatePaused
}

// Resume unfreezes the clock. No-op unless Paused.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return
	}
	c.totalPaused += c.now().Sub(c.pausedAt)
	c.state = StateRunning
}

// Stop ends the countdown early and freezes the elapsed time.
// Stopping an already-stopped or idle countdown returns the frozen result.
func (c *Countdown) Stop() StopResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning || c.state == StatePaused {
		c.stoppedElapsed = c.elapsedLocked()
		c.state = StateStopped
	}
	return StopResult{Elapsed: c.stoppedElapsed, WasExpired: c.wasExpired}
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// elapsedLocked computes elapsed time for the current state.
// Callers must hold the mutex.
func (c *Countdown) elapsedLocked() time.Duration {
	switch c.state {
	case StateRunning:
		return c.now().Sub(c.startTime) - c.totalPaused
	case StatePaused:
		return c.pausedAt.Sub(c.startTime) - c.totalPaused
	case StateStopped:
		return c.stoppedElapsed
	default:
		return 0
	}
}

// remainingLocked computes remaining time, floored at zero.
func (c *Countdown) remainingLocked() time.Duration {
	remaining := c.duration - c.elapsedLocked()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// phaseLocked buckets the remaining fraction. A zero-duration countdown
// stays green.
func (c *Countdown) phaseLocked() Phase {
	if c.duration == 0 {
		return PhaseGreen
	}
	remaining := c.remainingLocked()
	switch {
	case remaining*2 > c.duration:
		return PhaseGreen
	case remaining*4 > c.duration:
		return PhaseYellow
	default:
		return PhaseRed
	}
}

// Elapsed returns the elapsed time for the current state.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

// Remaining returns the remaining time, floored at zero.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

// IsRunning reports whether the clock is advancing.
func (c *Countdown) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRunning
}

// IsPaused reports whether the clock is frozen mid-countdown.
func (c *Countdown) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StatePaused
}

// GetSnapshot returns the full countdown state, recomputed on read.
func (c *Countdown) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Duration:  c.duration,
		Remaining: c.remainingLocked(),
		Phase:     c.phaseLocked(),
		IsRunning: c.state == StateRunning,
		IsPaused:  c.state == StatePaused,
	}
}

// =============================================================================
// TICK PROCESSING
// =============================================================================

// Check evaluates thresholds and triggers the one-shot callbacks.
// Returns false once the countdown is no longer running.
func (c *Countdown) Check() bool {
	c.mu.Lock()

	if c.state != StateRunning {
		c.mu.Unlock()
		return false
	}

	remaining := c.remainingLocked()

	var fireWarning bool
	if !c.warningFired && remaining > 0 && remaining <= WarningThreshold {
		c.warningFired = true
		fireWarning = true
	}

	var fireExpired bool
	var result StopResult
	if remaining <= 0 && !c.expiredFired {
		c.expiredFired = true
		c.wasExpired = true
		c.stoppedElapsed = c.elapsedLocked()
		c.state = StateStopped
		fireExpired = true
		result = StopResult{Elapsed: c.stoppedElapsed, WasExpired: true}
	}

	onWarning := c.onWarning
	onExpired := c.onExpired
	c.mu.Unlock()

	// Callbacks run outside the lock.
	if fireWarning && onWarning != nil {
		onWarning(remaining)
	}
	if fireExpired && onExpired != nil {
		onExpired(result)
	}

	return !fireExpired
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent once per TickInterval while the countdown runs.
type TickMsg struct {
	Time time.Time
}

// UpdateMsg carries a fresh snapshot for the status bar.
type UpdateMsg struct {
	Snapshot Snapshot
}

// WarningMsg indicates the five-minute warning fired.
type WarningMsg struct {
	Remaining time.Duration
}

// ExpiredMsg indicates the countdown ran out.
type ExpiredMsg struct {
	Result StopResult
}

// TickCmd returns a command that ticks once per interval.
func TickCmd() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick: evaluates thresholds, emits the update and
// any one-shot notifications, and re-arms the tick source while running.
func (c *Countdown) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	snapshot := c.GetSnapshot()
	var warned bool
	var expired StopResult
	var didExpire bool

	c.mu.Lock()
	warningBefore := c.warningFired
	expiredBefore := c.expiredFired
	c.mu.Unlock()

	alive := c.Check()

	c.mu.Lock()
	if !warningBefore && c.warningFired {
		warned = true
	}
	// Edge-triggered: only the tick that trips expiry notifies. Stale ticks
	// from a re-armed chain observe expiredFired already set.
	if !expiredBefore && c.expiredFired {
		didExpire = true
		expired = StopResult{Elapsed: c.stoppedElapsed, WasExpired: true}
	}
	c.mu.Unlock()

	cmds = append(cmds, func() tea.Msg {
		return UpdateMsg{Snapshot: c.GetSnapshot()}
	})
	if warned {
		remaining := snapshot.Remaining
		cmds = append(cmds, func() tea.Msg {
			return WarningMsg{Remaining: remaining}
		})
	}
	if didExpire {
		cmds = append(cmds, func() tea.Msg {
			return ExpiredMsg{Result: expired}
		})
	}
	if alive {
		cmds = append(cmds, TickCmd())
	}

	return tea.Batch(cmds...)
}
