// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package timer

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the countdown deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCountdown() (*Countdown, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	c := New()
	c.now = clock.now
	return c, clock
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestStartInitialSnapshot(t *testing.T) {
	c, _ := newTestCountdown()
	c.Start(10 * time.Minute)

	s := c.GetSnapshot()
	assert.Equal(t, 10*time.Minute, s.Duration)
	assert.Equal(t, 10*time.Minute, s.Remaining)
	assert.Equal(t, PhaseGreen, s.Phase)
	assert.True(t, s.IsRunning)
	assert.False(t, s.IsPaused)
}

func TestPauseFreezesElapsed(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(10 * time.Minute)

	clock.advance(2 * time.Minute)
	c.Pause()
	assert.Equal(t, 2*time.Minute, c.Elapsed())

	// The clock keeps moving but elapsed does not.
	clock.advance(30 * time.Minute)
	assert.Equal(t, 2*time.Minute, c.Elapsed())
	assert.Equal(t, 8*time.Minute, c.Remaining())

	c.Resume()
	clock.advance(1 * time.Minute)
	assert.Equal(t, 3*time.Minute, c.Elapsed())
}

func TestRepeatedPauseCyclesAccumulate(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(20 * time.Minute)

	clock.advance(1 * time.Minute)
	c.Pause()
	clock.advance(5 * time.Minute)
	c.Resume()

	clock.advance(1 * time.Minute)
	c.Pause()
	clock.advance(10 * time.Minute)
	c.Resume()

	clock.advance(1 * time.Minute)
	assert.Equal(t, 3*time.Minute, c.Elapsed())
}

func TestPauseResumeNoOpsOutsideTheirStates(t *testing.T) {
	c, clock := newTestCountdown()

	// Idle: both are no-ops.
	c.Pause()
	c.Resume()
	assert.Equal(t, StateIdle, func() State { c.mu.Lock(); defer c.mu.Unlock(); return c.state }())

	c.Start(time.Minute)
	c.Resume() // not paused
	assert.True(t, c.IsRunning())

	c.Pause()
	c.Pause() // double pause must not shift pausedAt
	clock.advance(time.Second)
	assert.True(t, c.IsPaused())
}

func TestStopReturnsElapsedNotExpired(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(10 * time.Minute)
	clock.advance(4 * time.Minute)

	result := c.Stop()
	assert.Equal(t, 4*time.Minute, result.Elapsed)
	assert.False(t, result.WasExpired)

	// Stopping again returns the frozen result.
	clock.advance(time.Hour)
	again := c.Stop()
	assert.Equal(t, result, again)
	assert.Equal(t, 4*time.Minute, c.Elapsed())
}

func TestStartResetsPreviousRun(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(time.Minute)
	clock.advance(2 * time.Minute)
	require.False(t, c.Check())

	c.Start(10 * time.Minute)
	s := c.GetSnapshot()
	assert.Equal(t, 10*time.Minute, s.Remaining)
	assert.True(t, s.IsRunning)
	assert.False(t, c.Stop().WasExpired)
}

// =============================================================================
// PHASE TESTS
// =============================================================================

func TestPhaseBoundaries(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(100 * time.Second)

	// Exactly 50% remaining is no longer green.
	clock.advance(50 * time.Second)
	assert.Equal(t, PhaseYellow, c.GetSnapshot().Phase)

	clock.advance(-time.Second)
	assert.Equal(t, PhaseGreen, c.GetSnapshot().Phase)

	// Exactly 25% remaining is red.
	clock.t = clock.t.Add(26 * time.Second)
	assert.Equal(t, PhaseRed, c.GetSnapshot().Phase)

	clock.advance(-time.Second)
	assert.Equal(t, PhaseYellow, c.GetSnapshot().Phase)
}

func TestZeroDurationStaysGreen(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(0)
	clock.advance(time.Hour)
	assert.Equal(t, PhaseGreen, c.GetSnapshot().Phase)
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestWarningFiresOnceAtThreshold(t *testing.T) {
	c, clock := newTestCountdown()

	var warnings []time.Duration
	c.SetWarningCallback(func(remaining time.Duration) {
		warnings = append(warnings, remaining)
	})

	c.Start(10 * time.Minute)

	clock.advance(4 * time.Minute)
	c.Check()
	assert.Empty(t, warnings)

	clock.advance(1 * time.Minute)
	c.Check()
	require.Len(t, warnings, 1)
	assert.Equal(t, 5*time.Minute, warnings[0])

	// Later ticks below the threshold stay silent.
	clock.advance(1 * time.Minute)
	c.Check()
	assert.Len(t, warnings, 1)
}

func TestShortCountdownSkipsWarningUntilFirstTick(t *testing.T) {
	// A countdown shorter than the threshold warns on its first check.
	c, _ := newTestCountdown()

	var fired int
	c.SetWarningCallback(func(time.Duration) { fired++ })

	c.Start(3 * time.Minute)
	c.Check()
	c.Check()
	assert.Equal(t, 1, fired)
}

func TestExpiryFiresExactlyOnce(t *testing.T) {
	c, clock := newTestCountdown()

	var results []StopResult
	c.SetExpiredCallback(func(r StopResult) { results = append(results, r) })

	c.Start(time.Minute)
	clock.advance(90 * time.Second)

	assert.False(t, c.Check())
	assert.False(t, c.Check())
	assert.False(t, c.Check())

	require.Len(t, results, 1)
	assert.True(t, results[0].WasExpired)
	assert.Equal(t, 90*time.Second, results[0].Elapsed)
}

func TestExpiryAutoStops(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(time.Minute)
	clock.advance(2 * time.Minute)
	c.Check()

	assert.False(t, c.IsRunning())
	assert.False(t, c.IsPaused())

	result := c.Stop()
	assert.True(t, result.WasExpired)
	assert.Equal(t, 2*time.Minute, result.Elapsed)
}

func TestPausedCountdownNeverExpires(t *testing.T) {
	c, clock := newTestCountdown()

	var fired int
	c.SetExpiredCallback(func(StopResult) { fired++ })

	c.Start(time.Minute)
	clock.advance(30 * time.Second)
	c.Pause()
	clock.advance(time.Hour)

	c.Check()
	assert.Zero(t, fired)
	assert.Equal(t, 30*time.Second, c.Remaining())
}

// =============================================================================
// TICK COMMAND TESTS
// =============================================================================

// drainCmd executes a command chain and flattens batches into messages.
func drainCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drainCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func countExpiredMsgs(msgs []tea.Msg) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(ExpiredMsg); ok {
			n++
		}
	}
	return n
}

func TestHandleTickExpiryNotification(t *testing.T) {
	c, clock := newTestCountdown()
	c.Start(time.Minute)
	clock.advance(2 * time.Minute)

	msgs := drainCmd(c.HandleTick())

	assert.Equal(t, 1, countExpiredMsgs(msgs))
}

func TestStaleTickAfterExpiryEmitsNoSecondExpiry(t *testing.T) {
	// Restarting the timer mid-run arms a second tick chain, so a countdown
	// can receive ticks after the one that tripped expiry.
	c, clock := newTestCountdown()
	c.Start(time.Minute)
	clock.advance(2 * time.Minute)

	require.Equal(t, 1, countExpiredMsgs(drainCmd(c.HandleTick())))

	assert.Zero(t, countExpiredMsgs(drainCmd(c.HandleTick())))
	assert.Zero(t, countExpiredMsgs(drainCmd(c.HandleTick())))
}
