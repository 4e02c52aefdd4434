// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/prompt"
	"github.com/jeranaias/drillrun-tui/internal/provider"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeChatter struct {
	mu    sync.Mutex
	reqs  []provider.ChatRequest
	chans []chan provider.ChatChunk
}

func (f *fakeChatter) Chat(_ context.Context, req provider.ChatRequest) <-chan provider.ChatChunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan provider.ChatChunk, 16)
	f.reqs = append(f.reqs, req)
	f.chans = append(f.chans, ch)
	return ch
}

func (f *fakeChatter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeChatter) lastChan() chan provider.ChatChunk {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chans[len(f.chans)-1]
}

func (f *fakeChatter) lastReq() provider.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type fakeSessions struct {
	active bool
	gaveUp bool
}

func (f *fakeSessions) IsActive() bool { return f.active }
func (f *fakeSessions) GaveUp() bool   { return f.gaveUp }

type fakeTimer struct {
	running bool
	paused  bool
	elapsed time.Duration
}

func (f *fakeTimer) IsRunning() bool        { return f.running }
func (f *fakeTimer) IsPaused() bool         { return f.paused }
func (f *fakeTimer) Elapsed() time.Duration { return f.elapsed }

func newTestController() (*Controller, *fakeChatter, *fakeSessions, *fakeTimer) {
	chatter := &fakeChatter{}
	sessions := &fakeSessions{}
	countdown := &fakeTimer{}
	c := New(chatter, sessions, countdown)
	return c, chatter, sessions, countdown
}

func nextEvent(t *testing.T, c *Controller) Event {
	t.Helper()
	select {
	case e := <-c.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func waitIdle(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !c.InFlight() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("stream never finished")
}

func drainEvents(c *Controller) []Event {
	var out []Event
	for {
		select {
		case e := <-c.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

// =============================================================================
// SENDING AND STREAMING
// =============================================================================

func TestSendMessageStreamsToCompletion(t *testing.T) {
	c, chatter, _, _ := newTestController()
	c.SelectModel("llama3.2")

	c.SendMessage("how should I start?")
	require.Equal(t, 1, chatter.calls())
	assert.Equal(t, "llama3.2", chatter.lastReq().ModelID)

	ch := chatter.lastChan()
	ch <- provider.ContentChunk("Try a ")
	ch <- provider.ContentChunk("hash map.")
	ch <- provider.DoneChunk(provider.Usage{PromptTokens: 12, CompletionTokens: 5})
	close(ch)

	var done DoneEvent
	for {
		e := nextEvent(t, c)
		if d, ok := e.(DoneEvent); ok {
			done = d
			break
		}
	}
	assert.Equal(t, "Try a hash map.", done.Text)
	assert.False(t, done.Heartbeat)
	require.NotNil(t, done.Stats)
	assert.Equal(t, 5, done.Stats.CompletionTokens)
	assert.Equal(t, 12, done.Stats.PromptTokens)

	waitIdle(t, c)
	history := c.Snapshot().GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "how should I start?", history[0].Content)
	assert.Equal(t, "Try a hash map.", history[1].Content)
	assert.False(t, history[1].IsStreaming)
	assert.False(t, history[1].Interrupted)
}

func TestSendRequestCarriesSystemPrompt(t *testing.T) {
	c, chatter, _, _ := newTestController()

	c.SendMessage("hello")
	msgs := chatter.lastReq().Messages
	require.NotEmpty(t, msgs)
	assert.Equal(t, provider.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "INTERVIEWER")
	assert.Equal(t, "hello", msgs[len(msgs)-1].Content)
}

func TestSendPreemptsOpenStream(t *testing.T) {
	c, chatter, _, _ := newTestController()

	c.SendMessage("first question")
	chA := chatter.lastChan()
	chA <- provider.ContentChunk("partial answ")

	// Let the consumer apply the chunk before preempting.
	require.IsType(t, ChunkEvent{}, nextEvent(t, c))

	c.SendMessage("second question")
	require.Equal(t, 2, chatter.calls())
	close(chA)

	e := nextEvent(t, c)
	interrupted, ok := e.(InterruptedEvent)
	require.True(t, ok, "interruption must be committed before anything from the second stream")
	assert.Equal(t, "partial answ", interrupted.Partial)

	chB := chatter.lastChan()
	chB <- provider.ContentChunk("fresh answer")
	chB <- provider.DoneChunk(provider.Usage{})
	close(chB)
	waitIdle(t, c)

	history := c.Snapshot().GetHistory()
	require.Len(t, history, 4)
	assert.True(t, history[1].Interrupted)
	assert.Equal(t, "partial answ", history[1].Content)
	assert.Equal(t, "second question", history[2].Content)
	assert.Equal(t, "fresh answer", history[3].Content)
}

func TestStreamFailureDiscardsPartial(t *testing.T) {
	c, chatter, _, _ := newTestController()

	c.SendMessage("question")
	ch := chatter.lastChan()
	ch <- provider.ContentChunk("doomed partial")
	ch <- provider.ErrorChunk("connection reset")
	close(ch)

	var errEvent ErrorEvent
	for {
		e := nextEvent(t, c)
		if ee, ok := e.(ErrorEvent); ok {
			errEvent = ee
			break
		}
	}
	assert.Equal(t, "connection reset", errEvent.Message)

	waitIdle(t, c)
	history := c.Snapshot().GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "question", history[0].Content)
}

func TestChannelClosedWithoutTerminalIsFailure(t *testing.T) {
	c, chatter, _, _ := newTestController()

	c.SendMessage("question")
	ch := chatter.lastChan()
	ch <- provider.ContentChunk("half an ans")
	close(ch)

	var errEvent ErrorEvent
	for {
		e := nextEvent(t, c)
		if ee, ok := e.(ErrorEvent); ok {
			errEvent = ee
			break
		}
	}
	assert.Contains(t, errEvent.Message, "closed unexpectedly")

	history := c.Snapshot().GetHistory()
	require.Len(t, history, 1)
}

func TestInterruptKeepsPartial(t *testing.T) {
	c, chatter, _, _ := newTestController()

	c.SendMessage("question")
	ch := chatter.lastChan()
	ch <- provider.ContentChunk("keep this much")
	require.IsType(t, ChunkEvent{}, nextEvent(t, c))

	c.Interrupt()
	close(ch)

	e := nextEvent(t, c)
	interrupted, ok := e.(InterruptedEvent)
	require.True(t, ok)
	assert.Equal(t, "keep this much", interrupted.Partial)
	assert.False(t, c.InFlight())

	history := c.Snapshot().GetHistory()
	require.Len(t, history, 2)
	assert.True(t, history[1].Interrupted)
	assert.Equal(t, "keep this much", history[1].Content)
}

func TestInterruptWithNothingInFlightIsNoOp(t *testing.T) {
	c, _, _, _ := newTestController()
	c.Interrupt()
	c.Interrupt()
	assert.Empty(t, drainEvents(c))
	assert.True(t, c.Snapshot().IsEmpty())
}

// =============================================================================
// MODE
// =============================================================================

func TestSetModeRejectsUnknown(t *testing.T) {
	c, _, _, _ := newTestController()
	assert.False(t, c.SetMode(mode.Mode("wizard")))
	assert.Equal(t, mode.Interview, c.SelectedMode())
	assert.True(t, c.SetMode(mode.Coach))
	assert.Equal(t, mode.Coach, c.SelectedMode())
}

func TestSendEmitsModeOverrideNotice(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	require.True(t, c.SetMode(mode.Coach))
	sessions.active = true
	countdown.running = true

	c.SendMessage("question")

	e := nextEvent(t, c)
	override, ok := e.(ModeOverrideEvent)
	require.True(t, ok, "override notice must precede stream events")
	assert.Equal(t, mode.Coach, override.Selected)
	assert.Equal(t, mode.Interview, override.Effective)

	msgs := chatter.lastReq().Messages
	assert.Contains(t, msgs[0].Content, "INTERVIEWER")
}

func TestGaveUpForcesTeachPrompt(t *testing.T) {
	c, chatter, sessions, _ := newTestController()
	sessions.active = true
	sessions.gaveUp = true

	c.SendMessage("show me")
	msgs := chatter.lastReq().Messages
	assert.Contains(t, msgs[0].Content, "TEACHER")
	assert.Equal(t, mode.Teach, c.EffectiveMode())
}

// =============================================================================
// HEARTBEAT
// =============================================================================

// armHeartbeat puts the controller in a state where a tick should fire.
func armHeartbeat(c *Controller, sessions *fakeSessions, countdown *fakeTimer, elapsed time.Duration) {
	sessions.active = true
	countdown.running = true
	countdown.elapsed = elapsed
	c.mu.Lock()
	c.lastActivity = time.Now().Add(-2 * SilenceThreshold)
	c.mu.Unlock()
}

func TestHeartbeatFiresAndTurnIsErased(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	c.HandleHeartbeatTick()
	require.Equal(t, 1, chatter.calls())

	msgs := chatter.lastReq().Messages
	assert.True(t, strings.HasPrefix(msgs[len(msgs)-1].Content, prompt.HeartbeatMarker))

	ch := chatter.lastChan()
	ch <- provider.ContentChunk("Need a hint? Try stating the invariant.")
	ch <- provider.DoneChunk(provider.Usage{CompletionTokens: 9})
	close(ch)

	e := nextEvent(t, c)
	done, ok := e.(DoneEvent)
	require.True(t, ok, "heartbeat content is withheld until Done")
	assert.True(t, done.Heartbeat)
	assert.Equal(t, "Need a hint? Try stating the invariant.", done.Text)

	history := c.Snapshot().GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "Need a hint? Try stating the invariant.", history[0].Content)
	for _, msg := range history {
		assert.NotContains(t, msg.Content, prompt.HeartbeatMarker)
	}
}

func TestHeartbeatSilenceSentinelSuppressed(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	c.HandleHeartbeatTick()
	require.Equal(t, 1, chatter.calls())

	ch := chatter.lastChan()
	ch <- provider.ContentChunk(prompt.SilenceSentinel)
	ch <- provider.DoneChunk(provider.Usage{})
	close(ch)

	waitIdle(t, c)
	assert.Empty(t, drainEvents(c), "a suppressed heartbeat shows nothing")
	assert.True(t, c.Snapshot().IsEmpty())
}

func TestHeartbeatFailureLeavesNoTrace(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	c.HandleHeartbeatTick()
	ch := chatter.lastChan()
	ch <- provider.ErrorChunk("model unavailable")
	close(ch)

	waitIdle(t, c)
	assert.Empty(t, drainEvents(c), "heartbeat failures are silent")
	assert.True(t, c.Snapshot().IsEmpty())
}

func TestHeartbeatGating(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Controller, sessions *fakeSessions, countdown *fakeTimer)
	}{
		{"timer not running", func(c *Controller, s *fakeSessions, cd *fakeTimer) {
			armHeartbeat(c, s, cd, 9*time.Minute)
			cd.running = false
		}},
		{"timer paused", func(c *Controller, s *fakeSessions, cd *fakeTimer) {
			armHeartbeat(c, s, cd, 9*time.Minute)
			cd.paused = true
		}},
		{"effective mode not interview", func(c *Controller, s *fakeSessions, cd *fakeTimer) {
			armHeartbeat(c, s, cd, 9*time.Minute)
			s.active = false
			c.SetMode(mode.Coach)
		}},
		{"recent activity", func(c *Controller, s *fakeSessions, cd *fakeTimer) {
			armHeartbeat(c, s, cd, 9*time.Minute)
			c.mu.Lock()
			c.lastActivity = time.Now()
			c.mu.Unlock()
		}},
		{"before first phase", func(c *Controller, s *fakeSessions, cd *fakeTimer) {
			armHeartbeat(c, s, cd, 5*time.Minute)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, chatter, sessions, countdown := newTestController()
			tt.setup(c, sessions, countdown)
			c.HandleHeartbeatTick()
			assert.Zero(t, chatter.calls())
		})
	}
}

func TestHeartbeatFiresOncePerPhase(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	finishSilently := func() {
		ch := chatter.lastChan()
		ch <- provider.ContentChunk(prompt.SilenceSentinel)
		ch <- provider.DoneChunk(provider.Usage{})
		close(ch)
		waitIdle(t, c)
	}

	c.HandleHeartbeatTick()
	require.Equal(t, 1, chatter.calls())
	finishSilently()

	// Same phase: no second nudge.
	countdown.elapsed = 10 * time.Minute
	c.HandleHeartbeatTick()
	assert.Equal(t, 1, chatter.calls())

	// Next phase crossed.
	countdown.elapsed = 14 * time.Minute
	c.HandleHeartbeatTick()
	require.Equal(t, 2, chatter.calls())
	finishSilently()

	// ResetHeartbeat rearms phase one.
	c.ResetHeartbeat()
	c.mu.Lock()
	c.lastActivity = time.Now().Add(-2 * SilenceThreshold)
	c.mu.Unlock()
	countdown.elapsed = 9 * time.Minute
	c.HandleHeartbeatTick()
	assert.Equal(t, 3, chatter.calls())
}

func TestHeartbeatNeverPreemptsOpenStream(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()

	c.SendMessage("still thinking about this one")
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	c.HandleHeartbeatTick()
	assert.Equal(t, 1, chatter.calls())

	ch := chatter.lastChan()
	ch <- provider.DoneChunk(provider.Usage{})
	close(ch)
	waitIdle(t, c)
}

func TestUserSendPreemptsPendingHeartbeat(t *testing.T) {
	c, chatter, sessions, countdown := newTestController()
	armHeartbeat(c, sessions, countdown, 9*time.Minute)

	c.HandleHeartbeatTick()
	require.Equal(t, 1, chatter.calls())
	heartbeatCh := chatter.lastChan()
	heartbeatCh <- provider.ContentChunk("Need a hi")

	c.SendMessage("actually, here is my idea")
	require.Equal(t, 2, chatter.calls())
	close(heartbeatCh)

	ch := chatter.lastChan()
	ch <- provider.ContentChunk("go on")
	ch <- provider.DoneChunk(provider.Usage{})
	close(ch)
	waitIdle(t, c)

	history := c.Snapshot().GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "actually, here is my idea", history[0].Content)
	assert.Equal(t, "go on", history[1].Content)
}
