// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/scheduler"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// SLOTS AND ACTIVE SESSION
// =============================================================================

// Slot names which problem of a session an attempt targets.
type Slot string

const (
	// SlotNew is the session's fresh problem.
	SlotNew Slot = "new"
	// SlotReview is the due spaced-repetition problem, when one exists.
	SlotReview Slot = "review"
)

// ActiveSession is the single live session. Exactly one instance exists at a
// time and only the Orchestrator mutates it.
type ActiveSession struct {
	ID              string
	NewProblemID    string
	ReviewProblemID string
	StartedAt       time.Time

	CurrentSlot      Slot
	CurrentCardID    string
	AttemptStartedAt time.Time
	HintsUsed        int
	GaveUp           bool
}

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Store is the persistence surface the orchestrator needs.
// *storage.Store satisfies it.
type Store interface {
	InsertSession(ctx context.Context, sess storage.Session) (string, error)
	UpdateSession(ctx context.Context, sess storage.Session) error
	GetOrCreateCard(ctx context.Context, problemID, cardType string) (storage.Card, error)
	GetDueCards(ctx context.Context, limit int) ([]storage.Card, error)
	InsertAttempt(ctx context.Context, a storage.Attempt) error
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the ActiveSession lifecycle. Every operation on an
// absent session degrades to a safe no-op or nil return.
type Orchestrator struct {
	mu sync.Mutex

	store  Store
	sched  scheduler.Scheduler
	active *ActiveSession

	now func() time.Time
}

// New creates an orchestrator with no active session.
func New(store Store, sched scheduler.Scheduler) *Orchestrator {
	return &Orchestrator{store: store, sched: sched, now: time.Now}
}

// StartSession opens a session on the given new problem. Up to one due
// review card is pulled from the store to fill the review slot; a store
// without due cards yields a new-only session. The previous session, if any,
// is ended first.
func (o *Orchestrator) StartSession(ctx context.Context, newProblemID string) (*ActiveSession, error) {
	o.EndSession(ctx)

	var reviewProblemID string
	due, err := o.store.GetDueCards(ctx, 1)
	if err == nil && len(due) > 0 {
		reviewProblemID = due[0].ProblemID
	}

	startedAt := o.now()
	id, err := o.store.InsertSession(ctx, storage.Session{
		NewProblemID:    newProblemID,
		ReviewProblemID: reviewProblemID,
		StartedAt:       startedAt,
	})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = &ActiveSession{
		ID:              id,
		NewProblemID:    newProblemID,
		ReviewProblemID: reviewProblemID,
		StartedAt:       startedAt,
		CurrentSlot:     SlotNew,
	}
	snapshot := *o.active
	return &snapshot, nil
}

// BeginAttempt points the session at a slot and resolves that slot's card.
// Resets the hint counter and stamps the attempt start. No-op without an
// active session or when the slot has no problem.
func (o *Orchestrator) BeginAttempt(ctx context.Context, slot Slot) error {
	o.mu.Lock()
	active := o.active
	o.mu.Unlock()

	if active == nil {
		return nil
	}

	problemID := o.problemForSlot(slot)
	if problemID == "" {
		return nil
	}

	card, err := o.store.GetOrCreateCard(ctx, problemID, string(slot))
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return nil
	}
	o.active.CurrentSlot = slot
	o.active.CurrentCardID = card.ID
	o.active.AttemptStartedAt = o.now()
	o.active.HintsUsed = 0
	return nil
}

// RecordHint increments the hint counter. No-op without an active session.
func (o *Orchestrator) RecordHint() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.HintsUsed++
}

// MarkGaveUp flags the session as given up. No-op without an active session.
func (o *Orchestrator) MarkGaveUp() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.GaveUp = true
}

// AttemptResult is what CompleteAttempt hands back to the UI.
type AttemptResult struct {
	Card       storage.Card
	NextReview time.Time
}

// CompleteAttempt persists the attempt and forwards the rating to the
// scheduler. Returns nil without writing anything when no session is active
// or the current slot has no resolved card.
func (o *Orchestrator) CompleteAttempt(ctx context.Context, rating scheduler.Rating, timeSpentMs, timerLimitMs int64, userCode string, gaveUp bool) (*AttemptResult, error) {
	o.mu.Lock()
	if o.active == nil || o.active.CurrentCardID == "" {
		o.mu.Unlock()
		return nil, nil
	}
	sessionID := o.active.ID
	cardID := o.active.CurrentCardID
	problemID := o.problemForSlotLocked(o.active.CurrentSlot)
	hintsUsed := o.active.HintsUsed
	if gaveUp {
		o.active.GaveUp = true
	}
	o.mu.Unlock()

	err := o.store.InsertAttempt(ctx, storage.Attempt{
		SessionID:    sessionID,
		ProblemID:    problemID,
		CardID:       cardID,
		Rating:       int(rating),
		TimeSpentMs:  timeSpentMs,
		TimerLimitMs: timerLimitMs,
		HintsUsed:    hintsUsed,
		GaveUp:       gaveUp,
		UserCode:     userCode,
		CreatedAt:    o.now(),
	})
	if err != nil {
		return nil, err
	}

	card, err := o.sched.RecordReview(ctx, cardID, rating)
	if err != nil {
		return nil, err
	}

	return &AttemptResult{Card: card, NextReview: card.DueAt}, nil
}

// EndSession persists the session as completed and clears it.
// No-op without an active session.
func (o *Orchestrator) EndSession(ctx context.Context) {
	o.mu.Lock()
	active := o.active
	o.active = nil
	o.mu.Unlock()

	if active == nil {
		return
	}

	// A failed write must not resurrect the session.
	_ = o.store.UpdateSession(ctx, storage.Session{
		ID:        active.ID,
		EndedAt:   o.now(),
		Completed: true,
	})
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Active returns a copy of the live session, or nil.
func (o *Orchestrator) Active() *ActiveSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return nil
	}
	snapshot := *o.active
	return &snapshot
}

// IsActive reports whether a session is live.
func (o *Orchestrator) IsActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active != nil
}

// GaveUp reports whether the live session was given up.
func (o *Orchestrator) GaveUp() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active != nil && o.active.GaveUp
}

func (o *Orchestrator) problemForSlot(slot Slot) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.problemForSlotLocked(slot)
}

func (o *Orchestrator) problemForSlotLocked(slot Slot) string {
	if o.active == nil {
		return ""
	}
	if slot == SlotReview {
		return o.active.ReviewProblemID
	}
	return o.active.NewProblemID
}
