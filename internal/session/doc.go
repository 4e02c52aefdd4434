// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the practice-session lifecycle.
//
// An Orchestrator holds at most one ActiveSession. Starting a session pulls
// up to one due review card from storage, persists a session row, and points
// the session at its new problem. Attempts resolve a card lazily, count
// hints, and on completion write an attempt row and forward the rating to
// the scheduler. Every operation called without a live session is a safe
// no-op.
//
// # Key Types
//
//   - Orchestrator: single-owner session state machine
//   - ActiveSession: the one live session snapshot
//   - AttemptResult: rescheduled card returned after rating an attempt
//
// # Usage
//
//	orch := session.New(store, scheduler.NewSM2(store))
//	active, err := orch.StartSession(ctx, "two-sum")
//	err = orch.BeginAttempt(ctx, session.SlotNew)
//	orch.RecordHint()
//	result, err := orch.CompleteAttempt(ctx, scheduler.RatingGood, spentMs, limitMs, "", false)
//	orch.EndSession(ctx)
package session
