// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists practice data for drillrun.
//
// Two stores live here. Store is the SQLite practice database holding the
// problem catalog, spaced-repetition cards, sessions, and rated attempts.
// TranscriptStore keeps chat transcripts as one JSON file per session.
//
// # Key Types
//
//   - Store: SQLite database (problems, cards, sessions, attempts)
//   - TranscriptStore: JSON transcript files under ~/.drillrun/transcripts
//   - Card: scheduling state consumed and updated by the scheduler package
//
// # Usage
//
//	cfg, _ := storage.DefaultConfig()
//	store, err := storage.New(cfg)
//	defer store.Close()
//
//	card, err := store.GetOrCreateCard(ctx, "two-sum", "new")
//	due, err := store.GetDueCards(ctx, 1)
//
// # Storage Location
//
// The database lives at ~/.drillrun/drillrun.db; transcripts are stored in
// ~/.drillrun/transcripts/ as JSON files.
package storage
