// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// fakeCardStore holds cards in memory.
type fakeCardStore struct {
	cards   map[string]storage.Card
	updates int
}

func newFakeCardStore(cards ...storage.Card) *fakeCardStore {
	s := &fakeCardStore{cards: make(map[string]storage.Card)}
	for _, c := range cards {
		s.cards[c.ID] = c
	}
	return s
}

func (s *fakeCardStore) GetCard(ctx context.Context, id string) (storage.Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return storage.Card{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *fakeCardStore) UpdateCard(ctx context.Context, card storage.Card) error {
	if _, ok := s.cards[card.ID]; !ok {
		return storage.ErrNotFound
	}
	s.cards[card.ID] = card
	s.updates++
	return nil
}

func freshCard() storage.Card {
	return storage.Card{ID: "c1", ProblemID: "two-sum", CardType: "new", Ease: 2.5}
}

func testScheduler(cards ...storage.Card) (*SM2, *fakeCardStore, time.Time) {
	store := newFakeCardStore(cards...)
	s := NewSM2(store)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, store, now
}

// =============================================================================
// RATING TESTS
// =============================================================================

func TestRecordReviewRejectsInvalidRating(t *testing.T) {
	s, store, _ := testScheduler(freshCard())

	for _, r := range []Rating{0, 5, -1} {
		_, err := s.RecordReview(context.Background(), "c1", r)
		assert.ErrorIs(t, err, ErrInvalidRating, "rating=%d", r)
	}
	assert.Zero(t, store.updates)
}

func TestRecordReviewUnknownCard(t *testing.T) {
	s, _, _ := testScheduler()

	_, err := s.RecordReview(context.Background(), "ghost", RatingGood)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAgainResetsCard(t *testing.T) {
	card := freshCard()
	card.IntervalDays = 6
	card.Repetitions = 3
	s, store, now := testScheduler(card)

	got, err := s.RecordReview(context.Background(), "c1", RatingAgain)
	require.NoError(t, err)

	assert.Zero(t, got.Repetitions)
	assert.Zero(t, got.IntervalDays)
	assert.InDelta(t, 2.3, got.Ease, 0.001)
	assert.Equal(t, now.Add(againDelay), got.DueAt)
	assert.Equal(t, 1, got.LastRating)
	assert.Equal(t, 1, store.updates)
}

func TestGoodLadder(t *testing.T) {
	s, _, now := testScheduler(freshCard())
	ctx := context.Background()

	// First Good: 1 day.
	got, err := s.RecordReview(ctx, "c1", RatingGood)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.IntervalDays)
	assert.Equal(t, now.Add(24*time.Hour), got.DueAt)

	// Second Good: 3 days.
	got, err = s.RecordReview(ctx, "c1", RatingGood)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.IntervalDays)

	// Third Good: interval * ease.
	got, err = s.RecordReview(ctx, "c1", RatingGood)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, got.IntervalDays, 0.001)
	assert.Equal(t, 3, got.Repetitions)
	assert.Equal(t, 2.5, got.Ease)
}

func TestHardGrowsSlowlyAndLowersEase(t *testing.T) {
	card := freshCard()
	card.IntervalDays = 10
	s, _, _ := testScheduler(card)

	got, err := s.RecordReview(context.Background(), "c1", RatingHard)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.IntervalDays)
	assert.InDelta(t, 2.35, got.Ease, 0.001)
}

func TestEasyBoostsEaseAndInterval(t *testing.T) {
	card := freshCard()
	card.IntervalDays = 4
	s, _, _ := testScheduler(card)

	got, err := s.RecordReview(context.Background(), "c1", RatingEasy)
	require.NoError(t, err)
	assert.InDelta(t, 2.65, got.Ease, 0.001)
	// 4 * 2.65 * 1.3 rounded to one decimal.
	assert.InDelta(t, 13.8, got.IntervalDays, 0.001)
	assert.Equal(t, 4, got.LastRating)
}

func TestEaseClampedAtFloor(t *testing.T) {
	card := freshCard()
	card.Ease = 1.35
	s, _, _ := testScheduler(card)
	ctx := context.Background()

	got, err := s.RecordReview(ctx, "c1", RatingAgain)
	require.NoError(t, err)
	assert.Equal(t, minEase, got.Ease)

	got, err = s.RecordReview(ctx, "c1", RatingAgain)
	require.NoError(t, err)
	assert.Equal(t, minEase, got.Ease)
}

func TestEaseClampedAtCeiling(t *testing.T) {
	card := freshCard()
	card.Ease = 2.75
	s, _, _ := testScheduler(card)

	got, err := s.RecordReview(context.Background(), "c1", RatingEasy)
	require.NoError(t, err)
	assert.Equal(t, maxEase, got.Ease)
}
