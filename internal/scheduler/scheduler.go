// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scheduler reschedules spaced-repetition cards from attempt
// ratings. The algorithm is an SM-2 variant with four ratings; callers
// depend on the Scheduler interface, not on the math.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// RATINGS
// =============================================================================

// Rating grades one attempt.
type Rating int

const (
	// RatingAgain means the attempt failed; the card resets.
	RatingAgain Rating = 1
	// RatingHard means solved with significant struggle.
	RatingHard Rating = 2
	// RatingGood means solved as expected.
	RatingGood Rating = 3
	// RatingEasy means solved without effort.
	RatingEasy Rating = 4
)

// IsValid reports whether r is inside the 1..4 contract.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// ErrInvalidRating is returned for ratings outside 1..4.
var ErrInvalidRating = errors.New("rating must be between 1 and 4")

// ParseRating maps a rating word to its Rating value.
func ParseRating(s string) (Rating, bool) {
	switch s {
	case "again":
		return RatingAgain, true
	case "hard":
		return RatingHard, true
	case "good":
		return RatingGood, true
	case "easy":
		return RatingEasy, true
	default:
		return 0, false
	}
}

// String returns the rating word.
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// =============================================================================
// SCHEDULER
// =============================================================================

// CardStore is the slice of the storage layer the scheduler needs.
type CardStore interface {
	GetCard(ctx context.Context, id string) (storage.Card, error)
	UpdateCard(ctx context.Context, card storage.Card) error
}

// Scheduler records a review outcome and returns the rescheduled card.
type Scheduler interface {
	RecordReview(ctx context.Context, cardID string, rating Rating) (storage.Card, error)
}

// Scheduling constants.
const (
	// minEase keeps a much-failed card from collapsing into daily review
	// forever.
	minEase = 1.3
	maxEase = 2.8

	// againDelay is how soon a failed card comes back.
	againDelay = 10 * time.Minute

	hardMultiplier = 1.2
	easyBonus      = 1.3
)

// SM2 is the default Scheduler implementation.
type SM2 struct {
	store CardStore
	now   func() time.Time
}

// NewSM2 creates a scheduler over the given card store.
func NewSM2(store CardStore) *SM2 {
	return &SM2{store: store, now: time.Now}
}

// RecordReview loads the card, applies the rating, and persists the result.
func (s *SM2) RecordReview(ctx context.Context, cardID string, rating Rating) (storage.Card, error) {
	if !rating.IsValid() {
		return storage.Card{}, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return storage.Card{}, err
	}

	card = reschedule(card, rating, s.now())

	if err := s.store.UpdateCard(ctx, card); err != nil {
		return storage.Card{}, err
	}
	return card, nil
}

// reschedule applies one rating to a card.
func reschedule(card storage.Card, rating Rating, now time.Time) storage.Card {
	switch rating {
	case RatingAgain:
		card.Ease -= 0.2
		card.Repetitions = 0
		card.IntervalDays = 0
		card.DueAt = now.Add(againDelay)

	case RatingHard:
		card.Ease -= 0.15
		card.Repetitions++
		if card.IntervalDays < 1 {
			card.IntervalDays = 1
		} else {
			card.IntervalDays = round1(card.IntervalDays * hardMultiplier)
		}
		card.DueAt = now.Add(days(card.IntervalDays))

	case RatingGood:
		card.Repetitions++
		switch {
		case card.IntervalDays < 1:
			card.IntervalDays = 1
		case card.IntervalDays < 3:
			card.IntervalDays = 3
		default:
			card.IntervalDays = round1(card.IntervalDays * card.Ease)
		}
		card.DueAt = now.Add(days(card.IntervalDays))

	case RatingEasy:
		card.Ease += 0.15
		card.Repetitions++
		if card.IntervalDays < 1 {
			card.IntervalDays = 2
		} else {
			card.IntervalDays = round1(card.IntervalDays * card.Ease * easyBonus)
		}
		card.DueAt = now.Add(days(card.IntervalDays))
	}

	if card.Ease < minEase {
		card.Ease = minEase
	}
	if card.Ease > maxEase {
		card.Ease = maxEase
	}

	card.LastRating = int(rating)
	card.UpdatedAt = now
	return card
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
