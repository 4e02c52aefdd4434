// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("record not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// ROW TYPES
// =============================================================================

// Problem is one catalog entry.
type Problem struct {
	ID         string
	Title      string
	Difficulty string // easy, medium, hard
	Topic      string
	URL        string
}

// Card is the spaced-repetition scheduling state for one (problem, type)
// pair. Scheduling math lives in the scheduler package; storage only holds
// the fields.
type Card struct {
	ID           string
	ProblemID    string
	CardType     string // new, review
	IntervalDays float64
	Ease         float64
	Repetitions  int
	DueAt        time.Time
	LastRating   int
	UpdatedAt    time.Time
}

// Session is one practice session row.
type Session struct {
	ID              string
	NewProblemID    string
	ReviewProblemID string
	StartedAt       time.Time
	EndedAt         time.Time
	Completed       bool
}

// Attempt is one rated attempt row.
type Attempt struct {
	ID           string
	SessionID    string
	ProblemID    string
	CardID       string
	Rating       int
	TimeSpentMs  int64
	TimerLimitMs int64
	HintsUsed    int
	GaveUp       bool
	UserCode     string
	CreatedAt    time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Config holds store configuration
type Config struct {
	// DatabasePath is where to store the SQLite database
	DatabasePath string
}

// DefaultConfig returns the default configuration, with the database under
// the user's drillrun directory.
func DefaultConfig() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DatabasePath: filepath.Join(homeDir, ".drillrun", "drillrun.db"),
	}, nil
}

// Store is the SQLite-backed practice database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the practice database and applies the schema.
func New(config *Config) (*Store, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed problems: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// initSchema creates the database schema
func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// seed inserts the starter problem catalog on first run only.
func (s *Store) seed() error {
	var seeded string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = 'seeded'").Scan(&seeded)
	if err != nil {
		return err
	}
	if seeded == "1" {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range seedProblems {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO problems (id, title, difficulty, topic, url)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, p.Title, p.Difficulty, p.Topic, p.URL)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec("UPDATE metadata SET value = '1' WHERE key = 'seeded'"); err != nil {
		return err
	}

	return tx.Commit()
}

// =============================================================================
// PROBLEMS
// =============================================================================

// GetProblem fetches one problem by id.
func (s *Store) GetProblem(ctx context.Context, id string) (Problem, error) {
	var p Problem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, difficulty, topic, COALESCE(url, '')
		FROM problems WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.Difficulty, &p.Topic, &p.URL)
	if err == sql.ErrNoRows {
		return Problem{}, ErrNotFound
	}
	if err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return p, nil
}

// ListProblems returns the full catalog ordered by difficulty then title.
func (s *Store) ListProblems(ctx context.Context) ([]Problem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, difficulty, topic, COALESCE(url, '')
		FROM problems
		ORDER BY CASE difficulty
			WHEN 'easy' THEN 0 WHEN 'medium' THEN 1 ELSE 2
		END, title
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.ID, &p.Title, &p.Difficulty, &p.Topic, &p.URL); err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

// InsertProblem adds a problem to the catalog.
func (s *Store) InsertProblem(ctx context.Context, p Problem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO problems (id, title, difficulty, topic, url)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Difficulty, p.Topic, p.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// CARDS
// =============================================================================

const cardColumns = `id, problem_id, card_type, interval_days, ease,
	repetitions, due_at, COALESCE(last_rating, 0), updated_at`

func scanCard(row interface{ Scan(...any) error }) (Card, error) {
	var c Card
	var dueAt, updatedAt int64
	err := row.Scan(&c.ID, &c.ProblemID, &c.CardType, &c.IntervalDays,
		&c.Ease, &c.Repetitions, &dueAt, &c.LastRating, &updatedAt)
	if err != nil {
		return Card{}, err
	}
	c.DueAt = time.Unix(dueAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return c, nil
}

// GetCard fetches one card by id.
func (s *Store) GetCard(ctx context.Context, id string) (Card, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id = ?", id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return Card{}, ErrNotFound
	}
	if err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return c, nil
}

// GetOrCreateCard returns the card for (problemID, cardType), creating a
// fresh one due immediately if none exists yet.
func (s *Store) GetOrCreateCard(ctx context.Context, problemID, cardType string) (Card, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE problem_id = ? AND card_type = ?",
		problemID, cardType)
	c, err := scanCard(row)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return Card{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	now := time.Now()
	c = Card{
		ID:        uuid.NewString(),
		ProblemID: problemID,
		CardType:  cardType,
		Ease:      2.5,
		DueAt:     now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cards (id, problem_id, card_type, interval_days, ease,
			repetitions, due_at, last_rating, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?)
	`, c.ID, c.ProblemID, c.CardType, c.IntervalDays, c.Ease,
		c.Repetitions, c.DueAt.Unix(), c.UpdatedAt.Unix())
	if err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return c, nil
}

// UpdateCard writes back scheduling state for an existing card.
func (s *Store) UpdateCard(ctx context.Context, c Card) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET interval_days = ?, ease = ?, repetitions = ?, due_at = ?,
			last_rating = ?, updated_at = ?
		WHERE id = ?
	`, c.IntervalDays, c.Ease, c.Repetitions, c.DueAt.Unix(),
		c.LastRating, c.UpdatedAt.Unix(), c.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDueCards returns up to limit cards due now or earlier, oldest due first.
func (s *Store) GetDueCards(ctx context.Context, limit int) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE due_at <= ?
		ORDER BY due_at ASC
		LIMIT ?
	`, time.Now().Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// =============================================================================
// SESSIONS
// =============================================================================

// InsertSession persists a new session row and returns its id.
func (s *Store) InsertSession(ctx context.Context, sess Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, new_problem_id, review_problem_id, started_at, ended_at, completed)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?, NULL, 0)
	`, sess.ID, sess.NewProblemID, sess.ReviewProblemID, sess.StartedAt.Unix())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return sess.ID, nil
}

// UpdateSession writes back the end state of a session.
func (s *Store) UpdateSession(ctx context.Context, sess Session) error {
	var endedAt any
	if !sess.EndedAt.IsZero() {
		endedAt = sess.EndedAt.Unix()
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = ?, completed = ? WHERE id = ?
	`, endedAt, sess.Completed, sess.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// ATTEMPTS
// =============================================================================

// InsertAttempt persists one rated attempt.
func (s *Store) InsertAttempt(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts (id, session_id, problem_id, card_id, rating,
			time_spent_ms, timer_limit_ms, hints_used, gave_up, user_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
	`, a.ID, a.SessionID, a.ProblemID, a.CardID, a.Rating,
		a.TimeSpentMs, a.TimerLimitMs, a.HintsUsed, a.GaveUp, a.UserCode,
		a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// AttemptsForSession returns a session's attempts in insertion order.
func (s *Store) AttemptsForSession(ctx context.Context, sessionID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, problem_id, card_id, rating, time_spent_ms,
			timer_limit_ms, hints_used, gave_up, COALESCE(user_code, ''), created_at
		FROM attempts
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var createdAt int64
		err := rows.Scan(&a.ID, &a.SessionID, &a.ProblemID, &a.CardID,
			&a.Rating, &a.TimeSpentMs, &a.TimerLimitMs, &a.HintsUsed,
			&a.GaveUp, &a.UserCode, &createdAt)
		if err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats summarizes the practice database.
type Stats struct {
	ProblemCount int
	CardCount    int
	DueCount     int
	AttemptCount int
	SessionCount int
}

// GetStats returns current practice statistics.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM problems", &stats.ProblemCount},
		{"SELECT COUNT(*) FROM cards", &stats.CardCount},
		{"SELECT COUNT(*) FROM attempts", &stats.AttemptCount},
		{"SELECT COUNT(*) FROM sessions", &stats.SessionCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cards WHERE due_at <= ?", time.Now().Unix(),
	).Scan(&stats.DueCount)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return stats, nil
}
