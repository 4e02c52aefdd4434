// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists practice data for drillrun.
package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the practice database
const Schema = `
-- Metadata table for schema version and seed state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Problems table: the practice catalog
CREATE TABLE IF NOT EXISTS problems (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    difficulty TEXT NOT NULL,   -- easy, medium, hard
    topic TEXT NOT NULL,
    url TEXT
);

CREATE INDEX IF NOT EXISTS idx_problems_topic ON problems(topic);
CREATE INDEX IF NOT EXISTS idx_problems_difficulty ON problems(difficulty);

-- Cards table: spaced-repetition scheduling state, one row per
-- (problem, card_type) pair
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    problem_id TEXT NOT NULL,
    card_type TEXT NOT NULL,    -- new, review
    interval_days REAL NOT NULL DEFAULT 0,
    ease REAL NOT NULL DEFAULT 2.5,
    repetitions INTEGER NOT NULL DEFAULT 0,
    due_at INTEGER NOT NULL,    -- Unix timestamp
    last_rating INTEGER,
    updated_at INTEGER NOT NULL,
    UNIQUE(problem_id, card_type),
    FOREIGN KEY(problem_id) REFERENCES problems(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cards_due_at ON cards(due_at);
CREATE INDEX IF NOT EXISTS idx_cards_problem ON cards(problem_id);

-- Sessions table: one row per practice session
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    new_problem_id TEXT,
    review_problem_id TEXT,
    started_at INTEGER NOT NULL,
    ended_at INTEGER,
    completed INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

-- Attempts table: one row per rated attempt
CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    problem_id TEXT NOT NULL,
    card_id TEXT NOT NULL,
    rating INTEGER NOT NULL,    -- 1=again 2=hard 3=good 4=easy
    time_spent_ms INTEGER NOT NULL,
    timer_limit_ms INTEGER NOT NULL,
    hints_used INTEGER NOT NULL DEFAULT 0,
    gave_up INTEGER NOT NULL DEFAULT 0,
    user_code TEXT,
    created_at INTEGER NOT NULL,
    FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE,
    FOREIGN KEY(problem_id) REFERENCES problems(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);
CREATE INDEX IF NOT EXISTS idx_attempts_problem ON attempts(problem_id);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at);
`

// InitMetadata seeds the metadata table
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES
    ('schema_version', '1'),
    ('seeded', '0');
`

// seedProblems ships a starter catalog so a fresh install has something to
// practice before the user adds their own rows.
var seedProblems = []Problem{
	{ID: "two-sum", Title: "Two Sum", Difficulty: "easy", Topic: "arrays", URL: "https://leetcode.com/problems/two-sum/"},
	{ID: "valid-parentheses", Title: "Valid Parentheses", Difficulty: "easy", Topic: "stacks", URL: "https://leetcode.com/problems/valid-parentheses/"},
	{ID: "merge-intervals", Title: "Merge Intervals", Difficulty: "medium", Topic: "intervals", URL: "https://leetcode.com/problems/merge-intervals/"},
	{ID: "lru-cache", Title: "LRU Cache", Difficulty: "medium", Topic: "design", URL: "https://leetcode.com/problems/lru-cache/"},
	{ID: "course-schedule", Title: "Course Schedule", Difficulty: "medium", Topic: "graphs", URL: "https://leetcode.com/problems/course-schedule/"},
	{ID: "word-ladder", Title: "Word Ladder", Difficulty: "hard", Topic: "graphs", URL: "https://leetcode.com/problems/word-ladder/"},
	{ID: "median-two-sorted", Title: "Median of Two Sorted Arrays", Difficulty: "hard", Topic: "binary-search", URL: "https://leetcode.com/problems/median-of-two-sorted-arrays/"},
	{ID: "trapping-rain-water", Title: "Trapping Rain Water", Difficulty: "hard", Topic: "two-pointers", URL: "https://leetcode.com/problems/trapping-rain-water/"},
}
