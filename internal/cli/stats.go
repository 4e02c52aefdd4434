// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stats.go - Stats and problems commands for drillrun.
//
// Command: stats       Show practice statistics from the database
// Command: problems    List the seeded problem catalog
//
// Both support --json for scripting.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/drillrun-tui/internal/config"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// openStore opens the practice database at the configured (or default)
// location. The caller owns the returned store.
func openStore() (*storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	storeCfg, err := storage.DefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if cfg.Storage.DatabasePath != "" {
		storeCfg.DatabasePath = cfg.Storage.DatabasePath
	}

	return storage.New(storeCfg)
}

// HandleStats handles the "stats" command.
func HandleStats(args Args) error {
	store, err := openStore()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("stats", err).Print()
		}
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := store.GetStats(ctx)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("stats", err).Print()
		}
		return err
	}

	if args.JSON {
		data := map[string]int{
			"problems": stats.ProblemCount,
			"cards":    stats.CardCount,
			"due":      stats.DueCount,
			"attempts": stats.AttemptCount,
			"sessions": stats.SessionCount,
		}
		return NewJSONResponse("stats", data).Print()
	}

	fmt.Println("Practice statistics")
	fmt.Printf("  Problems:  %d\n", stats.ProblemCount)
	fmt.Printf("  Cards:     %d\n", stats.CardCount)
	fmt.Printf("  Due today: %d\n", stats.DueCount)
	fmt.Printf("  Attempts:  %d\n", stats.AttemptCount)
	fmt.Printf("  Sessions:  %d\n", stats.SessionCount)
	return nil
}

// HandleProblems handles the "problems" command.
func HandleProblems(args Args) error {
	store, err := openStore()
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("problems", err).Print()
		}
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problems, err := store.ListProblems(ctx)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("problems", err).Print()
		}
		return err
	}

	if args.JSON {
		type problemJSON struct {
			ID         string `json:"id"`
			Title      string `json:"title"`
			Difficulty string `json:"difficulty"`
			Topic      string `json:"topic"`
		}
		data := make([]problemJSON, 0, len(problems))
		for _, p := range problems {
			data = append(data, problemJSON{
				ID:         p.ID,
				Title:      p.Title,
				Difficulty: p.Difficulty,
				Topic:      p.Topic,
			})
		}
		return NewJSONResponse("problems", data).Print()
	}

	if len(problems) == 0 {
		fmt.Println("The problem catalog is empty.")
		return nil
	}

	fmt.Printf("%d problems:\n", len(problems))
	for _, p := range problems {
		fmt.Printf("  %-24s %-8s %s\n", p.ID, p.Difficulty, p.Title)
	}
	return nil
}
