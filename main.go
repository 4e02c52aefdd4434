// drillrun TUI - timed coding-interview practice in your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/drillrun-tui/internal/cli"
	"github.com/jeranaias/drillrun-tui/internal/cloud"
	"github.com/jeranaias/drillrun-tui/internal/commands"
	"github.com/jeranaias/drillrun-tui/internal/config"
	"github.com/jeranaias/drillrun-tui/internal/controller"
	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/ollama"
	"github.com/jeranaias/drillrun-tui/internal/prompt"
	"github.com/jeranaias/drillrun-tui/internal/provider"
	"github.com/jeranaias/drillrun-tui/internal/router"
	"github.com/jeranaias/drillrun-tui/internal/scheduler"
	"github.com/jeranaias/drillrun-tui/internal/session"
	"github.com/jeranaias/drillrun-tui/internal/storage"
	"github.com/jeranaias/drillrun-tui/internal/timer"
	"github.com/jeranaias/drillrun-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdStats:
		if err := cli.HandleStats(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdProblems:
		if err := cli.HandleProblems(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdDoctor:
		if err := cli.HandleDoctor(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI wires storage, providers, the session orchestrator, and the
// controller together and hands them to the chat interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: could not load config, using defaults: %v\n", err)
		}
		cfg = config.Default()
	}
	cfg.ApplyEnvOverrides()

	// CLI args override config
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
	if args.Mode != "" {
		cfg.DefaultMode = args.Mode
	}
	if args.Minutes > 0 {
		cfg.Timer.DefaultMinutes = args.Minutes
	}

	// Practice database
	storeCfg, err := storage.DefaultConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.DatabasePath != "" {
		storeCfg.DatabasePath = cfg.Storage.DatabasePath
	}
	store, err := storage.New(storeCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// Transcript archive
	var transcripts *storage.TranscriptStore
	if cfg.Storage.TranscriptDir != "" {
		transcripts, err = storage.NewTranscriptStoreWithDir(cfg.Storage.TranscriptDir)
	} else {
		transcripts, err = storage.NewTranscriptStore()
	}
	if err != nil {
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: transcripts disabled: %v\n", err)
		}
		transcripts = nil
	}

	// Providers: Ollama is always registered, cloud providers only when keys
	// are configured. The router tolerates unreachable backends.
	ollamaClient := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Local.OllamaURL,
	})
	if cfg.Local.AutoStart {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if startErr := ollamaClient.EnsureRunning(ctx); startErr != nil && !args.Quiet {
			fmt.Fprintf(os.Stderr, "Warning: could not start Ollama: %v\n", startErr)
		}
		cancel()
	}

	providers := []provider.Provider{
		ollama.NewAdapter(ollamaClient),
	}
	if cfg.Cloud.OpenAIKey != "" {
		providers = append(providers, cloud.NewOpenAIProvider(cfg.Cloud.OpenAIKey, openAICatalog))
	}
	if cfg.Cloud.AzureEndpoint != "" && cfg.Cloud.AzureKey != "" {
		deployments := make([]cloud.CatalogModel, 0, len(cfg.Cloud.AzureDeployments))
		for _, name := range cfg.Cloud.AzureDeployments {
			deployments = append(deployments, cloud.CatalogModel{ID: name, DisplayName: name})
		}
		providers = append(providers, cloud.NewAzureProvider(
			cfg.Cloud.AzureEndpoint,
			cfg.Cloud.AzureKey,
			cfg.Cloud.AzureAPIVersion,
			deployments,
		))
	}
	if cfg.Cloud.OpenRouterKey != "" {
		providers = append(providers, cloud.NewOpenRouterProvider(cfg.Cloud.OpenRouterKey))
	}

	rtr := router.New(providers...)

	// Session machinery
	sched := scheduler.NewSM2(store)
	orch := session.New(store, sched)
	countdown := timer.New()
	ctrl := controller.New(rtr, orch, countdown)

	if cfg.DefaultMode != "" {
		if md, ok := mode.Parse(cfg.DefaultMode); ok {
			ctrl.SetMode(md)
		}
	}
	if cfg.DefaultModel != "" {
		ctrl.SelectModel(cfg.DefaultModel)
	}

	// Live session facts for prompt building
	ctrl.SetPromptContext(func() prompt.Context {
		return buildPromptContext(store, orch, countdown)
	})

	m := chat.New(chat.Options{
		Config:       cfg,
		Controller:   ctrl,
		Orchestrator: orch,
		Countdown:    countdown,
		Router:       rtr,
		Store:        store,
		Transcripts:  transcripts,
		Version:      Version,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Re-layer what can change live when config.toml is edited
	if watcher := startConfigWatcher(p, ctrl, rtr); watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildPromptContext snapshots the active session, problem, and timer for
// the system prompt.
func buildPromptContext(store *storage.Store, orch *session.Orchestrator, countdown *timer.Countdown) prompt.Context {
	var pc prompt.Context

	active := orch.Active()
	if active == nil {
		return pc
	}
	pc.HintsUsed = active.HintsUsed

	problemID := active.NewProblemID
	if active.CurrentSlot == session.SlotReview && active.ReviewProblemID != "" {
		problemID = active.ReviewProblemID
	}
	if problemID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if problem, err := store.GetProblem(ctx, problemID); err == nil {
			pc.ProblemTitle = problem.Title
			pc.Difficulty = problem.Difficulty
			pc.Topic = problem.Topic
		}
	}

	snap := countdown.GetSnapshot()
	if snap.IsRunning || snap.IsPaused {
		pc.TimerRunning = snap.IsRunning
		pc.RemainingMin = int(snap.Remaining.Round(time.Minute) / time.Minute)
	}

	return pc
}

// startConfigWatcher watches the config file and applies the settings that
// can change while the program runs: the default persona and the default
// model. Provider credentials and storage paths need a restart, which the
// in-TUI notice says. A watcher failure is not fatal.
func startConfigWatcher(p *tea.Program, ctrl *controller.Controller, rtr *router.Router) *config.Watcher {
	path, err := config.ConfigPath()
	if err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path, 250*time.Millisecond, func(updated *config.Config) {
		updated.ApplyEnvOverrides()
		if md, ok := mode.Parse(updated.DefaultMode); ok {
			ctrl.SetMode(md)
		}
		if updated.DefaultModel != "" && rtr.HasModel(updated.DefaultModel) {
			ctrl.SelectModel(updated.DefaultModel)
		}
		p.Send(commands.SystemMessageMsg{
			Content: "Config reloaded. Persona and model defaults applied; provider or storage changes need a restart.",
		})
	})
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

// openAICatalog pins the OpenAI models drillrun offers. The OpenAI models
// endpoint does not report context windows or pricing, so the catalog is
// static.
var openAICatalog = []cloud.CatalogModel{
	{ID: "gpt-4o", DisplayName: "GPT-4o", ContextWindow: 128000, CostPerKInput: 0.0025, CostPerKOutput: 0.01},
	{ID: "gpt-4o-mini", DisplayName: "GPT-4o mini", ContextWindow: 128000, CostPerKInput: 0.00015, CostPerKOutput: 0.0006},
	{ID: "o3-mini", DisplayName: "o3-mini", ContextWindow: 200000, CostPerKInput: 0.0011, CostPerKOutput: 0.0044},
}
