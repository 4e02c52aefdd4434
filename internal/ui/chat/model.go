// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/drillrun-tui/internal/commands"
	"github.com/jeranaias/drillrun-tui/internal/config"
	"github.com/jeranaias/drillrun-tui/internal/controller"
	"github.com/jeranaias/drillrun-tui/internal/router"
	"github.com/jeranaias/drillrun-tui/internal/session"
	"github.com/jeranaias/drillrun-tui/internal/storage"
	"github.com/jeranaias/drillrun-tui/internal/timer"
	"github.com/jeranaias/drillrun-tui/internal/ui/components"
	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// State represents the current state of the chat interface
type State int

const (
	// StateWelcome shows the start screen until the first keypress
	StateWelcome State = iota
	// StateReady means the input is active and nothing is streaming
	StateReady
	// StateStreaming means a response is being received
	StateStreaming
	// StateError means the last operation failed
	StateError
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the main chat interface model.
type Model struct {
	// Core dependencies
	cfg         *config.Config
	ctrl        *controller.Controller
	orch        *session.Orchestrator
	countdown   *timer.Countdown
	rtr         *router.Router
	store       *storage.Store
	transcripts *storage.TranscriptStore

	// Command system
	registry  *commands.Registry
	parser    *commands.Parser
	completer *commands.Completer
	cmdCtx    *commands.Context

	// UI components
	theme      *styles.Theme
	keys       KeyMap
	viewport   viewport.Model
	input      textinput.Model
	spin       spinner.Model
	statusBar  *components.StatusBar
	msgList    *components.MessageList
	completion *components.CompletionPopup
	welcome    components.Welcome

	// Markdown rendering for finalized assistant messages
	mdRenderer *glamour.TermRenderer

	// Layout
	width  int
	height int

	// State
	state          State
	lastError      string
	version        string
	quitting       bool
	currentProblem *storage.Problem
}

// Options carries the wired dependencies into New.
type Options struct {
	Config       *config.Config
	Controller   *controller.Controller
	Orchestrator *session.Orchestrator
	Countdown    *timer.Countdown
	Router       *router.Router
	Store        *storage.Store
	Transcripts  *storage.TranscriptStore
	Version      string
}

// New creates the chat model with all components initialized.
func New(opts Options) *Model {
	theme := styles.NewTheme()

	// Text input
	ti := textinput.New()
	ti.Placeholder = "Type a message or /start to begin..."
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	// Viewport for the transcript
	vp := viewport.New(80, 20)

	// ASCII spinner, safe on any terminal
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    spinnerFPS,
	}
	sp.Style = theme.Spinner

	registry := commands.NewRegistry()
	parser := commands.NewParser(registry)
	completer := commands.NewCompleter(registry)

	cmdCtx := commands.NewContext(opts.Config, opts.Store, opts.Transcripts)

	msgList := components.NewMessageList(theme)
	if opts.Config != nil {
		msgList.ShowStats = opts.Config.UI.ShowStats
	}

	welcome := components.NewWelcome(theme)
	welcome.SetVersion(opts.Version)

	m := &Model{
		cfg:         opts.Config,
		ctrl:        opts.Controller,
		orch:        opts.Orchestrator,
		countdown:   opts.Countdown,
		rtr:         opts.Router,
		store:       opts.Store,
		transcripts: opts.Transcripts,
		registry:    registry,
		parser:      parser,
		completer:   completer,
		cmdCtx:      cmdCtx,
		theme:       theme,
		keys:        DefaultKeyMap(),
		viewport:    vp,
		input:       ti,
		spin:        sp,
		statusBar:   components.NewStatusBar(theme),
		msgList:     msgList,
		completion:  components.NewCompletionPopup(theme),
		welcome:     welcome,
		width:       80,
		height:      24,
		state:       StateWelcome,
		version:     opts.Version,
	}

	m.wireCompleter()
	m.initMarkdown()

	if opts.Config != nil {
		m.statusBar.ShowStats = opts.Config.UI.ShowStats
	}

	return m
}

// wireCompleter connects live data sources to tab completion.
func (m *Model) wireCompleter() {
	m.completer.ModelsFn = func() []string {
		if m.rtr == nil {
			return nil
		}
		descriptors := m.rtr.Models()
		ids := make([]string, 0, len(descriptors))
		for _, d := range descriptors {
			ids = append(ids, d.ID)
		}
		return ids
	}

	m.completer.ProblemsFn = func() []commands.ProblemInfo {
		if m.store == nil {
			return nil
		}
		problems, err := m.store.ListProblems(context.Background())
		if err != nil {
			return nil
		}
		infos := make([]commands.ProblemInfo, 0, len(problems))
		for _, p := range problems {
			infos = append(infos, commands.ProblemInfo{
				ID:         p.ID,
				Title:      p.Title,
				Difficulty: p.Difficulty,
				Topic:      p.Topic,
			})
		}
		return infos
	}

	m.completer.TranscriptsFn = func() []commands.TranscriptInfo {
		if m.transcripts == nil {
			return nil
		}
		metas, err := m.transcripts.List()
		if err != nil {
			return nil
		}
		infos := make([]commands.TranscriptInfo, 0, len(metas))
		for _, t := range metas {
			infos = append(infos, commands.TranscriptInfo{
				ID:       t.ID,
				Summary:  t.Summary,
				Problem:  t.Problem,
				MsgCount: t.MessageCount,
			})
		}
		return infos
	}
}

// initMarkdown sets up the glamour renderer for assistant messages.
func (m *Model) initMarkdown() {
	styleOpt := glamour.WithAutoStyle()
	if m.cfg != nil {
		switch m.cfg.UI.Theme {
		case "dark":
			styleOpt = glamour.WithStandardStyle("dark")
		case "light":
			styleOpt = glamour.WithStandardStyle("light")
		}
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(m.contentWidth()),
	)
	if err != nil {
		// Fall back to raw text rendering
		m.mdRenderer = nil
		m.msgList.RenderMarkdown = nil
		return
	}

	m.mdRenderer = renderer
	m.msgList.RenderMarkdown = func(s string) string {
		out, rerr := renderer.Render(s)
		if rerr != nil {
			return s
		}
		return trimRenderedMarkdown(out)
	}
}

// contentWidth returns the usable width for message content.
func (m *Model) contentWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

// Init starts the background commands the interface needs from the first
// frame: cursor blink, the controller event pump, and the heartbeat ticker.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.waitForEvent(),
	}

	if m.heartbeatEnabled() {
		cmds = append(cmds, heartbeatTickCmd())
	}

	if m.rtr != nil {
		cmds = append(cmds, m.initRouterCmd())
	}

	return tea.Batch(cmds...)
}

// heartbeatEnabled reports whether the idle nudge is configured on.
func (m *Model) heartbeatEnabled() bool {
	return m.cfg != nil && m.cfg.Heartbeat.Enabled
}

// SetVersion updates the displayed version string.
func (m *Model) SetVersion(v string) {
	m.version = v
	m.welcome.SetVersion(v)
}

// refreshTranscript re-renders the conversation into the viewport and
// keeps the view pinned to the bottom while following a stream.
func (m *Model) refreshTranscript() {
	if m.ctrl == nil {
		return
	}

	conv := m.ctrl.Snapshot()
	messages := conv.GetHistory()

	m.msgList.SetWidth(m.contentWidth())
	m.msgList.SetMessages(messages)
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.msgList.View())
	if atBottom || m.state == StateStreaming {
		m.viewport.GotoBottom()
	}

	// Context usage in the status bar tracks the live history
	m.statusBar.SetTokenUsage(conv.EstimateTokens(), conv.MaxTokens)
}

// syncStatusBar pushes current mode, model, timer, and problem state into
// the status bar.
func (m *Model) syncStatusBar() {
	if m.ctrl != nil {
		selected := m.ctrl.SelectedMode()
		effective := m.ctrl.EffectiveMode()
		m.statusBar.SetMode(string(effective), effective != selected)
		m.statusBar.SetModel(m.ctrl.SelectedModel())
	}

	if m.countdown != nil {
		m.statusBar.SetTimer(m.countdown.GetSnapshot())
	}

	if m.currentProblem != nil {
		m.statusBar.SetProblem(m.currentProblem.Title)
	} else {
		m.statusBar.SetProblem("")
	}

	switch m.state {
	case StateStreaming:
		m.statusBar.SetStatus(components.StatusStreaming)
	case StateError:
		m.statusBar.SetStatus(components.StatusError)
	default:
		m.statusBar.SetStatus(components.StatusReady)
	}
}

// resize propagates a new terminal size to every component.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.welcome.SetSize(width, height)
	m.statusBar.SetWidth(width)
	m.completion.SetWidth(minIntChat(width-4, 60))

	m.input.Width = width - 6

	// Viewport takes what the header, input, and status bar leave over
	chromeHeight := m.chromeHeight()
	vpHeight := height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	m.initMarkdown()
	m.refreshTranscript()
}

func minIntChat(a, b int) int {
	if a < b {
		return a
	}
	return b
}
