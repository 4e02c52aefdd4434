// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the drillrun TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/drillrun-tui/internal/timer"
	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
	"github.com/jeranaias/drillrun-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusThinking
	StatusError
	StatusIdle
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusThinking:
		return styles.StatusIndicators.Active
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar represents the bottom status bar
type StatusBar struct {
	ModelName      string // Current model
	Mode           string // Active persona: interview/coach/teach
	ModeOverridden bool   // True when the session forced a different persona
	ProblemTitle   string // Current practice problem, empty outside a session
	TokenCount     int    // Tokens used in current context
	MaxTokens      int    // Maximum context tokens
	Status         Status // Current status
	Width          int    // Available width
	ShowShortcuts  bool   // Show keyboard shortcuts
	ShowStats      bool   // Show context token usage

	// Countdown state, zero value when no timer has been started
	Timer timer.Snapshot

	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		ModelName:     "",
		Mode:          "interview",
		TokenCount:    0,
		MaxTokens:     4096,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		ShowStats:     true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetTokenUsage updates the token count display
func (s *StatusBar) SetTokenUsage(used, max int) {
	s.TokenCount = used
	s.MaxTokens = max
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetModel updates the model name
func (s *StatusBar) SetModel(modelName string) {
	s.ModelName = modelName
}

// SetMode updates the persona display
func (s *StatusBar) SetMode(mode string, overridden bool) {
	s.Mode = mode
	s.ModeOverridden = overridden
}

// SetProblem updates the practice problem display
func (s *StatusBar) SetProblem(title string) {
	s.ProblemTitle = title
}

// SetTimer updates the countdown display
func (s *StatusBar) SetTimer(snap timer.Snapshot) {
	s.Timer = snap
}

// View renders the status bar
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: 12:30 | MODE | icon
func (s *StatusBar) viewNarrow() string {
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{}

	if clock := s.renderTimer(); clock != "" {
		parts = append(parts, clock)
	}

	// Mode indicator (first letter only)
	modeStyle := s.theme.ModeStyle(s.Mode)
	modeChar := strings.ToUpper(string([]rune(s.Mode))[0:1])
	parts = append(parts, modeStyle.Render(modeChar))

	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.Icon()))

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar
// Format: 12:30 PAUSED | INTERVIEW | model | Status
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	if clock := s.renderTimer(); clock != "" {
		parts = append(parts, clock)
	}

	parts = append(parts, s.renderModeBadge())

	if s.ModelName != "" {
		modelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		parts = append(parts, modelStyle.Render(util.TruncateRunes(s.ModelName, 15)))
	}

	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.String()))

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals
// Format: 12:30 | INTERVIEW | Two Sum | model | 1,234/4,096 (30.1%) | Ready | shortcuts
func (s *StatusBar) viewWide() string {
	// Left section: timer, mode, problem
	leftParts := []string{}

	if clock := s.renderTimer(); clock != "" {
		leftParts = append(leftParts, clock)
	}

	leftParts = append(leftParts, s.renderModeBadge())

	if s.ProblemTitle != "" {
		problemStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)
		leftParts = append(leftParts, problemStyle.Render(util.TruncateRunes(s.ProblemTitle, 30)))
	}

	if s.ModelName != "" {
		modelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		leftParts = append(leftParts, modelStyle.Render(s.ModelName))
	}

	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	leftSection := strings.Join(leftParts, leftSep)

	// Center section: context usage
	centerSection := ""
	if s.ShowStats {
		contextLabel := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("Ctx: ")
		centerSection = contextLabel + s.renderContextPercent()
	}

	// Right section: status and shortcuts
	rightParts := []string{}

	statusStyle := s.getStatusStyle()
	rightParts = append(rightParts, statusStyle.Render(s.Status.String()))

	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}

	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4 // Account for padding
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderTimer renders the countdown clock with its phase color.
// Returns "" when no timer has been started.
func (s *StatusBar) renderTimer() string {
	if !s.Timer.IsRunning && !s.Timer.IsPaused {
		return ""
	}

	clock := fmtClock(s.Timer.Remaining)

	if s.Timer.IsPaused {
		pausedStyle := s.theme.TimerPaused
		return pausedStyle.Render(clock + " PAUSED")
	}

	phaseStyle := s.theme.TimerStyle(string(s.Timer.Phase))
	return phaseStyle.Render(clock)
}

// renderModeBadge renders the persona badge, with an override marker when the
// session has forced a different persona than the one selected.
func (s *StatusBar) renderModeBadge() string {
	modeStyle := s.theme.ModeStyle(s.Mode)
	badge := modeStyle.Render(strings.ToUpper(s.Mode))

	if s.ModeOverridden {
		marker := s.theme.ModeOverride.Render("*")
		return badge + marker
	}
	return badge
}

// renderContextPercent renders the context percentage with token counts
func (s *StatusBar) renderContextPercent() string {
	percent := 0.0
	if s.MaxTokens > 0 {
		percent = float64(s.TokenCount) / float64(s.MaxTokens) * 100
	}

	color := styles.TextMuted
	if percent >= 90 {
		color = styles.Rose
	} else if percent >= 75 {
		color = styles.Amber
	}

	percentStyle := lipgloss.NewStyle().Foreground(color)

	// Format: 2,048/4,096 (50.0%)
	return percentStyle.Render(
		fmtNumber(s.TokenCount) + "/" + fmtNumber(s.MaxTokens) +
			" (" + fmtPercent(percent) + ")",
	)
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("Tab") + descStyle.Render("complete"),
		keyStyle.Render("^C") + descStyle.Render("stop"),
	}

	return strings.Join(shortcuts, " ")
}

// getStatusStyle returns the style for the current status
// ACCESSIBILITY: Uses bold colors for colorblind users
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	case StatusStreaming, StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	case StatusIdle:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
