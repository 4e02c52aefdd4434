// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat interface for the drillrun TUI.
//
// This file contains the rendering logic: the main layout (renderChat),
// the header, the input area with its persona badge, and the completion
// popup placement. Message rendering itself lives in ui/components.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the full interface.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.state == StateWelcome {
		return m.welcome.View()
	}

	return m.renderChat()
}

// chromeHeight is the number of lines the fixed components occupy:
// header (1) + input area (3) + status bar (1).
//
// COUPLING WARNING: resize() in model.go sizes the viewport from this
// value. renderChat() measures actual heights with lipgloss.Height and
// forces the viewport into the remaining space when they disagree, but
// any new fixed component still needs to be counted here.
func (m *Model) chromeHeight() int {
	return 5
}

// renderChat stacks header, transcript viewport, completion popup, input,
// and status bar. Total height must equal m.height exactly.
func (m *Model) renderChat() string {
	header := m.renderHeader()
	input := m.renderInput()
	status := m.statusBar.View()

	var popup string
	if m.completion.HasCompletions() {
		popup = m.completion.View()
	}

	headerHeight := lipgloss.Height(header)
	inputHeight := lipgloss.Height(input)
	statusHeight := lipgloss.Height(status)
	popupHeight := 0
	if popup != "" {
		popupHeight = lipgloss.Height(popup)
	}

	availableHeight := m.height - headerHeight - inputHeight - statusHeight - popupHeight
	if availableHeight < 1 {
		availableHeight = 1
	}

	messages := m.viewport.View()

	// The viewport was sized in resize() without knowledge of the popup.
	// Force the rendered height into the remaining space so the layout
	// never overflows the terminal.
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	if popup != "" {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			messages,
			popup,
			input,
			status,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the one-line title bar: app name, active problem,
// and a state indicator.
func (m *Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Purple).
		Render("drillrun")

	var problemInfo string
	if m.currentProblem != nil {
		problemInfo = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" | " + m.currentProblem.Title)
	}

	var statusIcon string
	switch m.state {
	case StateStreaming:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" " + m.spin.View())
	case StateError:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Render(" " + styles.StatusIndicators.Error)
	default:
		statusIcon = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Render(" " + styles.StatusIndicators.Success)
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Width(width).
		Padding(0, 1).
		Render(title + problemInfo + statusIcon)
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderInput renders the three-line input area: a top border with the
// persona badge woven in, the text input line, and the character count.
// Fixed height of 3 prevents layout shift while typing.
func (m *Model) renderInput() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	borderColor := styles.FocusRing
	if m.state == StateStreaming {
		borderColor = styles.FocusRingDim
	}

	// Top border: ---[ TEACH* ]-------------------
	borderChar := "─"
	badge := m.renderPersonaBadge()
	var topBorder string
	if badge != "" {
		labelWidth := lipgloss.Width(badge)
		leftWidth := 3
		rightWidth := width - leftWidth - labelWidth
		if rightWidth < 0 {
			rightWidth = 0
		}
		line := lipgloss.NewStyle().Foreground(borderColor)
		topBorder = line.Render(strings.Repeat(borderChar, leftWidth)) +
			badge +
			line.Render(strings.Repeat(borderChar, rightWidth))
	} else {
		topBorder = lipgloss.NewStyle().
			Foreground(borderColor).
			Render(strings.Repeat(borderChar, width))
	}

	inputView := m.input.View()

	var statusIndicator string
	if m.state == StateStreaming {
		statusIndicator = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(" (streaming... Ctrl+C to stop)")
	}

	inputLineWidth := width - 2
	if inputLineWidth < 10 {
		inputLineWidth = 10
	}
	inputLine := lipgloss.NewStyle().
		Width(inputLineWidth).
		MaxHeight(1).
		Render(" " + inputView + statusIndicator)

	charCount := m.renderCharCount()

	result := lipgloss.JoinVertical(
		lipgloss.Left,
		topBorder,
		inputLine,
		charCount,
	)

	return lipgloss.NewStyle().
		Height(3).
		MaxHeight(3).
		Width(width).
		Render(result)
}

// renderPersonaBadge renders the effective persona in the input border,
// with a "*" when a session rule overrides the selected one.
func (m *Model) renderPersonaBadge() string {
	if m.ctrl == nil {
		return ""
	}

	selected := m.ctrl.SelectedMode()
	effective := m.ctrl.EffectiveMode()

	label := " " + strings.ToUpper(string(effective))
	if effective != selected {
		label += "*"
	}
	label += " "

	return m.theme.ModeStyle(string(effective)).
		Bold(true).
		Render(label)
}

// renderCharCount renders the right-aligned character count line.
func (m *Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	max := m.input.CharLimit
	if max <= 0 {
		max = 1
	}

	var style lipgloss.Style
	percent := float64(count) / float64(max) * 100
	switch {
	case percent >= 90:
		style = lipgloss.NewStyle().Foreground(styles.Rose)
	case percent >= 75:
		style = lipgloss.NewStyle().Foreground(styles.Amber)
	default:
		style = lipgloss.NewStyle().Foreground(styles.TextMuted)
	}

	countStr := strconv.Itoa(count) + " / " + strconv.Itoa(max)

	charCountWidth := m.width - 4
	if charCountWidth < 10 {
		charCountWidth = 10
	}

	return lipgloss.NewStyle().
		Width(charCountWidth).
		Align(lipgloss.Right).
		Padding(0, 2).
		Render(style.Render(countStr))
}
