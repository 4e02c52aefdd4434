// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the drillrun TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
)

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// ErrorDisplay is a styled error message component.
type ErrorDisplay struct {
	title       string
	message     string
	suggestions []string

	visible bool
	width   int
}

// NewError creates an error display with title and message.
func NewError(title, message string) ErrorDisplay {
	return ErrorDisplay{
		title:   title,
		message: message,
		visible: true,
		width:   60,
	}
}

// NewErrorWithSuggestions creates an error with helpful suggestions.
func NewErrorWithSuggestions(title, message string, suggestions []string) ErrorDisplay {
	e := NewError(title, message)
	e.suggestions = suggestions
	return e
}

// SetWidth sets the display width.
func (e *ErrorDisplay) SetWidth(width int) {
	e.width = width
}

// Dismiss hides the error.
func (e *ErrorDisplay) Dismiss() {
	e.visible = false
}

// IsVisible reports whether the error should be rendered.
func (e *ErrorDisplay) IsVisible() bool {
	return e.visible
}

// View renders the error box.
func (e ErrorDisplay) View() string {
	if !e.visible {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Rose)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	var lines []string
	lines = append(lines, titleStyle.Render(styles.StatusIndicators.Error+" "+e.title))
	if e.message != "" {
		lines = append(lines, messageStyle.Render(e.message))
	}

	if len(e.suggestions) > 0 {
		tipStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
		lines = append(lines, "")
		for _, s := range e.suggestions {
			lines = append(lines, tipStyle.Render("- "+s))
		}
	}

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Rose).
		Padding(0, 2).
		Width(e.width)

	return boxStyle.Render(strings.Join(lines, "\n"))
}
