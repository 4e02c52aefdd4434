// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the drillrun TUI.

This package contains a collection of styled components built on top of the
Bubble Tea and Lip Gloss libraries, consistent with the drillrun design
language.

# Components

StatusBar (statusbar.go) - Bottom status bar with the countdown clock, persona
badge, current problem, model name, context usage, and keyboard shortcuts.
The clock is colored by timer phase and shows a PAUSED marker while paused.

MessageBubble / MessageList (message.go) - Styled chat bubbles for user,
interviewer, and system messages, with streaming cursor, interrupted marker,
and generation statistics.

CompletionPopup (completion.go) - Tab completion popup for slash commands and
their arguments.

Welcome (welcome.go) - Start screen with logo, model and persona info, due
review card count, and quick start tips.

ErrorDisplay (error.go) - Error box with title, message, and suggestions.

# Usage

Components take a *styles.Theme and render via View():

	bar := components.NewStatusBar(theme)
	bar.SetWidth(120)
	bar.SetTimer(countdown.GetSnapshot())
	bar.SetMode("interview", false)
	output := bar.View()
*/
package components
