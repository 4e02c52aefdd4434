// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the drillrun TUI.
//
// # Color System
//
// All colors use lipgloss.AdaptiveColor so the palette adapts to light and
// dark terminals automatically. The palette is organized into groups:
//
//   - Accent colors: Purple (interviewer), Cyan (brand/user), Emerald (success)
//   - Semantic colors: Rose (errors), Amber (warnings)
//   - Surface colors: Surface, SurfaceDim, Overlay, OverlayDim
//   - Text colors: TextPrimary, TextSecondary, TextMuted, TextInverse
//   - Timer phases: TimerGreen, TimerYellow, TimerRed
//
// # Theme System
//
// The Theme struct holds every configured lipgloss style the UI uses. Create
// one with NewTheme, which detects the terminal color profile and dark
// background via termenv:
//
//	theme := styles.NewTheme()
//	header := theme.HeaderTitle.Render("drillrun")
//	timer := theme.TimerStyle("yellow").Render("12:30")
//
// # Status Indicators
//
// StatusIndicators provides ASCII shape markers ([OK], [X], [!], [i]) that
// accompany color so state remains readable on monochrome terminals and for
// colorblind users. The Render* helpers combine indicator and color.
package styles
