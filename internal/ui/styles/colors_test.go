// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestAccentColorsDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"Purple", Purple},
		{"Cyan", Cyan},
		{"Emerald", Emerald},
		{"Rose", Rose},
		{"Amber", Amber},
	}

	for _, c := range colors {
		if c.color.Light == "" || c.color.Dark == "" {
			t.Errorf("%s should define both light and dark variants", c.name)
		}
	}
}

func TestTimerPhaseColorsDistinct(t *testing.T) {
	if TimerGreen.Dark == TimerYellow.Dark || TimerYellow.Dark == TimerRed.Dark {
		t.Error("Timer phase colors must be distinguishable")
	}
	if TimerGreen.Light == TimerRed.Light {
		t.Error("Timer green and red must differ in light mode")
	}
}

func TestSurfaceColorsDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.AdaptiveColor
	}{
		{"Surface", Surface},
		{"SurfaceDim", SurfaceDim},
		{"Overlay", Overlay},
		{"OverlayDim", OverlayDim},
	}

	for _, c := range colors {
		if !strings.HasPrefix(c.color.Light, "#") || !strings.HasPrefix(c.color.Dark, "#") {
			t.Errorf("%s should use hex color values", c.name)
		}
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestStatusIndicatorsASCII(t *testing.T) {
	indicators := []struct {
		name  string
		value string
	}{
		{"Success", StatusIndicators.Success},
		{"Error", StatusIndicators.Error},
		{"Warning", StatusIndicators.Warning},
		{"Info", StatusIndicators.Info},
		{"Active", StatusIndicators.Active},
	}

	for _, ind := range indicators {
		if ind.value == "" {
			t.Errorf("%s indicator should be defined", ind.name)
		}
		for _, r := range ind.value {
			if r > 127 {
				t.Errorf("%s indicator %q contains non-ASCII character", ind.name, ind.value)
			}
		}
	}
}

// =============================================================================
// RENDER HELPER TESTS
// =============================================================================

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	tests := []struct {
		name      string
		render    func(string) string
		indicator string
	}{
		{"RenderSuccess", RenderSuccess, StatusIndicators.Success},
		{"RenderError", RenderError, StatusIndicators.Error},
		{"RenderWarning", RenderWarning, StatusIndicators.Warning},
		{"RenderInfo", RenderInfo, StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("operation complete")
			if !strings.Contains(out, tt.indicator) {
				t.Errorf("%s output %q should contain indicator %q", tt.name, out, tt.indicator)
			}
			if !strings.Contains(out, "operation complete") {
				t.Errorf("%s output should contain the message", tt.name)
			}
		})
	}
}
