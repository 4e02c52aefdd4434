// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/drillrun-tui/internal/model"
	"github.com/jeranaias/drillrun-tui/internal/ui/styles"
)

func TestMessageBubbleUser(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewMessage(model.RoleUser, "can I use a hash map here?")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	view := bubble.View()
	if !strings.Contains(view, "hash map") {
		t.Error("user bubble should contain the message content")
	}
	if !strings.Contains(view, "you") {
		t.Error("user bubble should carry the role label")
	}
}

func TestMessageBubbleAssistant(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewMessage(model.RoleAssistant, "What is the time complexity of that approach?")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	view := bubble.View()
	if !strings.Contains(view, "time complexity") {
		t.Error("assistant bubble should contain the message content")
	}
	if !strings.Contains(view, "interviewer") {
		t.Error("assistant bubble should carry the interviewer label")
	}
}

func TestMessageBubbleInterruptedMarker(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage()
	msg.AppendToken("partial answ")
	msg.Interrupt()

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	view := bubble.View()
	if !strings.Contains(view, "(interrupted)") {
		t.Error("interrupted message should show the marker")
	}
	if !strings.Contains(view, "partial answ") {
		t.Error("interrupted message should keep the partial content")
	}
}

func TestMessageBubbleSystemNotice(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewMessage(model.RoleSystem, "5 minutes remaining")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)

	if !strings.Contains(bubble.View(), "5 minutes remaining") {
		t.Error("system notice should contain the content")
	}
}

func TestMessageBubbleNilMessage(t *testing.T) {
	theme := styles.NewTheme()
	bubble := NewMessageBubble(nil, theme)

	// Must not panic
	_ = bubble.View()
}

func TestMessageListEmpty(t *testing.T) {
	theme := styles.NewTheme()
	list := NewMessageList(theme)
	list.SetWidth(80)

	if !strings.Contains(list.View(), "/start") {
		t.Error("empty list should hint at /start")
	}
}

func TestMessageListRendersAll(t *testing.T) {
	theme := styles.NewTheme()
	list := NewMessageList(theme)
	list.SetWidth(80)
	list.SetMessages([]*model.Message{
		model.NewMessage(model.RoleUser, "first question"),
		model.NewMessage(model.RoleAssistant, "first answer"),
		model.NewMessage(model.RoleSystem, "timer started"),
	})

	view := list.View()
	for _, want := range []string{"first question", "first answer", "timer started"} {
		if !strings.Contains(view, want) {
			t.Errorf("message list should contain %q", want)
		}
	}
}

func TestMessageListMarkdownHook(t *testing.T) {
	theme := styles.NewTheme()
	list := NewMessageList(theme)
	list.SetWidth(80)
	list.RenderMarkdown = func(s string) string {
		return "RENDERED:" + s
	}
	list.SetMessages([]*model.Message{
		model.NewMessage(model.RoleAssistant, "use two pointers"),
	})

	if !strings.Contains(list.View(), "RENDERED:use two pointers") {
		t.Error("finalized assistant messages should pass through the markdown hook")
	}
}

func TestWordWrap(t *testing.T) {
	wrapped := wordWrap("one two three four five", 9)
	for _, line := range strings.Split(wrapped, "\n") {
		if len([]rune(line)) > 9 {
			t.Errorf("line %q exceeds wrap width", line)
		}
	}

	if wordWrap("short", 20) != "short" {
		t.Error("short text should be unchanged")
	}
	if wordWrap("anything", 0) != "anything" {
		t.Error("zero width should disable wrapping")
	}
}
