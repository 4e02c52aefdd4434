// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"

	"github.com/jeranaias/drillrun-tui/internal/model"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// CONVERSION
// =============================================================================

// TranscriptFromConversation converts an in-memory conversation to the
// persisted transcript shape so the exporters can render it directly.
func TranscriptFromConversation(conv *model.Conversation) *storage.Transcript {
	tr := &storage.Transcript{
		ID:        conv.ID,
		Summary:   conv.GetTitle(),
		Model:     conv.Model,
		Mode:      conv.Mode,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	for _, msg := range conv.Messages {
		if msg.IsStreaming {
			// An open stream has no final content yet.
			continue
		}
		tm := storage.TranscriptMessage{
			ID:          msg.ID,
			Role:        string(msg.Role),
			Content:     msg.Content,
			Timestamp:   msg.Timestamp,
			Interrupted: msg.Interrupted,
			TokenCount:  msg.TokenCount,
			DurationMs:  msg.TotalDuration.Milliseconds(),
		}
		tr.Messages = append(tr.Messages, tm)
	}

	return tr
}

// ExportConversation converts a conversation and exports it in the given
// format, returning the output path.
func ExportConversation(conv *model.Conversation, format string, opts *Options) (string, error) {
	if conv == nil {
		return "", fmt.Errorf("conversation is nil")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	exporter, err := ForFormat(format, opts)
	if err != nil {
		return "", err
	}

	return ExportToFile(TranscriptFromConversation(conv), exporter, opts)
}
