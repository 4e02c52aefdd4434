// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/drillrun-tui/internal/model"
	"github.com/jeranaias/drillrun-tui/internal/storage"
)

func sampleTranscript() *storage.Transcript {
	created := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return &storage.Transcript{
		ID:        "chat_abc12345",
		Summary:   "Two Sum practice",
		Problem:   "Two Sum",
		Model:     "llama3.2",
		Mode:      "interview",
		CreatedAt: created,
		UpdatedAt: created.Add(10 * time.Minute),
		Messages: []storage.TranscriptMessage{
			{
				ID:        "msg_1",
				Role:      "user",
				Content:   "How should I approach this?",
				Timestamp: created,
			},
			{
				ID:         "msg_2",
				Role:       "assistant",
				Content:    "What data structure gives O(1) lookups?\n\n```go\nseen := map[int]int{}\n```",
				Timestamp:  created.Add(time.Minute),
				TokenCount: 24,
				DurationMs: 1800,
			},
			{
				ID:          "msg_3",
				Role:        "assistant",
				Content:     "Consider what happ",
				Timestamp:   created.Add(2 * time.Minute),
				Interrupted: true,
			},
		},
	}
}

func TestMarkdownExport(t *testing.T) {
	data, err := NewMarkdownExporter(DefaultOptions()).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(data)

	assert.Contains(t, md, "title: Two Sum practice")
	assert.Contains(t, md, "problem: Two Sum")
	assert.Contains(t, md, "mode: interview")
	assert.Contains(t, md, "### [You]")
	assert.Contains(t, md, "### [Interviewer]")
	assert.Contains(t, md, "(interrupted)")
	assert.Contains(t, md, "```go")
	assert.Contains(t, md, "Tokens: 24")
}

func TestMarkdownExportRejectsEmpty(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(&storage.Transcript{CreatedAt: time.Now()})
	assert.Error(t, err)

	_, err = NewMarkdownExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestJSONExportRoundTrips(t *testing.T) {
	tr := sampleTranscript()
	data, err := NewJSONExporter(nil).Export(tr)
	require.NoError(t, err)

	var back storage.Transcript
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tr.ID, back.ID)
	require.Len(t, back.Messages, 3)
	assert.True(t, back.Messages[2].Interrupted)
}

func TestHTMLExportHighlightsCode(t *testing.T) {
	data, err := NewHTMLExporter(DefaultOptions()).Export(sampleTranscript())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "dark-theme")
	assert.Contains(t, out, "code-lang\">go</div>")
	// Chroma emits span-styled tokens rather than a bare code block.
	assert.Contains(t, out, "<span style=")
	assert.Contains(t, out, "(interrupted)")
}

func TestHTMLExportEscapesContent(t *testing.T) {
	tr := sampleTranscript()
	tr.Messages[0].Content = `<script>alert("xss")</script>`

	data, err := NewHTMLExporter(DefaultOptions()).Export(tr)
	require.NoError(t, err)
	out := string(data)

	assert.NotContains(t, out, `<script>alert`)
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestExportToFileWritesOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.OpenAfterExport = false

	path, err := ExportMarkdown(sampleTranscript(), opts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".md"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Two Sum practice")
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"markdown", "md", "json", "html"} {
		_, err := ForFormat(format, nil)
		assert.NoError(t, err, format)
	}
	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "session", sanitizeFilename(""))
	long := strings.Repeat("x", 80)
	assert.Len(t, sanitizeFilename(long), 50)
}

func TestTranscriptFromConversation(t *testing.T) {
	conv := model.NewConversation()
	conv.Model = "llama3.2"
	conv.Mode = "interview"
	conv.AddUserMessage("hello")
	asst := conv.AddAssistantMessage()
	asst.AppendToken("world")
	conv.FinalizeLast(nil)
	conv.AddAssistantMessage() // still streaming, must be skipped

	tr := TranscriptFromConversation(conv)
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, "user", tr.Messages[0].Role)
	assert.Equal(t, "world", tr.Messages[1].Content)
	assert.Equal(t, "llama3.2", tr.Model)
}
