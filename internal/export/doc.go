// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders session transcripts to shareable formats.
//
// # Supported Formats
//
//   - JSON: machine-readable, faithful to the stored transcript
//   - Markdown: human-readable with YAML frontmatter
//   - HTML: styled for browsers, code blocks highlighted with chroma
//
// # Usage
//
// Export a stored transcript:
//
//	opts := export.DefaultOptions()
//	path, err := export.ExportMarkdown(transcript, opts)
//
// Export the live conversation:
//
//	path, err := export.ExportConversation(conv, "html", opts)
package export
