// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/drillrun-tui/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to HTML with embedded CSS and
// chroma-highlighted code blocks.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a transcript to HTML format.
func (e *HTMLExporter) Export(tr *storage.Transcript) ([]byte, error) {
	if tr == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(tr.Messages) == 0 {
		return nil, fmt.Errorf("transcript has no messages")
	}
	if tr.CreatedAt.IsZero() {
		return nil, fmt.Errorf("transcript has invalid creation timestamp")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(tr.Summary)))
	sb.WriteString("    <meta name=\"generator\" content=\"drillrun-tui\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", tr.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(tr))
	}

	sb.WriteString("        <main class=\"transcript\">\n")
	for _, msg := range tr.Messages {
		sb.WriteString(e.renderMessage(&msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>drillrun</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(tr *storage.Transcript) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(tr.Summary)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if tr.Problem != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Problem:</strong> %s</span>\n", html.EscapeString(tr.Problem)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(tr.Model)))
	if tr.Mode != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Mode:</strong> %s</span>\n", html.EscapeString(tr.Mode)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(tr.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(tr.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg *storage.TranscriptMessage) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role)
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	label := formatRoleLabel(msg.Role)
	if msg.Interrupted {
		label += " <em>(interrupted)</em>"
	}
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", label))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("                </div>\n")

	if msg.Role == "assistant" && e.options.IncludeMetadata {
		stats := e.renderMessageStats(msg)
		if stats != "" {
			sb.WriteString(stats)
		}
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

// renderMessageStats renders statistics for a message.
func (e *HTMLExporter) renderMessageStats(msg *storage.TranscriptMessage) string {
	if msg.TokenCount == 0 && msg.DurationMs == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("                <div class=\"message-stats\">\n")
	if msg.TokenCount > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Tokens: %d</span>\n", msg.TokenCount))
	}
	if msg.DurationMs > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Time: %s</span>\n", formatDuration(msg.DurationMs)))
	}
	sb.WriteString("                </div>\n")
	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var codeBlockRegex = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")

// formatContent converts markdown-style content to HTML. Fenced code blocks
// are syntax-highlighted with chroma; everything else is escaped.
func (e *HTMLExporter) formatContent(content string) string {
	var sb strings.Builder
	last := 0

	for _, loc := range codeBlockRegex.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(e.formatProse(content[last:loc[0]]))

		lang := content[loc[2]:loc[3]]
		code := content[loc[4]:loc[5]]
		sb.WriteString("<div class=\"code-block\">")
		if lang != "" {
			sb.WriteString(fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang)))
		}
		sb.WriteString(e.highlightCode(lang, strings.TrimRight(code, "\n")))
		sb.WriteString("</div>\n")

		last = loc[1]
	}
	sb.WriteString(e.formatProse(content[last:]))

	return sb.String()
}

// formatProse escapes plain text and wraps paragraphs, converting inline
// code spans.
func (e *HTMLExporter) formatProse(text string) string {
	text = html.EscapeString(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	inlineCodeRegex := regexp.MustCompile("`([^`]+)`")
	text = inlineCodeRegex.ReplaceAllString(text, "<code class=\"inline-code\">$1</code>")

	var sb strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(para, "\n", "<br>\n"))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// highlightCode renders a fenced code block through chroma. Unknown
// languages fall back to the plaintext lexer; formatter failures fall back
// to an escaped <pre>.
func (e *HTMLExporter) highlightCode(lang, code string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github-dark"
	if e.options.Theme == "light" {
		styleName = "github"
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}

	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithLineNumbers(false))
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	return buf.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
            padding: 2rem 1rem;
        }

        body.dark-theme { background: #1a1b26; color: #c0caf5; }
        body.light-theme { background: #fafafa; color: #24292f; }

        .container { max-width: 860px; margin: 0 auto; }

        .header { margin-bottom: 2rem; padding-bottom: 1rem; border-bottom: 2px solid #414868; }
        .light-theme .header { border-bottom-color: #d0d7de; }
        .header h1 { font-size: 1.6rem; margin-bottom: 0.75rem; }

        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: 0.85rem; opacity: 0.85; }

        .message { margin-bottom: 1.5rem; border-radius: 8px; padding: 1rem; }
        .dark-theme .user-message { background: #24283b; }
        .dark-theme .assistant-message { background: #1f2335; border-left: 3px solid #7aa2f7; }
        .dark-theme .system-message { background: #1e2030; opacity: 0.8; }
        .light-theme .user-message { background: #f0f3f6; }
        .light-theme .assistant-message { background: #ffffff; border-left: 3px solid #0969da; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
        .light-theme .system-message { background: #f6f8fa; opacity: 0.8; }

        .message-header {
            display: flex; justify-content: space-between; align-items: baseline;
            margin-bottom: 0.5rem; font-size: 0.85rem;
        }
        .role-label { font-weight: 600; }
        .timestamp { opacity: 0.6; font-size: 0.8rem; }

        .message-content p { margin-bottom: 0.75rem; }
        .message-content p:last-child { margin-bottom: 0; }

        .code-block { margin: 0.75rem 0; border-radius: 6px; overflow: hidden; }
        .code-lang {
            font-size: 0.75rem; padding: 0.25rem 0.75rem; font-family: monospace;
            background: rgba(128, 128, 128, 0.2);
        }
        .code-block pre { padding: 0.75rem; overflow-x: auto; font-size: 0.85rem; }

        .inline-code {
            font-family: "SF Mono", Consolas, monospace; font-size: 0.85em;
            padding: 0.1em 0.35em; border-radius: 4px;
            background: rgba(128, 128, 128, 0.2);
        }

        .message-stats {
            margin-top: 0.5rem; display: flex; gap: 1rem;
            font-size: 0.75rem; opacity: 0.6;
        }

        .footer {
            margin-top: 2rem; padding-top: 1rem; text-align: center;
            font-size: 0.8rem; opacity: 0.6; border-top: 1px solid #414868;
        }
        .light-theme .footer { border-top-color: #d0d7de; }
    </style>
`
}
