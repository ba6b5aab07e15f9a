package tui

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zavaflow/internal/format"
)

var (
	strongTag = regexp.MustCompile(regexp.QuoteMeta(format.TagBoldOpen) + `(.*?)` + regexp.QuoteMeta(format.TagBoldClose))
	emTag     = regexp.MustCompile(regexp.QuoteMeta(format.TagItalicOpen) + `(.*?)` + regexp.QuoteMeta(format.TagItalicClose))
)

// renderMarkup turns formatter output into styled terminal text. Entities are
// unescaped once, after the tags are replaced.
func renderMarkup(content string, bold, italic lipgloss.Style) string {
	out := strings.ReplaceAll(content, format.TagBreak, "\n")
	out = emTag.ReplaceAllStringFunc(out, func(match string) string {
		inner := emTag.FindStringSubmatch(match)[1]
		return italic.Render(inner)
	})
	out = strongTag.ReplaceAllStringFunc(out, func(match string) string {
		inner := strongTag.FindStringSubmatch(match)[1]
		return bold.Render(inner)
	})
	return html.UnescapeString(out)
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	return truncate(compact, limit)
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
