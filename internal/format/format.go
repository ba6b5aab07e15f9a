// Package format turns a backend answer into the message shown in the chat panel.
package format

import (
	"html"
	"regexp"
	"strings"

	"zavaflow/internal/backend"
	"zavaflow/internal/catalog"
)

const (
	// DocumentPlaceholder labels a source with neither title nor filepath.
	DocumentPlaceholder = "Document"

	TagBoldOpen    = "<strong>"
	TagBoldClose   = "</strong>"
	TagItalicOpen  = "<em>"
	TagItalicClose = "</em>"
	TagBreak       = "<br />"
)

// Bold must run before italic so a lone "*" inside "**...**" is not consumed.
var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
)

// SourceLabel is one rendered citation.
type SourceLabel struct {
	Label         string
	KnowledgeBase string
	URL           string
	// Synthetic marks the fallback entry that names only the knowledge base.
	Synthetic bool
}

// Display is an assistant message ready for rendering.
type Display struct {
	Agent   string
	Content string
	// Header is false for agent-less replies, which render as bare text
	// without agent or source blocks.
	Header  bool
	Sources []SourceLabel
}

// Emphasize escapes text and applies the inline markup: bold, then italic,
// then line breaks.
func Emphasize(text string) string {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, TagBoldOpen+"$1"+TagBoldClose)
	out = italicPattern.ReplaceAllString(out, TagItalicOpen+"$1"+TagItalicClose)
	return strings.ReplaceAll(out, "\n", TagBreak)
}

// Label picks the display name of a source: title, else filepath, else the placeholder.
func Label(src backend.SourceRef) string {
	if title := strings.TrimSpace(src.Title); title != "" {
		return title
	}
	if path := strings.TrimSpace(src.Filepath); path != "" {
		return path
	}
	return DocumentPlaceholder
}

// Sources renders the citation list of resp. When the payload carries no
// sources, a single synthetic entry names the resolved agent's knowledge base.
func Sources(resp backend.ChatResponse) []SourceLabel {
	if len(resp.Sources) > 0 {
		out := make([]SourceLabel, 0, len(resp.Sources))
		for _, src := range resp.Sources {
			out = append(out, SourceLabel{
				Label:         Label(src),
				KnowledgeBase: src.KnowledgeBaseID,
				URL:           src.URL,
			})
		}
		return out
	}
	kind, _ := catalog.ResolveAgent(resp.Agent)
	kb := kind.KnowledgeBase()
	return []SourceLabel{{Label: kb, KnowledgeBase: kb, Synthetic: true}}
}

func Message(resp backend.ChatResponse) Display {
	display := Display{
		Agent:   resp.Agent,
		Content: Emphasize(resp.Message),
	}
	if resp.Agent == "" {
		return display
	}
	display.Header = true
	display.Sources = Sources(resp)
	return display
}

// Text formats a message that carries no agent, such as the user's question
// or the generic error reply.
func Text(text string) Display {
	return Display{Content: Emphasize(text)}
}

// RetrievedTitles joins source labels for the trace panel. The trace spells
// the placeholder in lower case.
func RetrievedTitles(sources []backend.SourceRef) string {
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		label := Label(src)
		if label == DocumentPlaceholder {
			label = strings.ToLower(label)
		}
		names = append(names, label)
	}
	return strings.Join(names, ", ")
}
