package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zavaflow/internal/backend"
)

func TestEmphasizeBoldItalicAndBreaks(t *testing.T) {
	got := Emphasize("**bold** and *italic*\nline2")
	assert.Equal(t, "<strong>bold</strong> and <em>italic</em><br />line2", got)
	assert.NotContains(t, got, "*")
}

func TestEmphasizeIsNonGreedy(t *testing.T) {
	got := Emphasize("**a** plain **b** and *c* then *d*")
	assert.Equal(t, "<strong>a</strong> plain <strong>b</strong> and <em>c</em> then <em>d</em>", got)
}

func TestEmphasizeDoesNotSpanLines(t *testing.T) {
	got := Emphasize("*open\nclose*")
	assert.Equal(t, "*open<br />close*", got)
}

func TestEmphasizeEscapesMarkup(t *testing.T) {
	got := Emphasize("<script>**x**</script>")
	assert.Equal(t, "&lt;script&gt;<strong>x</strong>&lt;/script&gt;", got)
}

func TestLabelPrecedence(t *testing.T) {
	assert.Equal(t, "Handbook", Label(backend.SourceRef{Title: "Handbook", Filepath: "a.md"}))
	assert.Equal(t, "a.md", Label(backend.SourceRef{Filepath: "a.md"}))
	assert.Equal(t, DocumentPlaceholder, Label(backend.SourceRef{KnowledgeBaseID: "kb1-hr"}))
}

func TestMessageFallbackSourceForEmptySources(t *testing.T) {
	display := Message(backend.ChatResponse{
		Message: "Our colors are teal and coral.",
		Agent:   "marketing-agent",
		Sources: []backend.SourceRef{},
	})
	require.True(t, display.Header)
	require.Len(t, display.Sources, 1)
	assert.Equal(t, SourceLabel{Label: "kb2-marketing", KnowledgeBase: "kb2-marketing", Synthetic: true}, display.Sources[0])
}

func TestMessageKeepsSourceOrder(t *testing.T) {
	display := Message(backend.ChatResponse{
		Message: "answer",
		Agent:   "products-agent",
		Sources: []backend.SourceRef{
			{KnowledgeBaseID: "kb3-products", Title: "Watch Spec Sheet"},
			{KnowledgeBaseID: "kb1-hr", Filepath: "catalog/watch.json", URL: "https://example.test/w"},
		},
	})
	require.Len(t, display.Sources, 2)
	assert.Equal(t, SourceLabel{Label: "Watch Spec Sheet", KnowledgeBase: "kb3-products"}, display.Sources[0])
	assert.Equal(t, SourceLabel{Label: "catalog/watch.json", KnowledgeBase: "kb1-hr", URL: "https://example.test/w"}, display.Sources[1])
}

// Unknown agents fall back to the HR knowledge base by policy.
func TestMessageUnknownAgentUsesFallbackKnowledgeBase(t *testing.T) {
	display := Message(backend.ChatResponse{Message: "Echo: hi", Agent: "orchestrator"})
	require.Len(t, display.Sources, 1)
	assert.Equal(t, "kb1-hr", display.Sources[0].KnowledgeBase)
}

func TestMessageWithoutAgentIsBare(t *testing.T) {
	display := Message(backend.ChatResponse{Message: "*hello*"})
	assert.False(t, display.Header)
	assert.Nil(t, display.Sources)
	assert.Equal(t, "<em>hello</em>", display.Content)
}

func TestRetrievedTitles(t *testing.T) {
	got := RetrievedTitles([]backend.SourceRef{
		{Title: "PTO Policy"},
		{Filepath: "handbook.pdf"},
		{KnowledgeBaseID: "kb1-hr"},
	})
	assert.Equal(t, "PTO Policy, handbook.pdf, document", got)
}

func TestText(t *testing.T) {
	assert.Equal(t, Display{Content: "What&#39;s <strong>new</strong>?"}, Text("What's **new**?"))
}
