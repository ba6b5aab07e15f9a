package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	cat := Default()
	require.Len(t, cat.Agents(), 4)
	require.Len(t, cat.KnowledgeBases(), 3)
	require.Len(t, cat.Questions(), 3)

	orch, ok := cat.Agent("orchestrator")
	require.True(t, ok)
	assert.True(t, orch.RoutingOnly())
	assert.Empty(t, orch.ConnectedKB)

	hr, ok := cat.Agent("hr")
	require.True(t, ok)
	assert.Equal(t, "kb1-hr", hr.ConnectedKB)
	assert.False(t, hr.RoutingOnly())

	kb, ok := cat.KnowledgeBase("kb2-marketing")
	require.True(t, ok)
	assert.Equal(t, "Agentic Retrieval", kb.RetrievalMode)
	assert.Equal(t, []string{"ks-marketing", "ks-blob-marketing", "ks-marketing-web"}, kb.KnowledgeSources)

	_, ok = cat.Agent("finance")
	assert.False(t, ok)
}

func TestSpecialistKnowledgeBasesExistInCatalog(t *testing.T) {
	cat := Default()
	for _, kind := range Specialists() {
		agent, ok := cat.Agent(kind.ID())
		require.True(t, ok, "agent %s", kind)
		assert.Equal(t, kind.KnowledgeBase(), agent.ConnectedKB)
		_, ok = cat.KnowledgeBase(kind.KnowledgeBase())
		assert.True(t, ok, "knowledge base %s", kind.KnowledgeBase())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cat := Default()
	agents := cat.Agents()
	agents[0].Name = "mutated"
	assert.Equal(t, "Orchestrator", cat.Agents()[0].Name)
}

func TestLogoDefaults(t *testing.T) {
	cat := Default()
	assert.Equal(t, "📣", cat.Logo("marketing-agent"))
	assert.Equal(t, defaultLogo, cat.Logo("orchestrator"))
}

func TestParseRejectsDanglingKnowledgeBase(t *testing.T) {
	_, err := Parse([]byte(`
agents:
  - id: hr
    connected_kb: kb9-missing
knowledge_bases: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kb9-missing")
}

func TestParseRejectsDuplicateAgent(t *testing.T) {
	_, err := Parse([]byte(`
agents:
  - id: hr
  - id: hr
`))
	require.Error(t, err)
}

func TestParseAgent(t *testing.T) {
	cases := map[string]AgentKind{
		"hr-agent":        KindHR,
		"hr":              KindHR,
		"Marketing-Agent": KindMarketing,
		" products ":      KindProducts,
	}
	for input, want := range cases {
		got, ok := ParseAgent(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{"", "orchestrator", "finance-agent", "hr-agent-v2"} {
		_, ok := ParseAgent(input)
		assert.False(t, ok, input)
	}
}

// The HR fallback for missing or unknown agents is a deliberate, named policy.
func TestResolveAgentFallbackPolicy(t *testing.T) {
	kind, fellBack := ResolveAgent("marketing-agent")
	assert.Equal(t, KindMarketing, kind)
	assert.False(t, fellBack)

	kind, fellBack = ResolveAgent("")
	assert.Equal(t, FallbackAgent, kind)
	assert.True(t, fellBack)

	kind, fellBack = ResolveAgent("orchestrator")
	assert.Equal(t, KindHR, kind)
	assert.True(t, fellBack)
	assert.Equal(t, "kb1-hr", kind.KnowledgeBase())
}

func TestKindIdentifiers(t *testing.T) {
	assert.Equal(t, "products", KindProducts.ID())
	assert.Equal(t, "products-agent", KindProducts.AgentID())
	assert.Equal(t, "kb3-products", KindProducts.KnowledgeBase())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Empty(t, KindUnknown.KnowledgeBase())
}
