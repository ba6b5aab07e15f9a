package catalog

import "strings"

// AgentKind is the closed set of specialist agents the orchestrator can route to.
type AgentKind int

const (
	KindUnknown AgentKind = iota
	KindHR
	KindMarketing
	KindProducts
)

// FallbackAgent is the specialist assumed when a response names no agent or one
// outside the known set. Trace and source display use its knowledge base.
const FallbackAgent = KindHR

var specialists = []AgentKind{KindHR, KindMarketing, KindProducts}

type kindInfo struct {
	id            string
	agentID       string
	knowledgeBase string
}

var kindTable = map[AgentKind]kindInfo{
	KindHR:        {id: "hr", agentID: "hr-agent", knowledgeBase: "kb1-hr"},
	KindMarketing: {id: "marketing", agentID: "marketing-agent", knowledgeBase: "kb2-marketing"},
	KindProducts:  {id: "products", agentID: "products-agent", knowledgeBase: "kb3-products"},
}

// Specialists lists every routable agent kind in display order.
func Specialists() []AgentKind {
	out := make([]AgentKind, len(specialists))
	copy(out, specialists)
	return out
}

// ID is the short form used by the workflow diagram and the catalog ("hr").
func (k AgentKind) ID() string {
	return kindTable[k].id
}

// AgentID is the identifier the backend reports ("hr-agent").
func (k AgentKind) AgentID() string {
	return kindTable[k].agentID
}

// KnowledgeBase is the id of the knowledge base the agent is grounded on.
func (k AgentKind) KnowledgeBase() string {
	return kindTable[k].knowledgeBase
}

func (k AgentKind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.id
	}
	return "unknown"
}

// ParseAgent maps a backend or catalog identifier onto the closed set. Both the
// qualified ("marketing-agent") and short ("marketing") forms are accepted.
func ParseAgent(id string) (AgentKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if normalized == "" {
		return KindUnknown, false
	}
	for _, kind := range specialists {
		info := kindTable[kind]
		if normalized == info.agentID || normalized == info.id {
			return kind, true
		}
	}
	return KindUnknown, false
}

// ResolveAgent is ParseAgent with the FallbackAgent policy applied. fellBack
// is true when the policy was used.
func ResolveAgent(id string) (kind AgentKind, fellBack bool) {
	if kind, ok := ParseAgent(id); ok {
		return kind, false
	}
	return FallbackAgent, true
}
