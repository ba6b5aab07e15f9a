// Package workflow derives the status of each node in the pipeline diagram
// from the single coarse phase of the current query.
package workflow

import "zavaflow/internal/catalog"

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRouting   Phase = "routing"
	PhaseHR        Phase = "hr"
	PhaseMarketing Phase = "marketing"
	PhaseProducts  Phase = "products"
	PhaseComplete  Phase = "complete"
)

// Phases lists every phase in lifecycle order.
var Phases = []Phase{PhaseIdle, PhaseRouting, PhaseHR, PhaseMarketing, PhaseProducts, PhaseComplete}

// IsSpecialist reports whether a specialist agent currently owns the query.
func (p Phase) IsSpecialist() bool {
	switch p {
	case PhaseHR, PhaseMarketing, PhaseProducts:
		return true
	default:
		return false
	}
}

// PhaseFor returns the specialist phase of an agent kind.
func PhaseFor(kind catalog.AgentKind) Phase {
	switch kind {
	case catalog.KindHR:
		return PhaseHR
	case catalog.KindMarketing:
		return PhaseMarketing
	case catalog.KindProducts:
		return PhaseProducts
	default:
		return PhaseIdle
	}
}

type Node string

const (
	NodeInput        Node = "input"
	NodeOrchestrator Node = "orchestrator"
	NodeHR           Node = "hr"
	NodeMarketing    Node = "marketing"
	NodeProducts     Node = "products"
	NodeOutput       Node = "output"
)

// Nodes lists the diagram nodes top to bottom.
var Nodes = []Node{NodeInput, NodeOrchestrator, NodeHR, NodeMarketing, NodeProducts, NodeOutput}

// AgentNodes are the specialist nodes drawn side by side.
var AgentNodes = []Node{NodeHR, NodeMarketing, NodeProducts}

type Status string

const (
	StatusIdle     Status = "idle"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// NodeStatus is the status of every node except the output node, which has
// no intermediate phase and goes through OutputStatus. Rules are evaluated in order.
func NodeStatus(node Node, phase Phase) Status {
	if node == NodeOutput {
		return OutputStatus(phase)
	}
	switch {
	case phase == PhaseIdle:
		return StatusIdle
	case phase == PhaseComplete:
		return StatusComplete
	case node == NodeInput:
		return StatusComplete
	case node == NodeOrchestrator && phase == PhaseRouting:
		return StatusActive
	case node == NodeOrchestrator:
		return StatusComplete
	case string(node) == string(phase):
		return StatusActive
	default:
		return StatusIdle
	}
}

// OutputStatus never reports active.
func OutputStatus(phase Phase) Status {
	if phase == PhaseComplete {
		return StatusComplete
	}
	return StatusIdle
}

// Snapshot computes the status of every node for phase.
func Snapshot(phase Phase) map[Node]Status {
	out := make(map[Node]Status, len(Nodes))
	for _, node := range Nodes {
		out[node] = NodeStatus(node, phase)
	}
	return out
}
