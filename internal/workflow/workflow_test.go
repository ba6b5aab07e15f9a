package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zavaflow/internal/catalog"
)

func countStatus(snapshot map[Node]Status, want Status) int {
	n := 0
	for _, status := range snapshot {
		if status == want {
			n++
		}
	}
	return n
}

func TestIdleAndCompleteAreUniform(t *testing.T) {
	for _, node := range Nodes {
		assert.Equal(t, StatusIdle, NodeStatus(node, PhaseIdle), node)
		assert.Equal(t, StatusComplete, NodeStatus(node, PhaseComplete), node)
	}
}

func TestExactlyOneActiveWhileProcessing(t *testing.T) {
	for _, phase := range []Phase{PhaseRouting, PhaseHR, PhaseMarketing, PhaseProducts} {
		snap := Snapshot(phase)
		assert.Equal(t, 1, countStatus(snap, StatusActive), phase)
		assert.Equal(t, StatusComplete, snap[NodeInput], phase)
		assert.Equal(t, StatusIdle, snap[NodeOutput], phase)
	}
}

func TestRoutingPhase(t *testing.T) {
	snap := Snapshot(PhaseRouting)
	assert.Equal(t, StatusActive, snap[NodeOrchestrator])
	for _, node := range AgentNodes {
		assert.Equal(t, StatusIdle, snap[node], node)
	}
}

func TestSpecialistPhase(t *testing.T) {
	snap := Snapshot(PhaseMarketing)
	assert.Equal(t, StatusComplete, snap[NodeOrchestrator])
	assert.Equal(t, StatusActive, snap[NodeMarketing])
	assert.Equal(t, StatusIdle, snap[NodeHR])
	assert.Equal(t, StatusIdle, snap[NodeProducts])
}

func TestOutputNeverActive(t *testing.T) {
	for _, phase := range Phases {
		assert.NotEqual(t, StatusActive, OutputStatus(phase), phase)
	}
	assert.Equal(t, StatusComplete, OutputStatus(PhaseComplete))
}

func TestNodeStatusIsPure(t *testing.T) {
	for _, phase := range Phases {
		for _, node := range Nodes {
			assert.Equal(t, NodeStatus(node, phase), NodeStatus(node, phase))
		}
		assert.Equal(t, Snapshot(phase), Snapshot(phase))
	}
}

func TestPhaseFor(t *testing.T) {
	assert.Equal(t, PhaseHR, PhaseFor(catalog.KindHR))
	assert.Equal(t, PhaseMarketing, PhaseFor(catalog.KindMarketing))
	assert.Equal(t, PhaseProducts, PhaseFor(catalog.KindProducts))
	assert.Equal(t, PhaseIdle, PhaseFor(catalog.KindUnknown))
	for _, kind := range catalog.Specialists() {
		assert.True(t, PhaseFor(kind).IsSpecialist())
		assert.Equal(t, kind.ID(), string(PhaseFor(kind)))
	}
	assert.False(t, PhaseRouting.IsSpecialist())
}
