package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func newNode(p *graph.Project, reg map[nodes.Kind]*nodes.Schema, kind nodes.Kind) graph.NodeId {
	sch := reg[kind]
	id := p.AllocID()
	p.Nodes[id] = &graph.Node{
		Type:   kind,
		Ins:    make([]*graph.EdgeRef, len(sch.Ins)),
		Params: map[string]interface{}{},
		State:  map[string]interface{}{},
	}
	return id
}

func connect(p *graph.Project, src graph.NodeId, srcPort int, dst graph.NodeId, dstPort int) {
	p.Nodes[dst].Ins[dstPort] = &graph.EdgeRef{SrcID: src, SrcPortIdx: srcPort}
}

func TestCompileAcyclicGraphSucceeds(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("t")
	sine := newNode(p, reg, nodes.KindSine)
	out := newNode(p, reg, nodes.KindAudioOut)
	connect(p, sine, 0, out, 0)
	connect(p, sine, 0, out, 1)

	unit, err := Compile(p, reg)
	require.NoError(t, err)
	assert.Equal(t, out, unit.AudioOutID)
	assert.NotEmpty(t, unit.Plan)
	assert.Contains(t, unit.Seeds, sine)
}

func TestCompileDirectCycleFails(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("t")
	a := newNode(p, reg, nodes.KindAdd)
	b := newNode(p, reg, nodes.KindMul)
	connect(p, a, 0, b, 0)
	connect(p, b, 0, a, 0)

	_, err := Compile(p, reg)
	require.Error(t, err)
	_, ok := err.(CycleError)
	assert.True(t, ok)
}

// TestDelayBreaksCycleInPlan confirms the literal "Delay breaks cycles"
// scenario: a delay_write ordered after its producers and a delay_read
// ordered before its consumers, for a graph whose only path back to the
// producer runs through Delay.
func TestDelayBreaksCycleInPlan(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("t")
	a := newNode(p, reg, nodes.KindAdd)
	b := newNode(p, reg, nodes.KindMul)
	d := newNode(p, reg, nodes.KindDelay)
	connect(p, a, 0, b, 0)
	connect(p, b, 0, d, 0)
	connect(p, d, 0, a, 0)

	unit, err := Compile(p, reg)
	require.NoError(t, err)

	indexOf := func(id graph.NodeId, variant string) int {
		for i, s := range unit.Plan {
			if s.NodeID == id && s.Variant == variant {
				return i
			}
		}
		return -1
	}

	readIdx := indexOf(d, "read")
	writeIdx := indexOf(d, "write")
	aIdx := indexOf(a, "")
	bIdx := indexOf(b, "")

	require.GreaterOrEqual(t, readIdx, 0)
	require.GreaterOrEqual(t, writeIdx, 0)
	assert.Less(t, readIdx, aIdx, "delay_read must be ordered before the consumer it feeds")
	assert.Less(t, bIdx, writeIdx, "delay_write must be ordered after its producer")
}

func TestCompileRespectsTopologicalOrder(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("t")
	sine := newNode(p, reg, nodes.KindSine)
	filt := newNode(p, reg, nodes.KindFilter)
	out := newNode(p, reg, nodes.KindAudioOut)
	connect(p, sine, 0, filt, 0)
	connect(p, filt, 0, out, 0)
	connect(p, filt, 0, out, 1)

	unit, err := Compile(p, reg)
	require.NoError(t, err)

	pos := map[graph.NodeId]int{}
	for i, s := range unit.Plan {
		pos[s.NodeID] = i
	}
	assert.Less(t, pos[sine], pos[filt])
	assert.Less(t, pos[filt], pos[out])
}

func TestModuleInliningRewritesInputsAndOutputs(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("t")
	sine := newNode(p, reg, nodes.KindSine)
	out := newNode(p, reg, nodes.KindAudioOut)

	// A module wrapping a single Filter: its one input forwards to the
	// sub-node's input, and its one output forwards from the sub-node.
	filtID := p.AllocID()
	moduleID := p.AllocID()
	sub := &graph.Node{
		Type:   nodes.KindFilter,
		Ins:    []*graph.EdgeRef{{SrcID: moduleID, SrcPortIdx: 0}, nil, nil},
		Params: map[string]interface{}{},
		State:  map[string]interface{}{},
	}
	p.Nodes[moduleID] = &graph.Node{
		Type: nodes.KindModule,
		Ins:  []*graph.EdgeRef{{SrcID: sine, SrcPortIdx: 0}},
		State: map[string]interface{}{
			"subNodes": map[graph.NodeId]*graph.Node{filtID: sub},
			"outMap":   []graph.EdgeRef{{SrcID: filtID, SrcPortIdx: 0}},
		},
	}
	p.Nodes[out] = &graph.Node{
		Type: nodes.KindAudioOut,
		Ins: []*graph.EdgeRef{
			{SrcID: moduleID, SrcPortIdx: 0},
			{SrcID: moduleID, SrcPortIdx: 0},
		},
	}

	unit, err := Compile(p, reg)
	require.NoError(t, err)

	foundFilt := false
	for _, s := range unit.Plan {
		if s.NodeID == filtID {
			foundFilt = true
		}
		if s.NodeID == moduleID {
			t.Fatalf("module node must not appear in the compiled plan")
		}
	}
	assert.True(t, foundFilt, "sub-node must be spliced into the flat plan")
}
