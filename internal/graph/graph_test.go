package graph

import (
	"testing"

	"github.com/cbegin/synthgraph/internal/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProject(t *testing.T) (*Project, map[nodes.Kind]*nodes.Schema) {
	t.Helper()
	reg := nodes.Schemas()
	p := New("untitled")
	return p, reg
}

func addNode(p *Project, reg map[nodes.Kind]*nodes.Schema, kind nodes.Kind, x, y int) NodeId {
	id := p.AllocID()
	sch := reg[kind]
	n := &Node{
		Type:   kind,
		Name:   string(kind),
		X:      x,
		Y:      y,
		Ins:    make([]*EdgeRef, len(sch.Ins)),
		Params: map[string]interface{}{},
		State:  map[string]interface{}{},
	}
	for _, param := range sch.Params {
		n.Params[param.Name] = param.Default
	}
	p.Nodes[id] = n
	return id
}

func TestValidateAcceptsFreshProject(t *testing.T) {
	p, reg := newTestProject(t)
	sine := addNode(p, reg, nodes.KindSine, 0, 0)
	out := addNode(p, reg, nodes.KindAudioOut, 100, 0)
	p.Nodes[out].Ins[0] = &EdgeRef{SrcID: sine, SrcPortIdx: 0}
	p.Nodes[out].Ins[1] = &EdgeRef{SrcID: sine, SrcPortIdx: 0}

	require.NoError(t, Validate(p, reg))
}

func TestValidateRejectsDuplicateAudioOut(t *testing.T) {
	p, reg := newTestProject(t)
	addNode(p, reg, nodes.KindAudioOut, 0, 0)
	addNode(p, reg, nodes.KindAudioOut, 10, 10)

	err := Validate(p, reg)
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeSrcPort(t *testing.T) {
	p, reg := newTestProject(t)
	sine := addNode(p, reg, nodes.KindSine, 0, 0)
	out := addNode(p, reg, nodes.KindAudioOut, 100, 0)
	p.Nodes[out].Ins[0] = &EdgeRef{SrcID: sine, SrcPortIdx: 5}

	require.Error(t, Validate(p, reg))
}

func TestHasCycleIgnoresDelayHold(t *testing.T) {
	p, reg := newTestProject(t)
	add := addNode(p, reg, nodes.KindAdd, 0, 0)
	mul := addNode(p, reg, nodes.KindMul, 50, 0)
	delay := addNode(p, reg, nodes.KindDelay, 100, 0)

	p.Nodes[mul].Ins[0] = &EdgeRef{SrcID: add, SrcPortIdx: 0}
	p.Nodes[delay].Ins[0] = &EdgeRef{SrcID: mul, SrcPortIdx: 0}
	p.Nodes[add].Ins[0] = &EdgeRef{SrcID: delay, SrcPortIdx: 0}

	assert.False(t, HasCycle(p), "cycle through Delay must not count as I7 violation")

	directCycleMul := addNode(p, reg, nodes.KindMul, 150, 0)
	p.Nodes[add].Ins[0] = &EdgeRef{SrcID: directCycleMul, SrcPortIdx: 0}
	p.Nodes[directCycleMul].Ins[0] = &EdgeRef{SrcID: add, SrcPortIdx: 0}
	assert.True(t, HasCycle(p), "direct Add<->Mul cycle must be detected")
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	p, reg := newTestProject(t)
	sine := addNode(p, reg, nodes.KindSine, 5, 10)
	out := addNode(p, reg, nodes.KindAudioOut, 105, 10)
	p.Nodes[out].Ins[0] = &EdgeRef{SrcID: sine, SrcPortIdx: 0}
	p.Nodes[out].Ins[1] = &EdgeRef{SrcID: sine, SrcPortIdx: 0}
	Normalize(p, reg)
	require.NoError(t, Validate(p, reg))

	data, err := Serialize(p, reg)
	require.NoError(t, err)

	p2, err := Deserialize(data, reg)
	require.NoError(t, err)
	assert.Equal(t, p.Title, p2.Title)
	assert.Len(t, p2.Nodes, len(p.Nodes))
	assert.Equal(t, p.Nodes[out].Ins[0].SrcID, p2.Nodes[out].Ins[0].SrcID)
}

func TestRepositionIsIdempotent(t *testing.T) {
	p, reg := newTestProject(t)
	addNode(p, reg, nodes.KindSine, 40, -5)
	addNode(p, reg, nodes.KindAudioOut, 100, 30)

	Reposition(p)
	snapshot := map[NodeId][2]int{}
	for id, n := range p.Nodes {
		snapshot[id] = [2]int{n.X, n.Y}
	}
	Reposition(p)
	for id, n := range p.Nodes {
		assert.Equal(t, snapshot[id], [2]int{n.X, n.Y})
	}
}

func TestNormalizeBackfillsLegacyFieldNames(t *testing.T) {
	p, reg := newTestProject(t)
	id := addNode(p, reg, nodes.KindMonoSeq, 0, 0)
	p.Nodes[id].State["numOcts"] = 2.0
	delete(p.Nodes[id].State, "numOctaves")

	Normalize(p, reg)
	assert.Equal(t, 2.0, p.Nodes[id].State["numOctaves"])
	_, stillPresent := p.Nodes[id].State["numOcts"]
	assert.False(t, stillPresent)
}
