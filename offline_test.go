package synthgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func sineProject(reg map[nodes.Kind]*nodes.Schema) *graph.Project {
	p := graph.New("render test")
	sch := reg[nodes.KindSine]
	sine := p.AllocID()
	p.Nodes[sine] = &graph.Node{Type: nodes.KindSine, Ins: make([]*graph.EdgeRef, len(sch.Ins)), Params: map[string]interface{}{}, State: map[string]interface{}{}}

	out := p.AllocID()
	outSch := reg[nodes.KindAudioOut]
	p.Nodes[out] = &graph.Node{Type: nodes.KindAudioOut, Ins: make([]*graph.EdgeRef, len(outSch.Ins))}
	p.Nodes[out].Ins[0] = &graph.EdgeRef{SrcID: sine, SrcPortIdx: 0}
	p.Nodes[out].Ins[1] = &graph.EdgeRef{SrcID: sine, SrcPortIdx: 0}
	return p
}

func TestRenderSamplesProducesRequestedDuration(t *testing.T) {
	reg := nodes.Schemas()
	p := sineProject(reg)
	samples, err := RenderSamples(p, reg, 8000, 0.5)
	require.NoError(t, err)
	assert.Len(t, samples, 8000) // 0.5s * 8000Hz * 2 channels

	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero)
}

func TestRenderSamplesRejectsCyclicProject(t *testing.T) {
	reg := nodes.Schemas()
	p := graph.New("cyclic")
	a := p.AllocID()
	b := p.AllocID()
	p.Nodes[a] = &graph.Node{Type: nodes.KindAdd, Ins: make([]*graph.EdgeRef, 2)}
	p.Nodes[b] = &graph.Node{Type: nodes.KindMul, Ins: make([]*graph.EdgeRef, 2)}
	p.Nodes[a].Ins[0] = &graph.EdgeRef{SrcID: b, SrcPortIdx: 0}
	p.Nodes[b].Ins[0] = &graph.EdgeRef{SrcID: a, SrcPortIdx: 0}

	_, err := RenderSamples(p, reg, 8000, 0.1)
	assert.Error(t, err)
}

func TestEncodeWAVProducesValidRIFFHeader(t *testing.T) {
	reg := nodes.Schemas()
	p := sineProject(reg)
	samples, err := RenderSamples(p, reg, 8000, 0.1)
	require.NoError(t, err)

	wav, err := EncodeWAV(samples, 8000)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
}
