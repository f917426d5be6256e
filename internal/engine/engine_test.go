package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/message"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func sineToOutUnit(t *testing.T, reg map[nodes.Kind]*nodes.Schema) (*compiler.Unit, graph.NodeId) {
	t.Helper()
	p := graph.New("t")
	sch := reg[nodes.KindSine]
	sine := p.AllocID()
	p.Nodes[sine] = &graph.Node{Type: nodes.KindSine, Ins: make([]*graph.EdgeRef, len(sch.Ins)), Params: map[string]interface{}{}, State: map[string]interface{}{}}
	p.Nodes[sine].Params["minVal"] = -1.0
	p.Nodes[sine].Params["maxVal"] = 1.0

	constID := p.AllocID()
	constSch := reg[nodes.KindConst]
	p.Nodes[constID] = &graph.Node{Type: nodes.KindConst, Ins: make([]*graph.EdgeRef, len(constSch.Ins)), Params: map[string]interface{}{"value": 440.0}, State: map[string]interface{}{}}
	p.Nodes[sine].Ins[0] = &graph.EdgeRef{SrcID: constID, SrcPortIdx: 0}

	out := p.AllocID()
	outSch := reg[nodes.KindAudioOut]
	p.Nodes[out] = &graph.Node{Type: nodes.KindAudioOut, Ins: make([]*graph.EdgeRef, len(outSch.Ins))}
	p.Nodes[out].Ins[0] = &graph.EdgeRef{SrcID: sine, SrcPortIdx: 0}
	p.Nodes[out].Ins[1] = &graph.EdgeRef{SrcID: sine, SrcPortIdx: 0}

	unit, err := compiler.Compile(p, reg)
	require.NoError(t, err)
	return unit, sine
}

func TestProcessRendersSilenceUntilUnitAndPlay(t *testing.T) {
	reg := nodes.Schemas()
	e := New(reg, 44100)
	dst := make([]float32, 16)
	for i := range dst {
		dst[i] = 99
	}
	e.Process(dst)
	for _, v := range dst {
		assert.Equal(t, float32(0), v)
	}
}

func TestProcessProducesAttenuatedSine(t *testing.T) {
	reg := nodes.Schemas()
	unit, _ := sineToOutUnit(t, reg)
	e := New(reg, 44100)
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit}))
	e.Play()

	dst := make([]float32, 200)
	e.Process(dst)

	nonZero := false
	for _, v := range dst {
		if v != 0 {
			nonZero = true
		}
		assert.LessOrEqual(t, float64(v), 0.3001)
		assert.GreaterOrEqual(t, float64(v), -0.3001)
	}
	assert.True(t, nonZero, "a 440Hz sine through AudioOut must produce nonzero samples")
}

func TestHotSwapPreservesOscillatorPhase(t *testing.T) {
	reg := nodes.Schemas()
	unit, sineID := sineToOutUnit(t, reg)
	e := New(reg, 44100)
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit}))
	e.Play()

	dst := make([]float32, 100)
	e.Process(dst)

	phaseBefore := e.states[sineID]

	// A second compile of the same project is a distinct *compiler.Unit
	// but the same node ids/kinds; the hot-swap must reuse the existing
	// Updater rather than reallocate it.
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit}))
	e.Process(make([]float32, 2))

	assert.Same(t, phaseBefore, e.states[sineID], "hot-swap must reuse the existing Updater for an unchanged id/kind")
}

func TestStopPurgesTheEnginesPlanAndNodeMap(t *testing.T) {
	reg := nodes.Schemas()
	unit, sineID := sineToOutUnit(t, reg)
	e := New(reg, 44100)
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit}))
	e.Play()
	e.Process(make([]float32, 100))
	require.NotNil(t, e.states[sineID])

	e.Stop()
	assert.False(t, e.Playing())

	// Stop fully purges the plan and the live node map; unlike a NEW_UNIT
	// hot-swap, nothing survives a Stop.
	assert.Nil(t, e.unit)
	assert.Empty(t, e.states)

	dst := make([]float32, 4)
	e.Process(dst)
	for _, v := range dst {
		assert.Equal(t, float32(0), v, "with no plan loaded, Process must emit silence")
	}
}

func TestSwapUnitNeverDeletesOrphanedState(t *testing.T) {
	reg := nodes.Schemas()
	unit, sineID := sineToOutUnit(t, reg)
	e := New(reg, 44100)
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit}))
	e.Play()
	e.Process(make([]float32, 10))
	require.NotNil(t, e.states[sineID])

	// A unit that no longer seeds sineID (e.g. the oscillator was
	// disconnected and removed from the compiled plan) must not cause
	// swapUnit to drop its live state: it might be reconnected later.
	emptyUnit := &compiler.Unit{Seeds: map[graph.NodeId]compiler.Seed{}}
	require.True(t, e.Send(message.ToEngine{Kind: message.NewUnit, Unit: emptyUnit}))
	e.Process(make([]float32, 2))

	assert.NotNil(t, e.states[sineID], "swapUnit must never delete state for an id absent from the new unit's seeds")
}
