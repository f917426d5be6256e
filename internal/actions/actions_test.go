package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	reg := nodes.Schemas()
	return NewModel(graph.New("untitled"), reg)
}

func TestCreateNodeIsUndoable(t *testing.T) {
	m := newTestModel(t)
	idVal, err := m.Update(CreateNode{Kind: nodes.KindSine, X: 10, Y: 20})
	require.NoError(t, err)
	id := idVal.(graph.NodeId)
	require.Contains(t, m.Project.Nodes, id)

	require.True(t, m.Undo())
	assert.NotContains(t, m.Project.Nodes, id)

	require.True(t, m.Redo())
	assert.Contains(t, m.Project.Nodes, id)
}

func TestSetParamValueCombinesSuccessiveEdits(t *testing.T) {
	m := newTestModel(t)
	idVal, err := m.Update(CreateNode{Kind: nodes.KindKnob, X: 0, Y: 0})
	require.NoError(t, err)
	id := idVal.(graph.NodeId)

	_, err = m.Update(SetParam{ID: id, Name: "value", Value: 0.25})
	require.NoError(t, err)
	_, err = m.Update(SetParam{ID: id, Name: "value", Value: 0.75})
	require.NoError(t, err)

	assert.Equal(t, 0.75, m.Project.Nodes[id].Params["value"])
	require.True(t, m.Undo())
	assert.Equal(t, 0.0, m.Project.Nodes[id].Params["value"], "a single undo should fully revert the combined edits")

	require.True(t, m.Redo())
	assert.Equal(t, 0.75, m.Project.Nodes[id].Params["value"])
}

func TestConnectNodesRejectsCycle(t *testing.T) {
	m := newTestModel(t)
	aVal, _ := m.Update(CreateNode{Kind: nodes.KindAdd, X: 0, Y: 0})
	bVal, _ := m.Update(CreateNode{Kind: nodes.KindMul, X: 50, Y: 0})
	a := aVal.(graph.NodeId)
	b := bVal.(graph.NodeId)

	_, err := m.Update(ConnectNodes{Src: b, SrcPort: 0, Dst: a, DstPort: 0})
	require.NoError(t, err)

	undoDepth := len(m.undoStack)
	_, err = m.Update(ConnectNodes{Src: a, SrcPort: 0, Dst: b, DstPort: 0})
	require.Error(t, err, "A<-B, B<-A direct cycle must be rejected")

	assert.Nil(t, m.Project.Nodes[b].Ins[0], "rejected connection must leave prior state unchanged")
	assert.Equal(t, undoDepth, len(m.undoStack), "a failing action must not push a spurious undo entry")
}

func TestFailingActionLeavesUndoRedoStacksUntouched(t *testing.T) {
	m := newTestModel(t)
	aVal, _ := m.Update(CreateNode{Kind: nodes.KindAdd, X: 0, Y: 0})
	bVal, _ := m.Update(CreateNode{Kind: nodes.KindMul, X: 50, Y: 0})
	a := aVal.(graph.NodeId)
	b := bVal.(graph.NodeId)

	require.True(t, m.Undo())
	require.NotEmpty(t, m.redoStack, "precondition: redo stack has an entry to lose")
	undoDepth := len(m.undoStack)
	redoDepth := len(m.redoStack)

	_, err := m.Update(ConnectNodes{Src: a, SrcPort: 0, Dst: b, DstPort: 99})
	require.Error(t, err, "connecting to a node removed by the undo must be rejected")

	assert.Equal(t, undoDepth, len(m.undoStack), "a failing action must not push an undo entry")
	assert.Equal(t, redoDepth, len(m.redoStack), "a failing action must not clear the redo stack")
}

func TestDelayBreaksCycle(t *testing.T) {
	m := newTestModel(t)
	aVal, _ := m.Update(CreateNode{Kind: nodes.KindAdd, X: 0, Y: 0})
	bVal, _ := m.Update(CreateNode{Kind: nodes.KindMul, X: 50, Y: 0})
	dVal, _ := m.Update(CreateNode{Kind: nodes.KindDelay, X: 100, Y: 0})
	a := aVal.(graph.NodeId)
	b := bVal.(graph.NodeId)
	d := dVal.(graph.NodeId)

	_, err := m.Update(ConnectNodes{Src: a, SrcPort: 0, Dst: b, DstPort: 0})
	require.NoError(t, err)
	_, err = m.Update(ConnectNodes{Src: b, SrcPort: 0, Dst: d, DstPort: 0})
	require.NoError(t, err)
	_, err = m.Update(ConnectNodes{Src: d, SrcPort: 0, Dst: a, DstPort: 0})
	require.NoError(t, err, "a cycle through Delay must compile/connect successfully")
}

func TestPasteIsClosedUnderIDs(t *testing.T) {
	m := newTestModel(t)
	aVal, _ := m.Update(CreateNode{Kind: nodes.KindSine, X: 0, Y: 0})
	outVal, _ := m.Update(CreateNode{Kind: nodes.KindScope, X: 50, Y: 0})
	a := aVal.(graph.NodeId)
	scopeOutside := outVal.(graph.NodeId)
	_, err := m.Update(ConnectNodes{Src: a, SrcPort: 0, Dst: scopeOutside, DstPort: 0})
	require.NoError(t, err)

	clip := map[graph.NodeId]*graph.Node{
		a: deepCopyNode(m.Project.Nodes[a]),
	}
	clip[a].Ins[0] = &graph.EdgeRef{SrcID: scopeOutside, SrcPortIdx: 0} // external edge, must be dropped

	resVal, err := m.Update(Paste{Nodes: clip, X: 200, Y: 200})
	require.NoError(t, err)
	newIDs := resVal.([]graph.NodeId)
	require.Len(t, newIDs, 1)
	pasted := m.Project.Nodes[newIDs[0]]
	assert.Nil(t, pasted.Ins[0], "paste must drop edges referencing ids outside the pasted set")
}

func TestPasteSkipsUniqueKindAlreadyPresent(t *testing.T) {
	m := newTestModel(t)
	outVal, _ := m.Update(CreateNode{Kind: nodes.KindAudioOut, X: 0, Y: 0})
	out := outVal.(graph.NodeId)

	clip := map[graph.NodeId]*graph.Node{
		out: deepCopyNode(m.Project.Nodes[out]),
	}
	resVal, err := m.Update(Paste{Nodes: clip, X: 100, Y: 100})
	require.NoError(t, err)
	newIDs := resVal.([]graph.NodeId)
	assert.Empty(t, newIDs, "pasting a unique kind already present must be skipped")

	count := 0
	for _, n := range m.Project.Nodes {
		if n.Type == nodes.KindAudioOut {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestToggleCellEnforcesMonophony(t *testing.T) {
	m := newTestModel(t)
	idVal, _ := m.Update(CreateNode{Kind: nodes.KindMonoSeq, X: 0, Y: 0})
	id := idVal.(graph.NodeId)
	n := m.Project.Nodes[id]
	steps := make([]interface{}, 16) // numSteps must be a multiple of 16
	for i := range steps {
		steps[i] = []interface{}{0.0, 0.0}
	}
	n.State["patterns"] = []interface{}{steps}

	_, err := m.Update(ToggleCell{ID: id, PatIdx: 0, StepIdx: 0, RowIdx: 0, Monophonic: true})
	require.NoError(t, err)
	_, err = m.Update(ToggleCell{ID: id, PatIdx: 0, StepIdx: 0, RowIdx: 1, Monophonic: true})
	require.NoError(t, err)

	rows := n.State["patterns"].([]interface{})[0].([]interface{})
	cells := rows[0].([]interface{})
	active := 0
	for _, c := range cells {
		if c.(float64) != 0 {
			active++
		}
	}
	assert.Equal(t, 1, active, "MonoSeq must never have more than one active cell per step")
}
