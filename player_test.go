package synthgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthgraph/internal/actions"
	"github.com/cbegin/synthgraph/internal/nodes"
)

func TestNewPlayerStartsOnAnUntitledEmptyProject(t *testing.T) {
	pl, err := NewPlayer(48000)
	require.NoError(t, err)
	assert.Equal(t, "untitled", pl.Project().Title)
	assert.Empty(t, pl.Project().Nodes)
}

func TestPlayerUpdateCreateNodeAddsToProject(t *testing.T) {
	pl, err := NewPlayer(48000)
	require.NoError(t, err)

	_, err = pl.Update(actions.CreateNode{Kind: nodes.KindSine, X: 0, Y: 0})
	require.NoError(t, err)
	assert.Len(t, pl.Project().Nodes, 1)
}

func TestPlayerUndoReversesLastAction(t *testing.T) {
	pl, err := NewPlayer(48000)
	require.NoError(t, err)

	_, err = pl.Update(actions.CreateNode{Kind: nodes.KindSine, X: 0, Y: 0})
	require.NoError(t, err)
	require.Len(t, pl.Project().Nodes, 1)

	require.True(t, pl.Undo())
	assert.Empty(t, pl.Project().Nodes)

	require.True(t, pl.Redo())
	assert.Len(t, pl.Project().Nodes, 1)
}
