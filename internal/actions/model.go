// Package actions implements the model's single operation, Update(Action),
// and the undo/redo stack of full-state snapshots: every editing operation
// is a tagged variant with a single apply function over the variants.
package actions

import (
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

const maxUndoEntries = 400

// View receives a (project, action) broadcast after every applied action.
// The audio view is one such View: it inspects the action and either
// forwards a direct control message or triggers a recompile.
type View interface {
	Notify(p *graph.Project, a Action)
}

// Action is the tagged-variant contract every editing operation
// implements. Apply mutates the model and returns an optional
// result (e.g. CreateNode returns the new id). Undoable and CombinesWith
// are pure functions of the variant, never consulting model state.
type Action interface {
	Apply(m *Model) (interface{}, error)
	Undoable() bool
	CombinesWith(prev Action) bool
}

// Model owns the single authoritative Project and drives every mutation
// through Update.
type Model struct {
	Project *graph.Project
	Reg     map[nodes.Kind]*nodes.Schema
	Playing bool

	views      []View
	undoStack  []*graph.Project
	redoStack  []*graph.Project
	lastAction Action // most recent undoable action, for CombinesWith
}

// NewModel wraps an existing project (e.g. freshly deserialized or
// graph.New) with an empty undo/redo history.
func NewModel(p *graph.Project, reg map[nodes.Kind]*nodes.Schema) *Model {
	return &Model{Project: p, Reg: reg}
}

// AddView registers a broadcast recipient.
func (m *Model) AddView(v View) {
	m.views = append(m.views, v)
}

// Update is the model's single mutating entry point: the editor emits
// Actions to the model. An action either fully applies its state change,
// undo record and broadcast, or has no effect at all. The undo snapshot
// is taken before Apply, but it is pushed, the redo stack cleared, and
// lastAction updated only after Apply succeeds, so a failing action leaves the undo/redo stacks
// untouched even though atomic() already rolled back the graph itself.
func (m *Model) Update(a Action) (interface{}, error) {
	var preState *graph.Project
	if a.Undoable() && (m.lastAction == nil || !a.CombinesWith(m.lastAction)) {
		preState = deepCopyProject(m.Project)
	}

	result, err := a.Apply(m)
	if err != nil {
		return nil, err
	}

	if a.Undoable() {
		if preState != nil {
			m.pushUndo(preState)
		}
		m.redoStack = nil
		m.lastAction = a
	}

	for _, v := range m.views {
		v.Notify(m.Project, a)
	}
	return result, nil
}

func (m *Model) pushUndo(preState *graph.Project) {
	m.undoStack = append(m.undoStack, preState)
	if len(m.undoStack) > maxUndoEntries {
		m.undoStack = m.undoStack[len(m.undoStack)-maxUndoEntries:]
	}
}

// Undo restores the most recent undo snapshot, pushing the current state
// onto the redo stack so Redo can reverse it.
func (m *Model) Undo() bool {
	if len(m.undoStack) == 0 {
		return false
	}
	n := len(m.undoStack) - 1
	prev := m.undoStack[n]
	m.undoStack = m.undoStack[:n]
	m.redoStack = append(m.redoStack, deepCopyProject(m.Project))
	m.Project = prev
	m.lastAction = nil
	return true
}

// Redo re-applies the most recently undone snapshot.
func (m *Model) Redo() bool {
	if len(m.redoStack) == 0 {
		return false
	}
	n := len(m.redoStack) - 1
	next := m.redoStack[n]
	m.redoStack = m.redoStack[:n]
	m.undoStack = append(m.undoStack, deepCopyProject(m.Project))
	m.Project = next
	m.lastAction = nil
	return true
}
