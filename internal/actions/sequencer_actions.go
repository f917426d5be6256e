package actions

import (
	"fmt"

	"github.com/cbegin/synthgraph/internal/graph"
)

func gridOf(n *graph.Node, patIdx int) ([]interface{}, error) {
	patterns, _ := n.State["patterns"].([]interface{})
	if patIdx < 0 || patIdx >= len(patterns) {
		return nil, fmt.Errorf("structural: pattern index %d out of range", patIdx)
	}
	rows, _ := patterns[patIdx].([]interface{})
	return rows, nil
}

// ToggleCell flips one cell; when Monophonic is set and the cell is being
// turned on, every other cell of the same step is cleared first so the
// monophony invariant never transiently breaks within a single action.
type ToggleCell struct {
	ID                         graph.NodeId
	PatIdx, StepIdx, RowIdx    int
	Monophonic                bool
}

func (a ToggleCell) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		rows, err := gridOf(n, a.PatIdx)
		if err != nil {
			return err
		}
		if a.StepIdx < 0 || a.StepIdx >= len(rows) {
			return fmt.Errorf("structural: step index %d out of range", a.StepIdx)
		}
		cells, _ := rows[a.StepIdx].([]interface{})
		if a.RowIdx < 0 || a.RowIdx >= len(cells) {
			return fmt.Errorf("structural: row index %d out of range", a.RowIdx)
		}
		cur, _ := cells[a.RowIdx].(float64)
		next := 1.0
		if cur != 0 {
			next = 0
		}
		if a.Monophonic && next != 0 {
			for i := range cells {
				cells[i] = 0.0
			}
		}
		cells[a.RowIdx] = next
		return nil
	})
	return nil, err
}
func (ToggleCell) Undoable() bool          { return true }
func (ToggleCell) CombinesWith(Action) bool { return false }

// SetPattern switches the currently playing pattern immediately (editor-
// side; the audio engine's own advance-at-boundary behavior is driven
// separately by QueuePattern/QUEUE_PATTERN).
type SetPattern struct {
	ID     graph.NodeId
	PatIdx int
}

func (a SetPattern) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		n.State["curPattern"] = float64(a.PatIdx)
		return nil
	})
	return nil, err
}
func (SetPattern) Undoable() bool          { return true }
func (SetPattern) CombinesWith(Action) bool { return false }

// QueuePattern edits (or appends) the given pattern's grid in the model;
// the corresponding audio-engine QUEUE_PATTERN message schedules the
// actual switch for the next step boundary.
type QueuePattern struct {
	ID      graph.NodeId
	PatIdx  int
	PatData [][]int
}

func (a QueuePattern) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		patterns, _ := n.State["patterns"].([]interface{})
		for len(patterns) <= a.PatIdx {
			patterns = append(patterns, []interface{}{})
		}
		grid := make([]interface{}, len(a.PatData))
		for i, row := range a.PatData {
			cells := make([]interface{}, len(row))
			for j, c := range row {
				cells[j] = float64(c)
			}
			grid[i] = cells
		}
		patterns[a.PatIdx] = grid
		n.State["patterns"] = patterns
		return nil
	})
	return nil, err
}
func (QueuePattern) Undoable() bool          { return true }
func (QueuePattern) CombinesWith(Action) bool { return false }

// SetScale edits MonoSeq's scale generation inputs.
type SetScale struct {
	ID                   graph.NodeId
	ScaleRoot, ScaleName string
	NumOctaves           int
}

func (a SetScale) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		n.State["scaleRoot"] = a.ScaleRoot
		n.State["scaleName"] = a.ScaleName
		n.State["numOctaves"] = float64(a.NumOctaves)
		return nil
	})
	return nil, err
}
func (SetScale) Undoable() bool          { return true }
func (SetScale) CombinesWith(Action) bool { return false }

// SetNumRows resizes a GateSeq's row count, padding or truncating every
// existing pattern's rows to match.
type SetNumRows struct {
	ID      graph.NodeId
	NumRows int
}

func (a SetNumRows) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		n.State["numRows"] = float64(a.NumRows)
		patterns, _ := n.State["patterns"].([]interface{})
		for _, p := range patterns {
			rows, _ := p.([]interface{})
			for si, r := range rows {
				cells, _ := r.([]interface{})
				for len(cells) < a.NumRows {
					cells = append(cells, 0.0)
				}
				if len(cells) > a.NumRows {
					cells = cells[:a.NumRows]
				}
				rows[si] = cells
			}
		}
		return nil
	})
	return nil, err
}
func (SetNumRows) Undoable() bool          { return true }
func (SetNumRows) CombinesWith(Action) bool { return false }

// ExtendPattern appends numSteps blank (all-zero) steps to a pattern;
// numSteps must keep the pattern's length a multiple of 16.
type ExtendPattern struct {
	ID       graph.NodeId
	PatIdx   int
	NumSteps int
}

func (a ExtendPattern) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		rows, err := gridOf(n, a.PatIdx)
		if err != nil {
			return err
		}
		numRows := 0
		if len(rows) > 0 {
			if cells, ok := rows[0].([]interface{}); ok {
				numRows = len(cells)
			}
		}
		for i := 0; i < a.NumSteps; i++ {
			cells := make([]interface{}, numRows)
			for j := range cells {
				cells[j] = 0.0
			}
			rows = append(rows, cells)
		}
		patterns, _ := n.State["patterns"].([]interface{})
		patterns[a.PatIdx] = rows
		return nil
	})
	return nil, err
}
func (ExtendPattern) Undoable() bool          { return true }
func (ExtendPattern) CombinesWith(Action) bool { return false }

// ExtendCopy duplicates a pattern's existing steps onto its own end
// (doubling its length), a common "repeat the loop" editing gesture.
type ExtendCopy struct {
	ID     graph.NodeId
	PatIdx int
}

func (a ExtendCopy) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		rows, err := gridOf(n, a.PatIdx)
		if err != nil {
			return err
		}
		extra := make([]interface{}, len(rows))
		for i, r := range rows {
			cells, _ := r.([]interface{})
			cp := make([]interface{}, len(cells))
			copy(cp, cells)
			extra[i] = cp
		}
		rows = append(rows, extra...)
		patterns, _ := n.State["patterns"].([]interface{})
		patterns[a.PatIdx] = rows
		return nil
	})
	return nil, err
}
func (ExtendCopy) Undoable() bool          { return true }
func (ExtendCopy) CombinesWith(Action) bool { return false }

// ShrinkPattern removes the last numSteps steps; the pattern's length must
// stay a multiple of 16, so callers are expected to pass a multiple of 16.
type ShrinkPattern struct {
	ID       graph.NodeId
	PatIdx   int
	NumSteps int
}

func (a ShrinkPattern) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		rows, err := gridOf(n, a.PatIdx)
		if err != nil {
			return err
		}
		if a.NumSteps >= len(rows) {
			return fmt.Errorf("value: cannot shrink pattern to zero or negative length")
		}
		rows = rows[:len(rows)-a.NumSteps]
		patterns, _ := n.State["patterns"].([]interface{})
		patterns[a.PatIdx] = rows
		return nil
	})
	return nil, err
}
func (ShrinkPattern) Undoable() bool          { return true }
func (ShrinkPattern) CombinesWith(Action) bool { return false }
