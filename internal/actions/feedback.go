package actions

import "github.com/cbegin/synthgraph/internal/graph"

// The four audio->model feedback actions (SetCurStep, SendSamples, NoteOn,
// ClockPulse) are never undoable: they only update a display-facing
// mirror of engine state, never the authoritative graph structure.

type SetCurStep struct {
	ID      graph.NodeId
	StepIdx int
}

func (a SetCurStep) Apply(m *Model) (interface{}, error) {
	if n, ok := m.Project.Nodes[a.ID]; ok {
		if n.State == nil {
			n.State = map[string]interface{}{}
		}
		n.State["curStep"] = float64(a.StepIdx)
	}
	return nil, nil
}
func (SetCurStep) Undoable() bool          { return false }
func (SetCurStep) CombinesWith(Action) bool { return false }

type SendSamples struct {
	ID      graph.NodeId
	Samples []float64
}

func (a SendSamples) Apply(m *Model) (interface{}, error) {
	if n, ok := m.Project.Nodes[a.ID]; ok {
		if n.State == nil {
			n.State = map[string]interface{}{}
		}
		n.State["samples"] = a.Samples
	}
	return nil, nil
}
func (SendSamples) Undoable() bool          { return false }
func (SendSamples) CombinesWith(Action) bool { return false }

type NoteOn struct {
	ID               graph.NodeId
	NoteNo, Velocity int
}

func (NoteOn) Apply(m *Model) (interface{}, error)  { return nil, nil }
func (NoteOn) Undoable() bool                       { return false }
func (NoteOn) CombinesWith(Action) bool             { return false }

type ClockPulse struct {
	ID   graph.NodeId
	Time float64
}

func (ClockPulse) Apply(m *Model) (interface{}, error) { return nil, nil }
func (ClockPulse) Undoable() bool                      { return false }
func (ClockPulse) CombinesWith(Action) bool            { return false }

// Play/Stop toggle playback; on Stop every node's non-persistent state is
// purged. This mirrors the live engine's own full teardown on Stop — the
// model's copy of transient fields (e.g. Scope.samples) is cleared here
// so a subsequent serialize never sees stale audio-thread output.
type Play struct{}

func (Play) Apply(m *Model) (interface{}, error) {
	m.Playing = true
	return nil, nil
}
func (Play) Undoable() bool          { return false }
func (Play) CombinesWith(Action) bool { return false }

type Stop struct{}

func (Stop) Apply(m *Model) (interface{}, error) {
	m.Playing = false
	for _, n := range m.Project.Nodes {
		sch, ok := m.Reg[n.Type]
		if !ok {
			continue
		}
		for _, f := range sch.State {
			if f.Transient {
				delete(n.State, f.Name)
			}
		}
	}
	return nil, nil
}
func (Stop) Undoable() bool          { return false }
func (Stop) CombinesWith(Action) bool { return false }
