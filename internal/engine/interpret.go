package engine

import (
	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// runSample interprets one Unit.Plan pass for a single sample: each Step
// resolves its inputs from already-computed wires (or the schema default
// when unconnected), then either combines them (Stateless) or calls the
// live Updater for that NodeID/variant. wires is reused across samples to
// avoid a fresh map per call; callers clear() it first.
func runSample(unit *compiler.Unit, reg map[nodes.Kind]*nodes.Schema, states map[graph.NodeId]nodes.Updater, wires map[graph.NodeId][]float64, ctx nodes.Context) []float64 {
	var audioOut []float64

	for _, step := range unit.Plan {
		ins := make([]float64, len(step.Ins))
		for i, in := range step.Ins {
			if in.Ref == nil {
				ins[i] = in.Default
				continue
			}
			out := wires[in.Ref.NodeID]
			if in.Ref.Port < len(out) {
				ins[i] = out[in.Ref.Port]
			} else {
				ins[i] = in.Default
			}
		}

		var out []float64
		if step.Stateless {
			if sch := reg[step.Kind]; sch != nil && sch.Combine != nil {
				out = sch.Combine(ins, step.Params)
			}
		} else if upd, ok := states[step.NodeID]; ok {
			out = upd.Update(step.Variant, ins, ctx)
		}

		if step.Variant != "write" {
			wires[step.NodeID] = out
		}
		if step.NodeID == unit.AudioOutID {
			audioOut = out
		}
	}

	return audioOut
}
