// Package compiler turns a graph.Project (with all modules inlined) into a
// flat, interpreted evaluation plan: a Unit. The compiler never generates
// code; the plan is data the audio engine interprets every sample.
package compiler

import (
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// WireRef addresses one node's output port: a generalization of an edge's
// input-side (srcNodeId, srcPortIdx) reference to any wire in the plan.
type WireRef struct {
	NodeID graph.NodeId
	Port   int
}

// Input is one step's resolved input: either a wire to read from an
// already-computed output, or the schema default substituted when the
// graph input is unconnected.
type Input struct {
	Ref     *WireRef
	Default float64
}

// Step is one plan instruction: either a pure combine of already-computed
// wire values (Stateless) or a call into a stateful node's Updater,
// identified by NodeID+Variant ("" for ordinary nodes, "write"/"read" for
// the Delay/Hold cycle-breaker split).
type Step struct {
	NodeID    graph.NodeId
	Kind      nodes.Kind
	Variant   string
	Ins       []Input
	OutCount  int
	Stateless bool
	Params    map[string]interface{} // consulted only for Stateless steps (Combine reads params live)
}

// Seed carries what the engine needs to allocate (or, on a hot-swap,
// decide whether it can reuse) a stateful node's Updater: its kind,
// params, and declared state.
type Seed struct {
	Kind   nodes.Kind
	Params map[string]interface{}
	State  map[string]interface{}
}

// Unit is the compiler's output.
type Unit struct {
	Plan       []Step
	Seeds      map[graph.NodeId]Seed
	AudioOutID graph.NodeId // empty when the graph has no AudioOut (plan returns silence)
}

// CycleError is returned when the graph (after the Delay/Hold split) is
// not a DAG. The editor's ConnectNodes action runs the
// same detection via graph.HasCycle to preview a rejection before it ever
// reaches the compiler.
type CycleError struct{}

func (CycleError) Error() string { return "structural: cycle detected, not broken by delay/hold" }

// Compile runs the full pipeline: module inlining, cycle-breaker split,
// Kahn's topological sort, audio-output detection, and plan emission.
func Compile(p *graph.Project, reg map[nodes.Kind]*nodes.Schema) (*Unit, error) {
	flat, err := inlineModules(p, reg)
	if err != nil {
		return nil, err
	}

	logical, producers := splitCycleBreakers(flat, reg)

	order, err := topoSort(logical, producers)
	if err != nil {
		return nil, err
	}

	unit := &Unit{Seeds: map[graph.NodeId]Seed{}}
	var audioOutID graph.NodeId
	for id, n := range flat {
		if n.Type == nodes.KindAudioOut {
			audioOutID = id
		}
		if sch, ok := reg[n.Type]; ok && !sch.Stateless && sch.Allocate != nil {
			unit.Seeds[id] = Seed{Kind: n.Type, Params: n.Params, State: n.State}
		}
	}
	unit.AudioOutID = audioOutID

	for _, key := range order {
		ln := logical[key]
		step := Step{
			NodeID:    key.id,
			Kind:      ln.kind,
			Variant:   key.variant,
			OutCount:  ln.outCount,
			Stateless: ln.stateless,
			Params:    ln.params,
		}
		for _, in := range ln.ins {
			input := Input{Default: in.defVal}
			if in.ref != nil {
				producerKey := resolveProducer(*in.ref, producers)
				input.Ref = &WireRef{NodeID: producerKey.id, Port: in.ref.Port}
			}
			step.Ins = append(step.Ins, input)
		}
		unit.Plan = append(unit.Plan, step)
	}

	return unit, nil
}

func resolveProducer(ref WireRef, producers map[graph.NodeId]logicalKey) logicalKey {
	if key, ok := producers[ref.NodeID]; ok {
		return key
	}
	return logicalKey{id: ref.NodeID, variant: ""}
}
