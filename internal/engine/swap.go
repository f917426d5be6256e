package engine

import (
	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// swapUnit applies a NEW_UNIT control message: existing NodeState entries
// whose kind still matches the new Unit's seed for that id are reused
// untouched (an oscillator's phase, a filter's history, a sequencer's
// current step all survive an edit elsewhere in the graph); ids new to
// this Unit, or whose kind changed, are allocated fresh. An
// id absent from the new Unit's seeds is left alone too: a disconnected
// delay line might be reconnected later, so state is never deleted here,
// only Stop fully garbage-collects it. Nothing here resets any surviving
// state either; that is also Stop's job.
func swapUnit(reg map[nodes.Kind]*nodes.Schema, states map[graph.NodeId]nodes.Updater, prevSeeds map[graph.NodeId]compiler.Seed, unit *compiler.Unit, sampleRate float64) map[graph.NodeId]compiler.Seed {
	for id, seed := range unit.Seeds {
		if prev, ok := prevSeeds[id]; ok && prev.Kind == seed.Kind {
			if _, stillLive := states[id]; stillLive {
				continue
			}
		}
		sch := reg[seed.Kind]
		if sch == nil || sch.Allocate == nil {
			continue
		}
		states[id] = sch.Allocate(string(id), seed.Params, seed.State, sampleRate)
	}

	return unit.Seeds
}
