package compiler

import (
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// logicalKey identifies one plan step: a node id plus a variant
// distinguishing the Delay/Hold write/read split ("" for every other
// kind).
type logicalKey struct {
	id      graph.NodeId
	variant string
}

type logicalInput struct {
	ref    *WireRef
	defVal float64
}

type logicalNode struct {
	kind      nodes.Kind
	ins       []logicalInput
	outCount  int
	stateless bool
	params    map[string]interface{}
}

// splitCycleBreakers breaks every Delay/Hold node into a write pseudo-node
// (taking the original's inputs, no outputs) and a read pseudo-node (no
// inputs, producing the original's outputs), both keyed by the original
// node's id so they share one allocated Updater at runtime (see
// internal/nodes/delay.go, hold.go).
//
// It also returns, for every original NodeId, the logicalKey that now
// produces that id's visible output — ordinary nodes map to themselves;
// split nodes map to their read pseudo-node.
func splitCycleBreakers(flat map[graph.NodeId]*graph.Node, reg map[nodes.Kind]*nodes.Schema) (map[logicalKey]*logicalNode, map[graph.NodeId]logicalKey) {
	logical := map[logicalKey]*logicalNode{}
	producers := map[graph.NodeId]logicalKey{}

	for id, n := range flat {
		sch := reg[n.Type]
		if sch == nil {
			continue
		}

		if n.Type == nodes.KindDelay || n.Type == nodes.KindHold {
			writeKind, readKind := nodes.KindDelayWrite, nodes.KindDelayRead
			if n.Type == nodes.KindHold {
				writeKind, readKind = nodes.KindHoldWrite, nodes.KindHoldRead
			}

			writeKey := logicalKey{id: id, variant: "write"}
			readKey := logicalKey{id: id, variant: "read"}

			logical[writeKey] = &logicalNode{
				kind:     writeKind,
				ins:      inputsFor(n, sch),
				outCount: 0,
			}
			logical[readKey] = &logicalNode{
				kind:     readKind,
				ins:      nil,
				outCount: len(sch.Outs),
			}
			producers[id] = readKey
			continue
		}

		key := logicalKey{id: id, variant: ""}
		logical[key] = &logicalNode{
			kind:      n.Type,
			ins:       inputsFor(n, sch),
			outCount:  sch.OutArity(n.State),
			stateless: sch.Stateless,
			params:    n.Params,
		}
		producers[id] = key
	}

	return logical, producers
}

func inputsFor(n *graph.Node, sch *nodes.Schema) []logicalInput {
	ins := make([]logicalInput, len(n.Ins))
	for i, ref := range n.Ins {
		def := 0.0
		if i < len(sch.Ins) {
			def = sch.Ins[i].Default
		}
		if ref == nil {
			ins[i] = logicalInput{defVal: def}
			continue
		}
		ins[i] = logicalInput{ref: &WireRef{NodeID: ref.SrcID, Port: ref.SrcPortIdx}, defVal: def}
	}
	return ins
}
