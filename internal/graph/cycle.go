package graph

import "github.com/cbegin/synthgraph/internal/nodes"

// HasCycle reports whether the graph restricted to non-Delay/non-Hold
// nodes contains a cycle: ConnectNodes rejects any edge that would create
// a cycle not broken by a delay or hold. Delay and Hold nodes are
// excluded from the reachability walk entirely: an edge passing through
// either one can never participate in a cycle that this check must
// reject, since the compiler always breaks it at compile time.
func HasCycle(p *Project) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[NodeId]int, len(p.Nodes))

	var visit func(id NodeId) bool
	visit = func(id NodeId) bool {
		n, ok := p.Nodes[id]
		if !ok {
			return false
		}
		if n.Type == nodes.KindDelay || n.Type == nodes.KindHold {
			return false
		}
		switch color[id] {
		case gray:
			return true
		case black:
			return false
		}
		color[id] = gray
		for _, ref := range n.Ins {
			if ref == nil {
				continue
			}
			if src, ok := p.Nodes[ref.SrcID]; ok && src.Type != nodes.KindDelay && src.Type != nodes.KindHold {
				if visit(ref.SrcID) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id, n := range p.Nodes {
		if n.Type == nodes.KindDelay || n.Type == nodes.KindHold {
			continue
		}
		if color[id] == white && visit(id) {
			return true
		}
	}
	return false
}
