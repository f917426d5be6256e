package compiler

import "github.com/cbegin/synthgraph/internal/graph"

// topoSort runs Kahn's algorithm over the logical (post-split) node graph.
// A node with zero remaining graph inputs (including every *_read
// pseudo-node, which never has graph inputs) is eligible immediately;
// this is what gives delay/hold reads their "always resolves before this
// sample's write" ordering.
func topoSort(logical map[logicalKey]*logicalNode, producers map[graph.NodeId]logicalKey) ([]logicalKey, error) {
	indeg := make(map[logicalKey]int, len(logical))
	dependents := make(map[logicalKey][]logicalKey, len(logical))

	for key, ln := range logical {
		if _, ok := indeg[key]; !ok {
			indeg[key] = 0
		}
		for _, in := range ln.ins {
			if in.ref == nil {
				continue
			}
			producer, ok := producers[in.ref.NodeID]
			if !ok {
				continue
			}
			indeg[key]++
			dependents[producer] = append(dependents[producer], key)
		}
	}

	var queue []logicalKey
	for key, d := range indeg {
		if d == 0 {
			queue = append(queue, key)
		}
	}

	var order []logicalKey
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, dep := range dependents[cur] {
			indeg[dep]--
			if indeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(logical) {
		return nil, CycleError{}
	}
	return order, nil
}
