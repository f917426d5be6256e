package compiler

import (
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// inlineModules recursively expands every Module node into its recorded
// sub-graph. A Module's own Ins are the external sources for its input
// ports; its State["outMap"] records which sub-node output each
// of its own output ports forwards. Sub-node ids are already globally
// unique (GroupNodes keeps the project ids the sub-nodes already had), so splicing them back in
// never needs a fresh rewrite pass of their own ids.
func inlineModules(p *graph.Project, reg map[nodes.Kind]*nodes.Schema) (map[graph.NodeId]*graph.Node, error) {
	flat := make(map[graph.NodeId]*graph.Node, len(p.Nodes))
	for id, n := range p.Nodes {
		flat[id] = n
	}

	for {
		var moduleID graph.NodeId
		var module *graph.Node
		for id, n := range flat {
			if n.Type == nodes.KindModule {
				moduleID, module = id, n
				break
			}
		}
		if module == nil {
			break
		}

		subNodes, _ := module.State["subNodes"].(map[graph.NodeId]*graph.Node)
		outMap, _ := module.State["outMap"].([]graph.EdgeRef)

		for id, sub := range subNodes {
			resolved := &graph.Node{
				Type:     sub.Type,
				Name:     sub.Name,
				X:        sub.X,
				Y:        sub.Y,
				InNames:  sub.InNames,
				OutNames: sub.OutNames,
				Params:   sub.Params,
				State:    sub.State,
			}
			resolved.Ins = make([]*graph.EdgeRef, len(sub.Ins))
			for i, ref := range sub.Ins {
				if ref == nil {
					continue
				}
				if ref.SrcID == moduleID {
					// Module input port -> the module's own external source.
					if ref.SrcPortIdx < len(module.Ins) && module.Ins[ref.SrcPortIdx] != nil {
						ext := *module.Ins[ref.SrcPortIdx]
						resolved.Ins[i] = &ext
					}
					continue
				}
				r := *ref
				resolved.Ins[i] = &r
			}
			flat[id] = resolved
		}

		// Any node referencing one of the module's output ports is
		// rewritten to read directly from the recorded internal source.
		for _, n := range flat {
			if n == module {
				continue
			}
			for i, ref := range n.Ins {
				if ref == nil || ref.SrcID != moduleID {
					continue
				}
				if ref.SrcPortIdx < len(outMap) {
					resolved := outMap[ref.SrcPortIdx]
					n.Ins[i] = &resolved
				}
			}
		}

		delete(flat, moduleID)
	}

	return flat, nil
}
