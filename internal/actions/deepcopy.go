package actions

import "github.com/cbegin/synthgraph/internal/graph"

// deepCopyProject clones a project for an undo/redo snapshot. Unlike
// graph.Serialize, this keeps every map entry verbatim — including
// schema-transient fields like Scope.samples — because undo/redo and
// Paste both depend on non-persistent state surviving a snapshot round
// trip.
func deepCopyProject(p *graph.Project) *graph.Project {
	cp := graph.New(p.Title)
	for id, n := range p.Nodes {
		cp.Nodes[id] = deepCopyNode(n)
	}
	cp.SyncIDCounter()
	return cp
}

func deepCopyNode(n *graph.Node) *graph.Node {
	cp := &graph.Node{
		Type: n.Type,
		Name: n.Name,
		X:    n.X,
		Y:    n.Y,
	}
	cp.Ins = make([]*graph.EdgeRef, len(n.Ins))
	for i, ref := range n.Ins {
		if ref == nil {
			continue
		}
		r := *ref
		cp.Ins[i] = &r
	}
	cp.InNames = append([]string(nil), n.InNames...)
	cp.OutNames = append([]string(nil), n.OutNames...)
	cp.Params = deepCopyMap(n.Params)
	cp.State = deepCopyMap(n.State)
	return cp
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	cp := make(map[string]interface{}, len(m))
	for k, v := range m {
		cp[k] = deepCopyValue(v)
	}
	return cp
}

func deepCopyValue(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(x)
	case []interface{}:
		cp := make([]interface{}, len(x))
		for i, e := range x {
			cp[i] = deepCopyValue(e)
		}
		return cp
	default:
		return v // numbers, strings, bools, nil are already value types
	}
}
