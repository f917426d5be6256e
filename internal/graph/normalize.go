package graph

import "github.com/cbegin/synthgraph/internal/nodes"

// legacyStateRenames maps old field names to their current ones, repairing
// projects saved before a field was renamed.
var legacyStateRenames = map[string]string{
	"numOcts": "numOctaves",
}

var legacyParamRenames = map[string]string{
	"controlNo": "controlId",
}

// Normalize repairs a freshly-deserialized project so that Validate can
// assume a canonical shape. It is idempotent: running it twice produces
// the same result.
func Normalize(p *Project, reg map[nodes.Kind]*nodes.Schema) {
	for _, n := range p.Nodes {
		renameKeys(n.State, legacyStateRenames)
		renameKeys(n.Params, legacyParamRenames)

		sch, ok := reg[n.Type]
		if !ok {
			continue
		}
		normalizeMinMax(n)
		backfillIns(n, sch)
		backfillParams(n, sch)
		backfillState(n, sch)
		backfillNames(n, sch)
	}
}

func renameKeys(m map[string]interface{}, renames map[string]string) {
	if m == nil {
		return
	}
	for old, cur := range renames {
		if v, ok := m[old]; ok {
			if _, taken := m[cur]; !taken {
				m[cur] = v
			}
			delete(m, old)
		}
	}
}

// normalizeMinMax flips an inverted minVal/maxVal pair.
func normalizeMinMax(n *Node) {
	if n.Params == nil {
		return
	}
	minV, hasMin := n.Params["minVal"]
	maxV, hasMax := n.Params["maxVal"]
	if !hasMin || !hasMax {
		return
	}
	minF, okMin := asFloat(minV)
	maxF, okMax := asFloat(maxV)
	if okMin && okMax && minF > maxF {
		n.Params["minVal"], n.Params["maxVal"] = maxV, minV
	}
}

// backfillIns pads/repairs n.Ins to schema arity, discarding entries
// beyond the schema's arity and filling missing ones with nil
// (unconnected, using the schema's numeric default at evaluation time).
func backfillIns(n *Node, sch *nodes.Schema) {
	want := len(sch.Ins)
	if len(n.Ins) > want {
		n.Ins = n.Ins[:want]
	}
	for len(n.Ins) < want {
		n.Ins = append(n.Ins, nil)
	}
	want = len(n.Ins)
	if len(n.InNames) > want {
		n.InNames = n.InNames[:want]
	}
	for i := len(n.InNames); i < want; i++ {
		n.InNames = append(n.InNames, sch.Ins[i].Name)
	}
}

func backfillParams(n *Node, sch *nodes.Schema) {
	if n.Params == nil {
		n.Params = map[string]interface{}{}
	}
	for _, p := range sch.Params {
		if _, ok := n.Params[p.Name]; !ok {
			n.Params[p.Name] = p.Default
		}
	}
}

func backfillState(n *Node, sch *nodes.Schema) {
	if len(sch.State) == 0 {
		return
	}
	if n.State == nil {
		n.State = map[string]interface{}{}
	}
	for _, s := range sch.State {
		if _, ok := n.State[s.Name]; !ok {
			n.State[s.Name] = nil
		}
	}
}

func backfillNames(n *Node, sch *nodes.Schema) {
	outs := sch.OutNames(n.State)
	if len(n.OutNames) > len(outs) {
		n.OutNames = n.OutNames[:len(outs)]
	}
	for i := len(n.OutNames); i < len(outs); i++ {
		n.OutNames = append(n.OutNames, outs[i])
	}
}
