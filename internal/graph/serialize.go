package graph

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/cbegin/synthgraph/internal/nodes"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// wireEdge is the on-disk shape of an EdgeRef: an object with srcId and
// srcPortIdx keys.
type wireEdge struct {
	SrcID      NodeId `json:"srcId"`
	SrcPortIdx int    `json:"srcPortIdx"`
}

type wireNode struct {
	Type     nodes.Kind             `json:"type"`
	Name     string                 `json:"name"`
	X        int                    `json:"x"`
	Y        int                    `json:"y"`
	Ins      []*wireEdge            `json:"ins"`
	InNames  []string               `json:"inNames,omitempty"`
	OutNames []string               `json:"outNames,omitempty"`
	Params   map[string]interface{} `json:"params,omitempty"`
	State    map[string]interface{} `json:"state,omitempty"`
}

type wireProject struct {
	Title string              `json:"title"`
	Nodes map[NodeId]wireNode `json:"nodes"`
}

// Serialize deep-copies project state, strips every node property not in
// the common set or the schema's declared state list, and encodes it as a
// compact JSON object. reg supplies each
// node's declared state fields so unrelated ad-hoc map entries (e.g. a
// stale field left by an older editor version) are dropped rather than
// carried forward verbatim.
func Serialize(p *Project, reg map[nodes.Kind]*nodes.Schema) ([]byte, error) {
	out := wireProject{Title: p.Title, Nodes: make(map[NodeId]wireNode, len(p.Nodes))}
	for id, n := range p.Nodes {
		wn := wireNode{
			Type:     n.Type,
			Name:     n.Name,
			X:        n.X,
			Y:        n.Y,
			InNames:  n.InNames,
			OutNames: n.OutNames,
			Params:   n.Params,
		}
		for _, ref := range n.Ins {
			if ref == nil {
				wn.Ins = append(wn.Ins, nil)
				continue
			}
			wn.Ins = append(wn.Ins, &wireEdge{SrcID: ref.SrcID, SrcPortIdx: ref.SrcPortIdx})
		}
		if sch, ok := reg[n.Type]; ok && len(sch.State) > 0 && n.State != nil {
			state := make(map[string]interface{}, len(sch.State))
			for _, f := range sch.State {
				if f.Transient {
					continue
				}
				if v, ok := n.State[f.Name]; ok {
					state[f.Name] = v
				}
			}
			if len(state) > 0 {
				wn.State = state
			}
		}
		out.Nodes[id] = wn
	}
	return jsonAPI.Marshal(out)
}

// Deserialize parses a serialized project, runs Normalize, then Validate
// before handing it back to the caller to load. On success the returned
// project's id counter is rebased above every loaded id.
func Deserialize(data []byte, reg map[nodes.Kind]*nodes.Schema) (*Project, error) {
	var wp wireProject
	if err := jsonAPI.Unmarshal(data, &wp); err != nil {
		return nil, err
	}
	p := New(wp.Title)
	for id, wn := range wp.Nodes {
		n := &Node{
			Type:     wn.Type,
			Name:     wn.Name,
			X:        wn.X,
			Y:        wn.Y,
			InNames:  wn.InNames,
			OutNames: wn.OutNames,
			Params:   wn.Params,
			State:    wn.State,
		}
		for _, e := range wn.Ins {
			if e == nil {
				n.Ins = append(n.Ins, nil)
				continue
			}
			ref := EdgeRef{SrcID: e.SrcID, SrcPortIdx: e.SrcPortIdx}
			n.Ins = append(n.Ins, &ref)
		}
		p.Nodes[id] = n
	}
	p.SyncIDCounter()

	Normalize(p, reg)
	if err := Validate(p, reg); err != nil {
		return nil, err
	}
	return p, nil
}
