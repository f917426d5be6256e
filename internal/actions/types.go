package actions

import (
	"fmt"
	"sort"

	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// atomic runs mutate against the live project; if the result fails
// Validate, the project is rolled back to its pre-mutate shape and the
// error is returned, so an action either fully applies or has no effect.
func atomic(m *Model, mutate func() error) error {
	before := deepCopyProject(m.Project)
	if err := mutate(); err != nil {
		m.Project = before
		return err
	}
	if err := graph.Validate(m.Project, m.Reg); err != nil {
		m.Project = before
		return err
	}
	return nil
}

func noCombine(Action) bool { return false }

// --- Project-level ---------------------------------------------------

type SetTitle struct{ Title string }

func (a SetTitle) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		m.Project.Title = a.Title
		return nil
	})
	return nil, err
}
func (a SetTitle) Undoable() bool             { return true }
func (a SetTitle) CombinesWith(p Action) bool { _, ok := p.(SetTitle); return ok }

// --- Node lifecycle ----------------------------------------------------

type CreateNode struct {
	Kind nodes.Kind
	X, Y int
}

func (a CreateNode) Apply(m *Model) (interface{}, error) {
	sch, ok := m.Reg[a.Kind]
	if !ok {
		return nil, fmt.Errorf("structural: unknown node kind %q", a.Kind)
	}
	var id graph.NodeId
	err := atomic(m, func() error {
		id = m.Project.AllocID()
		n := &graph.Node{
			Type:     a.Kind,
			Name:     string(a.Kind),
			X:        a.X,
			Y:        a.Y,
			Ins:      make([]*graph.EdgeRef, len(sch.Ins)),
			InNames:  make([]string, len(sch.Ins)),
			OutNames: sch.OutNames(nil),
			Params:   map[string]interface{}{},
			State:    map[string]interface{}{},
		}
		for i, port := range sch.Ins {
			n.InNames[i] = port.Name
		}
		for _, p := range sch.Params {
			n.Params[p.Name] = p.Default
		}
		for _, s := range sch.State {
			n.State[s.Name] = nil
		}
		m.Project.Nodes[id] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}
func (CreateNode) Undoable() bool        { return true }
func (CreateNode) CombinesWith(Action) bool { return false }

type MoveNodes struct {
	IDs    []graph.NodeId
	DX, DY int
}

func (a MoveNodes) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		for _, id := range a.IDs {
			if n, ok := m.Project.Nodes[id]; ok {
				n.X += a.DX
				n.Y += a.DY
			}
		}
		return nil
	})
	return nil, err
}
func (MoveNodes) Undoable() bool { return true }
func (a MoveNodes) CombinesWith(prev Action) bool {
	p, ok := prev.(MoveNodes)
	if !ok || len(p.IDs) != len(a.IDs) {
		return false
	}
	for i := range a.IDs {
		if p.IDs[i] != a.IDs[i] {
			return false
		}
	}
	return true
}

type DeleteNodes struct{ IDs []graph.NodeId }

func (a DeleteNodes) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		dead := map[graph.NodeId]bool{}
		for _, id := range a.IDs {
			dead[id] = true
			delete(m.Project.Nodes, id)
		}
		for _, n := range m.Project.Nodes {
			for i, ref := range n.Ins {
				if ref != nil && dead[ref.SrcID] {
					n.Ins[i] = nil
				}
			}
		}
		return nil
	})
	return nil, err
}
func (DeleteNodes) Undoable() bool          { return true }
func (DeleteNodes) CombinesWith(Action) bool { return false }

// --- Wiring -------------------------------------------------------------

type ConnectNodes struct {
	Src, Dst         graph.NodeId
	SrcPort, DstPort int
}

func (a ConnectNodes) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		dst, ok := m.Project.Nodes[a.Dst]
		if !ok {
			return fmt.Errorf("structural: unknown destination node %s", a.Dst)
		}
		if a.DstPort < 0 || a.DstPort >= len(dst.Ins) {
			return fmt.Errorf("structural: destination port %d out of bounds", a.DstPort)
		}
		prev := dst.Ins[a.DstPort]
		dst.Ins[a.DstPort] = &graph.EdgeRef{SrcID: a.Src, SrcPortIdx: a.SrcPort}
		if graph.HasCycle(m.Project) {
			dst.Ins[a.DstPort] = prev
			return fmt.Errorf("structural: connection would create a cycle not broken by delay/hold")
		}
		return nil
	})
	return nil, err
}
func (ConnectNodes) Undoable() bool          { return true }
func (ConnectNodes) CombinesWith(Action) bool { return false }

type Disconnect struct {
	Dst     graph.NodeId
	DstPort int
}

func (a Disconnect) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		dst, ok := m.Project.Nodes[a.Dst]
		if !ok || a.DstPort < 0 || a.DstPort >= len(dst.Ins) {
			return fmt.Errorf("structural: bad disconnect target %s:%d", a.Dst, a.DstPort)
		}
		dst.Ins[a.DstPort] = nil
		return nil
	})
	return nil, err
}
func (Disconnect) Undoable() bool          { return true }
func (Disconnect) CombinesWith(Action) bool { return false }

// --- Naming ---------------------------------------------------------------

type SetNodeName struct {
	ID   graph.NodeId
	Name string
}

func (a SetNodeName) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		if a.Name == "" {
			return fmt.Errorf("value: name must be non-empty")
		}
		n.Name = a.Name
		return nil
	})
	return nil, err
}
func (SetNodeName) Undoable() bool          { return true }
func (SetNodeName) CombinesWith(Action) bool { return false }

type SetInName struct {
	ID    graph.NodeId
	Port  int
	Name  string
}

func (a SetInName) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok || a.Port < 0 || a.Port >= len(n.InNames) {
			return fmt.Errorf("structural: bad input port %s:%d", a.ID, a.Port)
		}
		if a.Name == "" {
			return fmt.Errorf("value: name must be non-empty")
		}
		n.InNames[a.Port] = a.Name
		return nil
	})
	return nil, err
}
func (SetInName) Undoable() bool          { return true }
func (SetInName) CombinesWith(Action) bool { return false }

type SetOutName struct {
	ID   graph.NodeId
	Port int
	Name string
}

func (a SetOutName) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok || a.Port < 0 || a.Port >= len(n.OutNames) {
			return fmt.Errorf("structural: bad output port %s:%d", a.ID, a.Port)
		}
		if a.Name == "" {
			return fmt.Errorf("value: name must be non-empty")
		}
		n.OutNames[a.Port] = a.Name
		return nil
	})
	return nil, err
}
func (SetOutName) Undoable() bool          { return true }
func (SetOutName) CombinesWith(Action) bool { return false }

// --- Params ---------------------------------------------------------------

type SetParam struct {
	ID    graph.NodeId
	Name  string
	Value interface{}
}

func (a SetParam) Apply(m *Model) (interface{}, error) {
	err := atomic(m, func() error {
		n, ok := m.Project.Nodes[a.ID]
		if !ok {
			return fmt.Errorf("structural: unknown node %s", a.ID)
		}
		if n.Params == nil {
			n.Params = map[string]interface{}{}
		}
		n.Params[a.Name] = a.Value
		return nil
	})
	return nil, err
}
func (SetParam) Undoable() bool { return true }

// CombinesWith: only the "value" param name is combinable, so rapid knob
// drags compress into one undo entry while distinct params never merge.
func (a SetParam) CombinesWith(prev Action) bool {
	p, ok := prev.(SetParam)
	return ok && a.Name == "value" && p.Name == "value" && p.ID == a.ID
}

// --- Paste / Group ----------------------------------------------------

// Paste clones the given nodes with fresh ids, preserving edges that stay
// internal to the pasted set and dropping edges that reference a node
// outside it, offset to land near (X,Y), and skipping any unique kind
// already present in the project.
type Paste struct {
	Nodes map[graph.NodeId]*graph.Node
	X, Y  int
}

func (a Paste) Apply(m *Model) (interface{}, error) {
	var newIDs []graph.NodeId
	err := atomic(m, func() error {
		if len(a.Nodes) == 0 {
			return nil
		}
		minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
		for _, n := range a.Nodes {
			if n.X < minX {
				minX = n.X
			}
			if n.Y < minY {
				minY = n.Y
			}
		}
		uniquePresent := map[nodes.Kind]bool{}
		for _, n := range m.Project.Nodes {
			if sch, ok := m.Reg[n.Type]; ok && sch.Unique {
				uniquePresent[n.Type] = true
			}
		}

		idMap := map[graph.NodeId]graph.NodeId{}
		for oldID, n := range a.Nodes {
			sch, ok := m.Reg[n.Type]
			if ok && sch.Unique && uniquePresent[n.Type] {
				continue
			}
			idMap[oldID] = m.Project.AllocID()
		}
		for oldID, newID := range idMap {
			src := a.Nodes[oldID]
			cp := deepCopyNode(src)
			cp.X = src.X - minX + a.X
			cp.Y = src.Y - minY + a.Y
			for i, ref := range cp.Ins {
				if ref == nil {
					continue
				}
				if mappedSrc, ok := idMap[ref.SrcID]; ok {
					cp.Ins[i] = &graph.EdgeRef{SrcID: mappedSrc, SrcPortIdx: ref.SrcPortIdx}
				} else {
					cp.Ins[i] = nil // edge pointed outside the pasted selection
				}
			}
			m.Project.Nodes[newID] = cp
			newIDs = append(newIDs, newID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newIDs, nil
}
func (Paste) Undoable() bool          { return true }
func (Paste) CombinesWith(Action) bool { return false }

// GroupNodes replaces the selection with a single Module node; the
// sub-nodes' internal edges are preserved, external edges become the
// module's own inputs/outputs in stable (first-seen) order.
type GroupNodes struct{ IDs []graph.NodeId }

func (a GroupNodes) Apply(m *Model) (interface{}, error) {
	var moduleID graph.NodeId
	err := atomic(m, func() error {
		selected := map[graph.NodeId]bool{}
		for _, id := range a.IDs {
			selected[id] = true
		}
		sub := map[graph.NodeId]*graph.Node{}
		for _, id := range a.IDs {
			if n, ok := m.Project.Nodes[id]; ok {
				sub[id] = n
			}
		}

		// Stable-order external inputs: every Ins entry of a sub-node whose
		// source lies outside the selection becomes one module input port.
		var extIns []*graph.EdgeRef
		rewrites := map[graph.NodeId]map[int]int{} // subNodeID -> port -> module input idx
		for _, id := range a.IDs {
			n := sub[id]
			if n == nil {
				continue
			}
			for portIdx, ref := range n.Ins {
				if ref == nil || selected[ref.SrcID] {
					continue
				}
				idx := len(extIns)
				extIns = append(extIns, &graph.EdgeRef{SrcID: ref.SrcID, SrcPortIdx: ref.SrcPortIdx})
				if rewrites[id] == nil {
					rewrites[id] = map[int]int{}
				}
				rewrites[id][portIdx] = idx
			}
		}

		minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
		for _, n := range sub {
			if n.X < minX {
				minX = n.X
			}
			if n.Y < minY {
				minY = n.Y
			}
		}

		// Stable-order external outputs: every Ins entry anywhere outside
		// the selection whose source lies inside it becomes one module
		// output port, keyed by (subNodeID, srcPortIdx) so repeated
		// references to the same sub-node output reuse one module port.
		type outKey struct {
			id   graph.NodeId
			port int
		}
		var extOuts []outKey
		outIdx := map[outKey]int{}
		// Visit the outside nodes in sorted id order so the port order does
		// not depend on map iteration.
		outside := make([]graph.NodeId, 0, len(m.Project.Nodes))
		for id := range m.Project.Nodes {
			if !selected[id] {
				outside = append(outside, id)
			}
		}
		sort.Slice(outside, func(i, j int) bool { return outside[i] < outside[j] })
		for _, id := range outside {
			n := m.Project.Nodes[id]
			for _, ref := range n.Ins {
				if ref == nil || !selected[ref.SrcID] {
					continue
				}
				k := outKey{ref.SrcID, ref.SrcPortIdx}
				if _, ok := outIdx[k]; !ok {
					outIdx[k] = len(extOuts)
					extOuts = append(extOuts, k)
				}
			}
		}

		moduleID = m.Project.AllocID()

		for id, n := range m.Project.Nodes {
			if selected[id] {
				continue
			}
			for portIdx, ref := range n.Ins {
				if ref == nil || !selected[ref.SrcID] {
					continue
				}
				k := outKey{ref.SrcID, ref.SrcPortIdx}
				n.Ins[portIdx] = &graph.EdgeRef{SrcID: moduleID, SrcPortIdx: outIdx[k]}
			}
		}

		// rewrite each sub-node's external inputs to read from the module's
		// own input ports instead of the original outside source; internal
		// edges are left untouched since sub-node ids remain globally
		// unique and still resolve once spliced back in by the compiler's
		// module-inliner.
		subNodes := make(map[graph.NodeId]*graph.Node, len(sub))
		for id, n := range sub {
			cp := deepCopyNode(n)
			if ports, ok := rewrites[id]; ok {
				for portIdx, inputIdx := range ports {
					cp.Ins[portIdx] = &graph.EdgeRef{SrcID: moduleID, SrcPortIdx: inputIdx}
				}
			}
			subNodes[id] = cp
		}
		outMap := make([]graph.EdgeRef, len(extOuts))
		for i, k := range extOuts {
			outMap[i] = graph.EdgeRef{SrcID: k.id, SrcPortIdx: k.port}
		}

		module := &graph.Node{
			Type:   nodes.KindModule,
			Name:   "Module",
			X:      minX,
			Y:      minY,
			Ins:    extIns,
			Params: map[string]interface{}{},
			State: map[string]interface{}{
				"subNodes": subNodes,
				"outMap":   outMap,
			},
		}
		module.InNames = make([]string, len(extIns))
		for i := range module.InNames {
			module.InNames[i] = fmt.Sprintf("in%d", i)
		}
		module.OutNames = make([]string, len(extOuts))
		for i := range module.OutNames {
			module.OutNames[i] = fmt.Sprintf("out%d", i)
		}
		m.Project.Nodes[moduleID] = module

		for id := range selected {
			delete(m.Project.Nodes, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moduleID, nil
}
func (GroupNodes) Undoable() bool          { return true }
func (GroupNodes) CombinesWith(Action) bool { return false }
