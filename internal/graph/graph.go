// Package graph implements the project data model: nodes, edges as
// (nodeId, portIdx) index pairs, and the validation, normalization and
// serialization that keep it well-formed.
package graph

import "github.com/cbegin/synthgraph/internal/nodes"

// NodeId is a decimal-string node identifier, unique within a project
// including inside modules. It is never a pointer or a struct
// reference — edges address nodes by this string, matching the
// serialization form directly.
type NodeId string

// EdgeRef is an input-side reference to an upstream output port. A nil
// *EdgeRef means the input is unconnected.
type EdgeRef struct {
	SrcID     NodeId
	SrcPortIdx int
}

// Node is the common per-node shape.
type Node struct {
	Type     nodes.Kind
	Name     string
	X, Y     int
	Ins      []*EdgeRef
	InNames  []string
	OutNames []string
	Params   map[string]interface{}
	State    map[string]interface{}
}

// Project is the top-level authoritative document.
type Project struct {
	Title string
	Nodes map[NodeId]*Node

	nextID int
}

// New returns an empty project with the given title.
func New(title string) *Project {
	return &Project{Title: title, Nodes: map[NodeId]*Node{}}
}

// AllocID returns the next monotonically increasing decimal NodeId and
// reserves it.
func (p *Project) AllocID() NodeId {
	id := p.nextID
	p.nextID++
	return NodeId(itoa(id))
}

// observedMax scans existing node ids to seed nextID after a deserialize,
// so freshly allocated ids never collide with a loaded project's ids.
func (p *Project) observedMax() int {
	max := -1
	for id := range p.Nodes {
		if n, ok := parseDecimal(string(id)); ok && n > max {
			max = n
		}
	}
	return max
}

// SyncIDCounter rebases nextID above every id currently present. Called
// after deserialize and when a project is copied for an undo/redo
// snapshot, where ids arrive without going through AllocID.
func (p *Project) SyncIDCounter() {
	if m := p.observedMax(); m+1 > p.nextID {
		p.nextID = m + 1
	}
}

func parseDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
