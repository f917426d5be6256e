package graph

import (
	"fmt"

	"github.com/cbegin/synthgraph/internal/nodes"
)

const (
	maxTitleLen = 50
	maxNameLen  = 12
)

// ValidationError reports one failed invariant or field constraint.
// Structural failures (unknown kind, bad id syntax, broken edge
// references) and value failures (range, length) both surface through
// this type; callers distinguish them via Kind if they need to.
type ValidationError struct {
	Kind   string // "structural" | "value"
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func structuralErr(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: "structural", Detail: fmt.Sprintf(format, args...)}
}

func valueErr(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: "value", Detail: fmt.Sprintf(format, args...)}
}

// Validate checks structural invariants, id syntax, and every field
// constraint the schema registry declares. It never mutates the project:
// validation is total and pure.
func Validate(p *Project, reg map[nodes.Kind]*nodes.Schema) error {
	if len(p.Title) > maxTitleLen {
		return valueErr("title length %d exceeds %d", len(p.Title), maxTitleLen)
	}

	uniqueSeen := map[nodes.Kind]bool{}
	audioOutCount := 0

	for id, n := range p.Nodes {
		if _, ok := parseDecimal(string(id)); !ok {
			return structuralErr("node id %q is not a decimal string", id)
		}
		sch, ok := reg[n.Type]
		if !ok {
			return structuralErr("node %s: unknown kind %q", id, n.Type)
		}
		if len(n.Name) < 1 || len(n.Name) > maxNameLen {
			return valueErr("node %s: name length %d out of [1,%d]", id, len(n.Name), maxNameLen)
		}
		if sch.Unique {
			if uniqueSeen[n.Type] {
				return structuralErr("node %s: duplicate unique kind %q", id, n.Type)
			}
			uniqueSeen[n.Type] = true
		}
		if n.Type == nodes.KindAudioOut {
			audioOutCount++
		}

		if err := validateIns(p, id, n, sch, reg); err != nil {
			return err
		}
		if err := validateParams(id, n, sch); err != nil {
			return err
		}
		if err := validatePatterns(id, n, sch); err != nil {
			return err
		}
	}

	if audioOutCount > 1 {
		return structuralErr("graph contains %d AudioOut nodes, at most 1 allowed", audioOutCount)
	}

	return nil
}

// validateIns checks that every input is either null or a valid
// (srcId, srcPortIdx) with srcPortIdx within the source's output arity,
// and that ins length matches schema arity. A Module's ports are built by
// GroupNodes rather than declared by its schema, so its input count is not
// checked against the schema and its output arity is len(OutNames).
func validateIns(p *Project, id NodeId, n *Node, sch *nodes.Schema, reg map[nodes.Kind]*nodes.Schema) error {
	if n.Type != nodes.KindModule && len(n.Ins) != len(sch.Ins) {
		return structuralErr("node %s: ins length %d != schema arity %d", id, len(n.Ins), len(sch.Ins))
	}
	for i, ref := range n.Ins {
		if ref == nil {
			continue
		}
		src, ok := p.Nodes[ref.SrcID]
		if !ok {
			return structuralErr("node %s input %d: references missing node %s", id, i, ref.SrcID)
		}
		srcSchema, ok := reg[src.Type]
		if !ok {
			return structuralErr("node %s input %d: source %s has unknown kind %q", id, i, ref.SrcID, src.Type)
		}
		arity := srcSchema.OutArity(src.State)
		if src.Type == nodes.KindModule {
			arity = len(src.OutNames)
		}
		if ref.SrcPortIdx < 0 || ref.SrcPortIdx >= arity {
			return structuralErr("node %s input %d: srcPortIdx %d out of range for %s (arity %d)",
				id, i, ref.SrcPortIdx, ref.SrcID, arity)
		}
	}
	return nil
}

func validateParams(id NodeId, n *Node, sch *nodes.Schema) error {
	for _, pDef := range sch.Params {
		v, present := n.Params[pDef.Name]
		if !present {
			continue
		}
		switch pDef.Default.(type) {
		case float64, int:
			f, ok := asFloat(v)
			if !ok {
				return valueErr("node %s param %q: expected number", id, pDef.Name)
			}
			if pDef.Min != nil && f < *pDef.Min {
				return valueErr("node %s param %q: %v below min %v", id, pDef.Name, f, *pDef.Min)
			}
			if pDef.Max != nil && f > *pDef.Max {
				return valueErr("node %s param %q: %v above max %v", id, pDef.Name, f, *pDef.Max)
			}
		case string:
			if _, ok := v.(string); !ok && v != nil {
				return valueErr("node %s param %q: expected string", id, pDef.Name)
			}
		}
	}

	if minV, hasMin := n.Params["minVal"]; hasMin {
		if maxV, hasMax := n.Params["maxVal"]; hasMax {
			minF, _ := asFloat(minV)
			maxF, _ := asFloat(maxV)
			if val, hasVal := n.Params["value"]; hasVal {
				valF, _ := asFloat(val)
				if valF < minF || valF > maxF {
					return valueErr("node %s: value %v out of [%v,%v]", id, valF, minF, maxF)
				}
			}
		}
	}

	if n.Type == nodes.KindClockDiv {
		if f, ok := n.Params["factor"]; ok {
			ff, _ := asFloat(f)
			if ff <= 0 {
				return valueErr("node %s: factor must be > 0", id)
			}
		}
	}
	if ch, ok := n.Params["channel"]; ok && ch != nil {
		f, _ := asFloat(ch)
		if f < 1 || f > 16 {
			return valueErr("node %s: channel %v out of [1,16]", id, f)
		}
	}
	return nil
}

// validatePatterns checks grid rectangularity, numSteps%16==0, binary
// cells, and MonoSeq monophony.
func validatePatterns(id NodeId, n *Node, sch *nodes.Schema) error {
	if sch.Kind != nodes.KindMonoSeq && sch.Kind != nodes.KindGateSeq {
		return nil
	}
	patterns, ok := n.State["patterns"].([]interface{})
	if !ok {
		return nil
	}
	for pi, p := range patterns {
		rows, ok := p.([]interface{})
		if !ok {
			continue
		}
		numSteps := len(rows)
		if numSteps%16 != 0 {
			return structuralErr("node %s pattern %d: numSteps %d not a multiple of 16", id, pi, numSteps)
		}
		var numRows int
		for si, r := range rows {
			cells, ok := r.([]interface{})
			if !ok {
				continue
			}
			if si == 0 {
				numRows = len(cells)
			} else if len(cells) != numRows {
				return structuralErr("node %s pattern %d: ragged grid at step %d", id, pi, si)
			}
			active := 0
			for _, c := range cells {
				f, _ := asFloat(c)
				if f != 0 && f != 1 {
					return structuralErr("node %s pattern %d step %d: non-binary cell %v", id, pi, si, c)
				}
				if f != 0 {
					active++
				}
			}
			if sch.Kind == nodes.KindMonoSeq && active > 1 {
				return structuralErr("node %s pattern %d step %d: %d active cells, MonoSeq is monophonic", id, pi, si, active)
			}
		}
	}
	return nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
