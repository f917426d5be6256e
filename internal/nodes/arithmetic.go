package nodes

import "github.com/cbegin/synthgraph/internal/dsp"

// arithmeticSchemas registers the stateless numeric-only node kinds. Each
// is compiled as a pure combine of already-produced wire values, never a
// call into an Allocator.
func arithmeticSchemas(reg map[Kind]*Schema) {
	bin := func(name string, combine func(a, b float64) float64) *Schema {
		return &Schema{
			Kind: Kind(name),
			Ins:  []Port{{Name: "a", Default: 0}, {Name: "b", Default: 0}},
			Outs: []string{"out"},
			Stateless: true,
			Combine: func(ins []float64, _ map[string]interface{}) []float64 {
				return []float64{combine(In(ins, 0), In(ins, 1))}
			},
		}
	}

	reg[KindAdd] = bin("Add", func(a, b float64) float64 { return a + b })
	reg[KindSub] = bin("Sub", func(a, b float64) float64 { return a - b })
	reg[KindMul] = bin("Mul", func(a, b float64) float64 { return a * b })
	reg[KindDiv] = bin("Div", dsp.SafeDiv)
	reg[KindMod] = bin("Mod", dsp.SafeMod)
	reg[KindEqual] = bin("Equal", func(a, b float64) float64 {
		if a == b {
			return 1
		}
		return 0
	})
	reg[KindGreater] = bin("Greater", func(a, b float64) float64 {
		if a > b {
			return 1
		}
		return 0
	})

	reg[KindNop] = &Schema{
		Kind:      KindNop,
		Ins:       []Port{{Name: "in", Default: 0}},
		Outs:      []string{"out"},
		Stateless: true,
		Combine: func(ins []float64, _ map[string]interface{}) []float64 {
			return []float64{In(ins, 0)}
		},
	}

	reg[KindConst] = &Schema{
		Kind:   KindConst,
		Ins:    nil,
		Outs:   []string{"out"},
		Params: []Param{{Name: "value", Default: 0.0}},
		Stateless: true,
		Combine: func(_ []float64, params map[string]interface{}) []float64 {
			return []float64{ParamFloat(params, "value", 0)}
		},
	}

	knobMin, knobMax := -1.0, 1.0
	reg[KindKnob] = &Schema{
		Kind: KindKnob,
		Ins:  nil,
		Outs: []string{"out"},
		Params: []Param{
			{Name: "value", Default: 0.0, Min: &knobMin, Max: &knobMax},
			{Name: "minVal", Default: -1.0},
			{Name: "maxVal", Default: 1.0},
		},
		Stateless: true,
		Combine: func(_ []float64, params map[string]interface{}) []float64 {
			return []float64{ParamFloat(params, "value", 0)}
		},
	}
}
