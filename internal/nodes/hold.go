package nodes

// holdState backs the hold_write/hold_read pseudo-node pair, a
// sample-and-hold using the same write/read split as Delay but latching
// on a rising trigger edge instead of a ring buffer.
type holdState struct {
	latch    float64
	lastTrig float64
}

func (h *holdState) Update(variant string, ins []float64, _ Context) []float64 {
	switch variant {
	case "write":
		in := In(ins, 0)
		trig := In(ins, 1)
		if trig > 0 && h.lastTrig <= 0 {
			h.latch = in
		}
		h.lastTrig = trig
		return nil
	case "read":
		return []float64{h.latch}
	}
	return nil
}

func holdSchemas(reg map[Kind]*Schema) {
	reg[KindHold] = &Schema{
		Kind: KindHold,
		Ins:  []Port{{Name: "in", Default: 0}, {Name: "trig", Default: 0}},
		Outs: []string{"out"},
		Allocate: func(_ string, _ map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &holdState{}
		},
	}
}
