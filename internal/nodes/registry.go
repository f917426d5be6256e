package nodes

// Schemas returns the complete closed NodeKind schema registry,
// aggregating every per-file *Schemas registration function plus the four
// internal cycle-breaker pseudo-kinds.
func Schemas() map[Kind]*Schema {
	reg := make(map[Kind]*Schema)

	arithmeticSchemas(reg)
	oscillatorSchemas(reg)
	clockSchemas(reg)
	delaySchemas(reg)
	holdSchemas(reg)
	filterSchemas(reg)
	shapingSchemas(reg)
	adsrSchemas(reg)
	scopeSchemas(reg)
	sequencerSchemas(reg)
	ioSchemas(reg)
	internalSchemas(reg)

	return reg
}

// internalSchemas registers the delay_read/delay_write/hold_read/
// hold_write pseudo-kinds the compiler emits when it splits a Delay or
// Hold node to break a cycle. They share the parent
// node's Allocate (same delayState/holdState instance, dispatched by
// variant) but carry their own Ins/Outs since read has no graph inputs and
// write has no graph outputs.
func internalSchemas(reg map[Kind]*Schema) {
	reg[KindDelayWrite] = &Schema{
		Kind:     KindDelayWrite,
		Ins:      []Port{{Name: "in", Default: 0}, {Name: "time", Default: 0.3}},
		Outs:     nil,
		Internal: true,
	}
	reg[KindDelayRead] = &Schema{
		Kind:     KindDelayRead,
		Ins:      nil,
		Outs:     []string{"out"},
		Internal: true,
	}
	reg[KindHoldWrite] = &Schema{
		Kind:     KindHoldWrite,
		Ins:      []Port{{Name: "in", Default: 0}, {Name: "trig", Default: 0}},
		Outs:     nil,
		Internal: true,
	}
	reg[KindHoldRead] = &Schema{
		Kind:     KindHoldRead,
		Ins:      nil,
		Outs:     []string{"out"},
		Internal: true,
	}
}
