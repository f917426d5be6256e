package nodes

import "github.com/cbegin/synthgraph/internal/message"

// ClockPPQ (CLOCK_PPQ) is the system-wide pulses-per-quarter-note constant.
const ClockPPQ = 24

type clockState struct {
	phase float64
	bpm   float64
}

func (c *clockState) Update(_ string, ins []float64, ctx Context) []float64 {
	bpm := c.bpm
	if len(ins) > 0 && ins[0] > 0 {
		bpm = ins[0]
	}
	freq := ClockPPQ * bpm / 60.0
	sampleTime := 0.0
	if ctx.SampleRate > 0 {
		sampleTime = 1.0 / ctx.SampleRate
	}
	var out float64
	if c.phase < 0.5 {
		out = 1
	} else {
		out = -1
	}
	c.phase += freq * sampleTime
	for c.phase >= 1 {
		c.phase -= 1
	}
	return []float64{out}
}

func (c *clockState) SetParam(name string, value interface{}) {
	if name == "bpm" {
		c.bpm = floatFromAny(value, c.bpm)
	}
}

type clockDivState struct {
	factor   int
	count    int
	level    float64
	lastIn   float64
}

func (d *clockDivState) Update(_ string, ins []float64, _ Context) []float64 {
	in := In(ins, 0)
	factor := d.factor
	if len(ins) > 1 && ins[1] > 0 {
		factor = int(ins[1])
	}
	if factor < 1 {
		factor = 1
	}
	if in > 0 && d.lastIn <= 0 {
		d.count++
		if d.count >= factor {
			d.count = 0
			d.level = -d.level
			if d.level == 0 {
				d.level = 1
			}
		}
	}
	d.lastIn = in
	return []float64{d.level}
}

func (d *clockDivState) SetParam(name string, value interface{}) {
	if name == "factor" {
		d.factor = int(floatFromAny(value, float64(d.factor)))
	}
}

// clockOutState is a sink node: it consumes a clock/gate signal and emits
// CLOCK_PULSE messages on rising edges,
// producing no audio-rate output of its own.
type clockOutState struct {
	nodeID   string
	lastIn   float64
	pending  []message.FromEngine
}

func (c *clockOutState) Update(_ string, ins []float64, ctx Context) []float64 {
	in := In(ins, 0)
	if in > 0 && c.lastIn <= 0 {
		c.pending = append(c.pending, message.FromEngine{
			Kind:   message.ClockPulse,
			NodeID: c.nodeID,
			Time:   ctx.Time,
		})
	}
	c.lastIn = in
	return nil
}

func (c *clockOutState) DrainMessages() []message.FromEngine {
	msgs := c.pending
	c.pending = nil
	return msgs
}

func clockSchemas(reg map[Kind]*Schema) {
	reg[KindClock] = &Schema{
		Kind:   KindClock,
		Ins:    []Port{{Name: "bpm", Default: 120}},
		Outs:   []string{"out"},
		Params: []Param{{Name: "bpm", Default: 120.0}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &clockState{bpm: ParamFloat(params, "bpm", 120)}
		},
	}
	reg[KindClockDiv] = &Schema{
		Kind:   KindClockDiv,
		Ins:    []Port{{Name: "in", Default: 0}, {Name: "factor", Default: 2}},
		Outs:   []string{"out"},
		Params: []Param{{Name: "factor", Default: 2.0}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &clockDivState{factor: ParamInt(params, "factor", 2), level: 1}
		},
	}
	reg[KindClockOut] = &Schema{
		Kind: KindClockOut,
		Ins:  []Port{{Name: "in", Default: 0}},
		Outs: nil,
		Allocate: func(nodeID string, _ map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &clockOutState{nodeID: nodeID}
		},
	}
}
