package nodes

import "math"

// oscillatorState is the shared phase-accumulator implementation behind
// Sine, Saw, Tri, Pulse and Noise. Each advances phase by freq*sampleTime
// every sample and maps the resulting waveform into [minVal, maxVal]. The
// accumulator technique and the deterministic
// hash-based random value (for Noise's sample-and-hold) follow
// internal/lfo.LFO.Sample, generalized from a depth/rate pair driven by an
// external clock to a freq input driven per sample.
type oscillatorState struct {
	kind       Kind
	phase      float64
	minVal     float64
	maxVal     float64
	width      float64 // Pulse duty cycle
	randVal    float64 // Noise held sample
	lastSyncIn float64 // Sine: previous sample of the sync input, for rising-edge detection
}

func newOscillatorState(kind Kind) Allocator {
	return func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
		return &oscillatorState{
			kind:   kind,
			minVal: ParamFloat(params, "minVal", -1),
			maxVal: ParamFloat(params, "maxVal", 1),
			width:  ParamFloat(params, "width", 0.5),
		}
	}
}

func (o *oscillatorState) Update(_ string, ins []float64, ctx Context) []float64 {
	freq := In(ins, 0)
	if o.kind == KindSine && len(ins) > 1 {
		sync := ins[1]
		if sync > 0 && o.lastSyncIn <= 0 {
			o.phase = 0
		}
		o.lastSyncIn = sync
	}

	var raw float64
	switch o.kind {
	case KindSine:
		raw = math.Sin(2 * math.Pi * o.phase)
	case KindSaw:
		raw = 2*o.phase - 1
	case KindTri:
		if o.phase < 0.5 {
			raw = 4*o.phase - 1
		} else {
			raw = 3 - 4*o.phase
		}
	case KindPulse:
		if o.phase < o.width {
			raw = 1
		} else {
			raw = -1
		}
	case KindNoise:
		raw = o.randVal
	}

	sampleTime := 0.0
	if ctx.SampleRate > 0 {
		sampleTime = 1.0 / ctx.SampleRate
	}
	prevPhase := o.phase
	o.phase += freq * sampleTime
	for o.phase >= 1 {
		o.phase -= 1
	}
	for o.phase < 0 {
		o.phase += 1
	}
	if o.kind == KindNoise && (o.phase < prevPhase || prevPhase == 0) {
		o.randVal = math.Sin(o.phase*12345.6789+o.randVal*67890.1234)*2 - 1
		if o.randVal > 1 {
			o.randVal -= 2
		}
		if o.randVal < -1 {
			o.randVal += 2
		}
	}

	out := o.minVal + (raw+1)/2*(o.maxVal-o.minVal)
	return []float64{out}
}

func (o *oscillatorState) SetParam(name string, value interface{}) {
	switch name {
	case "minVal":
		o.minVal = floatFromAny(value, o.minVal)
	case "maxVal":
		o.maxVal = floatFromAny(value, o.maxVal)
	case "width":
		o.width = floatFromAny(value, o.width)
	}
}

func oscillatorSchemas(reg map[Kind]*Schema) {
	minValDef, maxValDef := -1.0, 1.0
	base := func(kind Kind, ins []Port) *Schema {
		return &Schema{
			Kind: kind,
			Ins:  ins,
			Outs: []string{"out"},
			Params: []Param{
				{Name: "minVal", Default: minValDef},
				{Name: "maxVal", Default: maxValDef},
			},
			Allocate: newOscillatorState(kind),
		}
	}
	reg[KindSine] = base(KindSine, []Port{{Name: "freq", Default: 440}, {Name: "sync", Default: 0}})
	reg[KindSaw] = base(KindSaw, []Port{{Name: "freq", Default: 440}})
	reg[KindTri] = base(KindTri, []Port{{Name: "freq", Default: 440}})
	pulse := base(KindPulse, []Port{{Name: "freq", Default: 440}})
	pulse.Params = append(pulse.Params, Param{Name: "width", Default: 0.5})
	reg[KindPulse] = pulse
	reg[KindNoise] = base(KindNoise, []Port{{Name: "freq", Default: 1}})
}
