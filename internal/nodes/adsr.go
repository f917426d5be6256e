package nodes

// envPhase mirrors internal/wavetable.Engine's envAttack/envDecay/
// envSustain/envRelease/envOff enum, generalized here from a fixed voice
// envelope to a standalone graph node driven by an arbitrary gate input.
type envPhase int

const (
	envOff envPhase = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

type adsrState struct {
	attack, decay, sustain, release float64
	phase                           envPhase
	level                           float64
	lastGate                        float64
}

func (e *adsrState) Update(_ string, ins []float64, ctx Context) []float64 {
	gate := In(ins, 0)
	if gate > 0 && e.lastGate <= 0 {
		e.phase = envAttack
	} else if gate <= 0 && e.lastGate > 0 && e.phase != envOff {
		e.phase = envRelease
	}
	e.lastGate = gate

	sampleTime := 0.0
	if ctx.SampleRate > 0 {
		sampleTime = 1.0 / ctx.SampleRate
	}

	switch e.phase {
	case envAttack:
		if e.attack <= 0 {
			e.level = 1
		} else {
			e.level += sampleTime / e.attack
		}
		if e.level >= 1 {
			e.level = 1
			e.phase = envDecay
		}
	case envDecay:
		if e.decay <= 0 {
			e.level = e.sustain
		} else {
			e.level -= sampleTime / e.decay * (1 - e.sustain)
		}
		if e.level <= e.sustain {
			e.level = e.sustain
			e.phase = envSustain
		}
	case envSustain:
		e.level = e.sustain
	case envRelease:
		if e.release <= 0 {
			e.level = 0
		} else {
			e.level -= sampleTime / e.release
		}
		if e.level <= 0 {
			e.level = 0
			e.phase = envOff
		}
	case envOff:
		e.level = 0
	}
	return []float64{e.level}
}

func (e *adsrState) SetParam(name string, value interface{}) {
	switch name {
	case "attack":
		e.attack = floatFromAny(value, e.attack)
	case "decay":
		e.decay = floatFromAny(value, e.decay)
	case "sustain":
		e.sustain = floatFromAny(value, e.sustain)
	case "release":
		e.release = floatFromAny(value, e.release)
	}
}

func (e *adsrState) ResetTransient() {
	e.phase = envOff
	e.level = 0
	e.lastGate = 0
}

func adsrSchemas(reg map[Kind]*Schema) {
	reg[KindADSR] = &Schema{
		Kind: KindADSR,
		Ins:  []Port{{Name: "gate", Default: 0}},
		Outs: []string{"out"},
		Params: []Param{
			{Name: "attack", Default: 0.01},
			{Name: "decay", Default: 0.1},
			{Name: "sustain", Default: 0.7},
			{Name: "release", Default: 0.2},
		},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &adsrState{
				attack:  ParamFloat(params, "attack", 0.01),
				decay:   ParamFloat(params, "decay", 0.1),
				sustain: ParamFloat(params, "sustain", 0.7),
				release: ParamFloat(params, "release", 0.2),
			}
		},
	}
}
