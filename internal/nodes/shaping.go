package nodes

import "github.com/cbegin/synthgraph/internal/dsp"

// distortState wraps dsp.SoftClip/dsp.TanhClip, generalizing
// internal/effects/distortion.go's fixed-curve tanh shaper into a
// per-sample node with a live "amt" param and a choice of curve.
type distortState struct {
	amt   float64
	shape string
}

func (d *distortState) Update(_ string, ins []float64, _ Context) []float64 {
	in := In(ins, 0)
	amt := d.amt
	if len(ins) > 1 {
		amt = ins[1]
	}
	if d.shape == "tanh" {
		return []float64{dsp.TanhClip(in, amt)}
	}
	return []float64{dsp.SoftClip(in, amt)}
}

func (d *distortState) SetParam(name string, value interface{}) {
	switch name {
	case "amt":
		d.amt = floatFromAny(value, d.amt)
	case "shape":
		if s, ok := value.(string); ok {
			d.shape = s
		}
	}
}

// foldState wraps dsp.Fold, a wave-folder rather than a hard clipper: past
// the fold point the signal reflects back down instead of flattening.
type foldState struct {
	rate float64
}

func (f *foldState) Update(_ string, ins []float64, _ Context) []float64 {
	in := In(ins, 0)
	rate := f.rate
	if len(ins) > 1 {
		rate = ins[1]
	}
	return []float64{dsp.Fold(in, rate)}
}

func (f *foldState) SetParam(name string, value interface{}) {
	if name == "rate" {
		f.rate = floatFromAny(value, f.rate)
	}
}

// bitCrushState quantizes both amplitude (bits) and time (rate, a sample-
// and-hold divider) the way classic lo-fi effects units do.
type bitCrushState struct {
	bits     float64
	rate     float64
	phase    float64
	held     float64
}

func (b *bitCrushState) Update(_ string, ins []float64, ctx Context) []float64 {
	in := In(ins, 0)
	bits := b.bits
	if len(ins) > 1 {
		bits = ins[1]
	}
	rate := b.rate
	if len(ins) > 2 {
		rate = ins[2]
	}
	if rate < 1 {
		rate = 1
	}

	if b.phase <= 0 {
		levels := pow2(bits)
		held := in
		if levels > 1 {
			held = float64(int(in*levels)) / levels
		}
		b.held = held
		sampleTime := 0.0
		if ctx.SampleRate > 0 {
			sampleTime = 1.0 / ctx.SampleRate
		}
		b.phase = 1.0 / (rate * sampleTime)
	}
	b.phase--
	return []float64{b.held}
}

func pow2(bits float64) float64 {
	if bits <= 0 {
		return 0
	}
	v := 1.0
	n := int(bits)
	for i := 0; i < n; i++ {
		v *= 2
	}
	return v
}

func (b *bitCrushState) SetParam(name string, value interface{}) {
	switch name {
	case "bits":
		b.bits = floatFromAny(value, b.bits)
	case "rate":
		b.rate = floatFromAny(value, b.rate)
	}
}

func (b *bitCrushState) ResetTransient() {
	b.phase, b.held = 0, 0
}

// slideState is a one-pole slew limiter (portamento), stepping toward its
// target by at most 1/(time*sampleRate) per sample.
type slideState struct {
	time    float64
	current float64
}

func (s *slideState) Update(_ string, ins []float64, ctx Context) []float64 {
	target := In(ins, 0)
	t := s.time
	if t <= 0 || ctx.SampleRate <= 0 {
		s.current = target
		return []float64{s.current}
	}
	maxStep := 1.0 / (t * ctx.SampleRate)
	diff := target - s.current
	switch {
	case diff > maxStep:
		s.current += maxStep
	case diff < -maxStep:
		s.current -= maxStep
	default:
		s.current = target
	}
	return []float64{s.current}
}

func (s *slideState) SetParam(name string, value interface{}) {
	if name == "time" {
		s.time = floatFromAny(value, s.time)
	}
}

func (s *slideState) ResetTransient() {
	s.current = 0
}

func shapingSchemas(reg map[Kind]*Schema) {
	reg[KindDistort] = &Schema{
		Kind: KindDistort,
		Ins:  []Port{{Name: "in", Default: 0}, {Name: "amt", Default: 0.5}},
		Outs: []string{"out"},
		Params: []Param{
			{Name: "amt", Default: 0.5},
			{Name: "shape", Default: "soft"}, // "soft" (dsp.SoftClip) or "tanh" (dsp.TanhClip)
		},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &distortState{
				amt:   ParamFloat(params, "amt", 0.5),
				shape: ParamString(params, "shape", "soft"),
			}
		},
	}
	reg[KindFold] = &Schema{
		Kind:   KindFold,
		Ins:    []Port{{Name: "in", Default: 0}, {Name: "rate", Default: 1.0}},
		Outs:   []string{"out"},
		Params: []Param{{Name: "rate", Default: 1.0}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &foldState{rate: ParamFloat(params, "rate", 1.0)}
		},
	}
	reg[KindBitCrush] = &Schema{
		Kind: KindBitCrush,
		Ins: []Port{
			{Name: "in", Default: 0},
			{Name: "bits", Default: 8},
			{Name: "rate", Default: 44100},
		},
		Outs:   []string{"out"},
		Params: []Param{{Name: "bits", Default: 8.0}, {Name: "rate", Default: 44100.0}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &bitCrushState{
				bits: ParamFloat(params, "bits", 8),
				rate: ParamFloat(params, "rate", 44100),
			}
		},
	}
	reg[KindSlide] = &Schema{
		Kind:   KindSlide,
		Ins:    []Port{{Name: "in", Default: 0}},
		Outs:   []string{"out"},
		Params: []Param{{Name: "time", Default: 0.05}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &slideState{time: ParamFloat(params, "time", 0.05)}
		},
	}
}
