package nodes

import "math"

// filterState is a Chamberlin two-pole state-variable filter: numerically
// stable at audio rate and cheap enough for per-sample coefficient
// recomputation, unlike a biquad's precomputed-coefficient form. cutoff
// and reso are both normalized to [0,1].
type filterState struct {
	cutoff, reso   float64
	low, band      float64
}

func (f *filterState) Update(_ string, ins []float64, ctx Context) []float64 {
	in := In(ins, 0)
	cutoff := f.cutoff
	if len(ins) > 1 {
		cutoff = ins[1]
	}
	reso := f.reso
	if len(ins) > 2 {
		reso = ins[2]
	}
	cutoff = clamp01(cutoff)
	reso = clamp01(reso)

	// f is the SVF's normalized center frequency, mapped through sin so it
	// does not fold back as cutoff approaches 1 (Nyquist). The Chamberlin
	// loop is only stable while f*f + 2*f*q < 4, so f is also capped just
	// inside that bound for the current damping q.
	freqCoeff := 2 * math.Sin(math.Pi*math.Min(cutoff, 0.495))
	q := 1 - 0.99*reso
	if fMax := 0.99 * (math.Sqrt(q*q+4) - q); freqCoeff > fMax {
		freqCoeff = fMax
	}

	high := in - f.low - q*f.band
	f.band += freqCoeff * high
	f.low += freqCoeff * f.band
	return []float64{f.low}
}

func (f *filterState) SetParam(name string, value interface{}) {
	switch name {
	case "cutoff":
		f.cutoff = floatFromAny(value, f.cutoff)
	case "reso":
		f.reso = floatFromAny(value, f.reso)
	}
}

func (f *filterState) ResetTransient() {
	f.low, f.band = 0, 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func filterSchemas(reg map[Kind]*Schema) {
	reg[KindFilter] = &Schema{
		Kind: KindFilter,
		Ins: []Port{
			{Name: "in", Default: 0},
			{Name: "cutoff", Default: 0.5},
			{Name: "reso", Default: 0},
		},
		Outs: []string{"out"},
		Params: []Param{
			{Name: "cutoff", Default: 0.5},
			{Name: "reso", Default: 0.0},
		},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &filterState{
				cutoff: ParamFloat(params, "cutoff", 0.5),
				reso:   ParamFloat(params, "reso", 0),
			}
		},
	}
}
