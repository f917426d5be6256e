package nodes

import "github.com/cbegin/synthgraph/internal/dsp"

// delayState backs both the delay_write and delay_read pseudo-nodes
// produced by the compiler's cycle-breaker split; they
// share one delayState instance keyed by the original Delay node's id, the
// way internal/effects.Delay owns one ring buffer per effect instance,
// generalized here to a read/write pair instead of one fixed tap.
//
// delay_read is scheduled before delay_write in every plan (it has no
// graph inputs, so nothing orders after it), so a read always observes
// the time value from the *previous* sample's write: a one-sample control
// latency that keeps the read side free of this-sample's still-unresolved
// "time" input.
type delayState struct {
	buf         *dsp.RingBuffer
	sampleRate  float64
	maxDelaySec float64
	timeSec     float64
}

func (d *delayState) Update(variant string, ins []float64, _ Context) []float64 {
	switch variant {
	case "write":
		d.buf.Write(In(ins, 0))
		d.timeSec = In(ins, 1)
		return nil
	case "read":
		t := d.timeSec
		if t < 0 {
			t = 0
		}
		if t > d.maxDelaySec {
			t = d.maxDelaySec
		}
		return []float64{d.buf.Read(t * d.sampleRate)}
	}
	return nil
}

func (d *delayState) ResetTransient() {
	d.buf.Reset()
}

func delaySchemas(reg map[Kind]*Schema) {
	reg[KindDelay] = &Schema{
		Kind:   KindDelay,
		Ins:    []Port{{Name: "in", Default: 0}, {Name: "time", Default: 0.3}},
		Outs:   []string{"out"},
		Params: []Param{{Name: "maxDelaySec", Default: 1.0}},
		Allocate: func(_ string, params map[string]interface{}, _ map[string]interface{}, sampleRate float64) Updater {
			maxSec := ParamFloat(params, "maxDelaySec", 1.0)
			if maxSec <= 0 {
				maxSec = 1.0
			}
			return &delayState{
				buf:         dsp.NewRingBuffer(int(maxSec*sampleRate) + 1),
				sampleRate:  sampleRate,
				maxDelaySec: maxSec,
			}
		},
	}
}
