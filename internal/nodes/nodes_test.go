package nodes

import (
	"math"
	"testing"
)

const testSampleRate = 44100.0

func TestSineOscillatorMatchesClosedForm(t *testing.T) {
	sch := Schemas()[KindSine]
	u := sch.Allocate("0", nil, nil, testSampleRate)
	ctx := Context{SampleRate: testSampleRate}
	out0 := u.Update("", []float64{440}, ctx)[0]
	out1 := u.Update("", []float64{440}, ctx)[0]
	want0 := math.Sin(2 * math.Pi * 440 * 0 / testSampleRate)
	want1 := math.Sin(2 * math.Pi * 440 * 1 / testSampleRate)
	if math.Abs(out0-want0) > 1e-9 {
		t.Errorf("sample 0 = %v, want %v", out0, want0)
	}
	if math.Abs(out1-want1) > 1e-9 {
		t.Errorf("sample 1 = %v, want %v", out1, want1)
	}
}

func TestAudioOutGain(t *testing.T) {
	sch := Schemas()[KindAudioOut]
	u := sch.Allocate("0", nil, nil, testSampleRate)
	out := u.Update("", []float64{1, -1}, Context{})
	if out[0] != 0.3 || out[1] != -0.3 {
		t.Fatalf("got %v, want [0.3 -0.3]", out)
	}
}

func TestDelayReadLagsOneSampleBehindWrite(t *testing.T) {
	sch := delaySchemasFor(t)
	u := sch.Allocate("0", map[string]interface{}{"maxDelaySec": 1.0}, nil, testSampleRate)
	d := u.(*delayState)

	// Write 1.0 with time=0.01 into an empty line: the read that follows
	// looks 0.01s (441 samples) back, past the sample just written, so it
	// must still see silence.
	d.Update("write", []float64{1.0, 0.01}, Context{})
	readBefore := d.Update("read", nil, Context{})[0]
	if readBefore != 0 {
		t.Fatalf("expected a read 0.01s back to see the empty line, got %v", readBefore)
	}
}

func delaySchemasFor(t *testing.T) *Schema {
	t.Helper()
	reg := map[Kind]*Schema{}
	delaySchemas(reg)
	return reg[KindDelay]
}

func TestHoldLatchesOnRisingEdge(t *testing.T) {
	h := &holdState{}
	h.Update("write", []float64{5, 0}, Context{})
	if out := h.Update("read", nil, Context{})[0]; out != 0 {
		t.Fatalf("expected no latch before trigger, got %v", out)
	}
	h.Update("write", []float64{5, 1}, Context{})
	if out := h.Update("read", nil, Context{})[0]; out != 5 {
		t.Fatalf("expected latched value 5, got %v", out)
	}
	h.Update("write", []float64{9, 1}, Context{}) // trig still high, no new edge
	if out := h.Update("read", nil, Context{})[0]; out != 5 {
		t.Fatalf("expected latch to hold at 5 without a new rising edge, got %v", out)
	}
}

func TestFilterIsStableAtFullCutoff(t *testing.T) {
	f := &filterState{cutoff: 1.0, reso: 0.9}
	ctx := Context{SampleRate: testSampleRate}
	for i := 0; i < 1000; i++ {
		out := f.Update("", []float64{1}, ctx)[0]
		if math.IsNaN(out) || math.IsInf(out, 0) || math.Abs(out) > 100 {
			t.Fatalf("filter diverged at sample %d: %v", i, out)
		}
	}
}

func TestSafeDivAndModClampToZero(t *testing.T) {
	reg := map[Kind]*Schema{}
	arithmeticSchemas(reg)
	div := reg[KindDiv].Combine([]float64{1, 0}, nil)
	if div[0] != 0 {
		t.Fatalf("Div by zero = %v, want 0", div[0])
	}
	mod := reg[KindMod].Combine([]float64{1, 0}, nil)
	if mod[0] != 0 {
		t.Fatalf("Mod by zero = %v, want 0", mod[0])
	}
}

func TestMonoSeqAdvancesOnClockPulses(t *testing.T) {
	reg := Schemas()
	state := map[string]interface{}{
		"scaleRoot":  "C2",
		"scaleName":  "major",
		"numOctaves": 1.0,
		"patterns": []interface{}{
			[]interface{}{
				[]interface{}{1.0, 0.0},
				[]interface{}{0.0, 1.0},
			},
		},
		"curPattern": 0.0,
	}
	u := reg[KindMonoSeq].Allocate("0", nil, state, testSampleRate)

	clockSch := reg[KindClock]
	clock := clockSch.Allocate("1", map[string]interface{}{"bpm": 120.0}, nil, testSampleRate)

	ctx := Context{SampleRate: testSampleRate}
	sawStep1 := false
	for i := 0; i < 6000; i++ {
		ctx.Time = float64(i) / testSampleRate
		clockOut := clock.Update("", nil, ctx)[0]
		out := u.Update("", []float64{clockOut, 0.1}, ctx)
		s := u.(*monoSeqState)
		if s.curStep == 1 && out[1] >= 0 {
			sawStep1 = true
		}
	}
	if !sawStep1 {
		t.Fatal("expected MonoSeq to advance to step 1 within 6000 samples at 120 BPM")
	}
}

func TestScopeCapturesEverySendRateCallsAndSendsSendSizeBatches(t *testing.T) {
	sch := Schemas()[KindScope]
	u := sch.Allocate("0", map[string]interface{}{"sendSize": 4.0, "sendRate": 2.0, "historyLen": 8.0}, nil, testSampleRate)
	s := u.(*scopeState)
	emitter := u.(MessageEmitter)

	ctx := Context{SampleRate: testSampleRate}
	for i := 0; i < 16; i++ {
		ctx.Time = float64(i) / testSampleRate
		u.Update("", []float64{float64(i)}, ctx)
	}

	// sendRate=2 decimates to one captured sample every other call: 16
	// calls -> 8 captured samples -> two sendSize=4 batches emitted.
	msgs := emitter.DrainMessages()
	if len(msgs) != 2 {
		t.Fatalf("got %d SEND_SAMPLES messages, want 2", len(msgs))
	}
	if len(msgs[0].Samples) != 4 || len(msgs[1].Samples) != 4 {
		t.Fatalf("expected each batch to carry sendSize=4 samples, got %v and %v", msgs[0].Samples, msgs[1].Samples)
	}

	// historyLen=8 bounds the ring regardless of how many calls occurred.
	if s.ringLen != 8 || len(s.ring) != 8 {
		t.Fatalf("expected ring bounded to historyLen=8, got ringLen=%d len=%d", s.ringLen, len(s.ring))
	}
}
