package nodes

import "github.com/cbegin/synthgraph/internal/message"

// scopeState is a pass-through sink: it forwards its input unchanged and
// separately keeps one input sample out of every sendRate calls, writing
// it into a bounded ring buffer and sending every sendSize captured
// samples as one SEND_SAMPLES message. samples/ring are
// declared state but flagged Transient: neither is
// ever worth persisting across save/load or restoring on NEW_UNIT, only
// ever rebuilt live.
type scopeState struct {
	nodeID string

	sendSize   int
	sendRate   int
	historyLen int

	calls   int
	capture []float64

	ring    []float64
	ringPos int
	ringLen int

	pending []message.FromEngine
}

func (s *scopeState) Update(_ string, ins []float64, ctx Context) []float64 {
	in := In(ins, 0)

	s.calls++
	if s.sendRate <= 0 || s.calls%s.sendRate != 0 {
		return []float64{in}
	}

	if len(s.ring) > 0 {
		s.ring[s.ringPos] = in
		s.ringPos = (s.ringPos + 1) % len(s.ring)
		if s.ringLen < len(s.ring) {
			s.ringLen++
		}
	}

	s.capture = append(s.capture, in)
	if s.sendSize > 0 && len(s.capture) >= s.sendSize {
		buf := s.capture
		s.capture = nil
		s.pending = append(s.pending, message.FromEngine{
			Kind:    message.SendSamples,
			NodeID:  s.nodeID,
			Samples: buf,
			Time:    ctx.Time,
		})
	}
	return []float64{in}
}

func (s *scopeState) DrainMessages() []message.FromEngine {
	msgs := s.pending
	s.pending = nil
	return msgs
}

func (s *scopeState) ResetTransient() {
	s.calls = 0
	s.capture = nil
	s.ring = make([]float64, s.historyLen)
	s.ringPos, s.ringLen = 0, 0
	s.pending = nil
}

func scopeSchemas(reg map[Kind]*Schema) {
	reg[KindScope] = &Schema{
		Kind: KindScope,
		Ins:  []Port{{Name: "in", Default: 0}},
		Outs: []string{"out"},
		Params: []Param{
			{Name: "sendSize", Default: 512.0},
			{Name: "sendRate", Default: 1.0},
			{Name: "historyLen", Default: 2048.0},
		},
		State: []StateField{
			{Name: "samples", Transient: true},
			{Name: "history", Transient: true},
		},
		Allocate: func(nodeID string, params map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			historyLen := ParamInt(params, "historyLen", 2048)
			return &scopeState{
				nodeID:     nodeID,
				sendSize:   ParamInt(params, "sendSize", 512),
				sendRate:   ParamInt(params, "sendRate", 1),
				historyLen: historyLen,
				ring:       make([]float64, historyLen),
			}
		},
	}
}
