package nodes

import "github.com/cbegin/synthgraph/internal/music"

// audioOutState is the graph's terminal sink: the only node the engine
// reads to fill the hardware callback buffer, and a project may have at
// most one. Outputs are attenuated by a fixed headroom factor so a
// full-scale oscillator doesn't clip the device.
const audioOutGain = 0.3

type audioOutState struct{}

func (audioOutState) Update(_ string, ins []float64, _ Context) []float64 {
	return []float64{audioOutGain * In(ins, 0), audioOutGain * In(ins, 1)}
}

// midiInState is a stateless-looking placeholder that turns out-of-band
// NOTE_ON control messages into a held (freq, gate, velocity) triple; it
// has no graph inputs of its own.
type midiInState struct {
	freq, gate, velocity float64
}

func (m *midiInState) Update(_ string, _ []float64, _ Context) []float64 {
	return []float64{m.freq, m.gate, m.velocity}
}

func (m *midiInState) NoteOn(noteNo, velocity int) {
	m.freq = music.NoteToFrequency(noteNo)
	m.velocity = float64(velocity) / 127.0
	if velocity > 0 {
		m.gate = 1
	} else {
		m.gate = 0
	}
}

func (m *midiInState) ResetTransient() {
	m.freq, m.gate, m.velocity = 0, 0, 0
}

func ioSchemas(reg map[Kind]*Schema) {
	reg[KindAudioOut] = &Schema{
		Kind:   KindAudioOut,
		Ins:    []Port{{Name: "left", Default: 0}, {Name: "right", Default: 0}},
		Outs:   nil,
		Unique: true,
		Allocate: func(_ string, _ map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return audioOutState{}
		},
	}
	reg[KindMidiIn] = &Schema{
		Kind: KindMidiIn,
		Ins:  nil,
		Outs: []string{"freq", "gate", "velocity"},
		Allocate: func(_ string, _ map[string]interface{}, _ map[string]interface{}, _ float64) Updater {
			return &midiInState{}
		},
	}
	// Notes is a free-floating annotation: no ports, no params, no runtime
	// state, so nothing is ever wired to it. The compiler still emits a
	// plan step for it like any other node, so the schema carries a
	// Stateless/Combine entry whose Combine produces no outputs.
	reg[KindNotes] = &Schema{
		Kind:      KindNotes,
		Stateless: true,
		Combine: func(_ []float64, _ map[string]interface{}) []float64 {
			return nil
		},
	}
	// Module exists in the schema registry purely so validation recognizes
	// the kind name; it is always expanded into its sub-graph before
	// compilation and never reaches Allocate.
	reg[KindModule] = &Schema{
		Kind:     KindModule,
		Internal: false,
	}
}
