// Package nodes implements the closed set of stateful and stateless node
// kinds, each with an allocator and a per-sample update contract. The
// schema registry here is the single source of truth for port arity,
// parameter defaults, and declared state used by the graph model's
// validation/normalization and by the compiler's plan emission.
package nodes

import "github.com/cbegin/synthgraph/internal/message"

// Kind is the closed set of node kinds the registry knows how to allocate.
type Kind string

const (
	KindAdd      Kind = "Add"
	KindADSR     Kind = "ADSR"
	KindAudioOut Kind = "AudioOut"
	KindBitCrush Kind = "BitCrush"
	KindClock    Kind = "Clock"
	KindClockDiv Kind = "ClockDiv"
	KindClockOut Kind = "ClockOut"
	KindConst    Kind = "Const"
	KindDelay    Kind = "Delay"
	KindDistort  Kind = "Distort"
	KindDiv      Kind = "Div"
	KindEqual    Kind = "Equal"
	KindFilter   Kind = "Filter"
	KindFold     Kind = "Fold"
	KindGateSeq  Kind = "GateSeq"
	KindGreater  Kind = "Greater"
	KindHold     Kind = "Hold"
	KindKnob     Kind = "Knob"
	KindMidiIn   Kind = "MidiIn"
	KindMod      Kind = "Mod"
	KindMonoSeq  Kind = "MonoSeq"
	KindMul      Kind = "Mul"
	KindNoise    Kind = "Noise"
	KindNop      Kind = "Nop"
	KindNotes    Kind = "Notes"
	KindPulse    Kind = "Pulse"
	KindSaw      Kind = "Saw"
	KindScope    Kind = "Scope"
	KindSine     Kind = "Sine"
	KindSlide    Kind = "Slide"
	KindSub      Kind = "Sub"
	KindTri      Kind = "Tri"
	KindModule   Kind = "Module"

	// Internal kinds: never user-creatable, produced only by the compiler's
	// cycle-breaker split.
	KindDelayRead  Kind = "delay_read"
	KindDelayWrite Kind = "delay_write"
	KindHoldRead   Kind = "hold_read"
	KindHoldWrite  Kind = "hold_write"
)

// Port describes one input: its name and the value substituted when the
// input is unconnected.
type Port struct {
	Name    string
	Default float64
}

// Param describes one entry of a node's params map: its name and schema
// default. Min/Max are non-nil when the schema enforces a numeric range.
type Param struct {
	Name    string
	Default interface{}
	Min     *float64
	Max     *float64
}

// StateField names one type-specific, schema-declared state variable.
// Transient fields are excluded from serialize() and reset on Stop even
// though they are schema-declared, e.g. Scope's captured samples.
type StateField struct {
	Name      string
	Transient bool
}

// Context carries the per-sample timing information a stateful node may
// need (absolute playback position, sample rate) without requiring every
// Updater to store its own copy.
type Context struct {
	SampleRate float64
	Time       float64 // seconds since play start, the engine's playPos
}

// Updater is the per-sample update contract every stateful node kind
// implements.
// variant selects among multiple update entry points sharing one piece of
// state: "" for ordinary nodes, "write"/"read" for the Delay/Hold
// cycle-breaker split.
type Updater interface {
	Update(variant string, ins []float64, ctx Context) []float64
}

// MessageEmitter is implemented by node state that produces outbound
// engine->editor messages (MonoSeq/GateSeq SET_CUR_STEP/SET_PATTERN, Scope
// SEND_SAMPLES, ClockOut CLOCK_PULSE). DrainMessages must return and clear
// any messages queued since the last call.
type MessageEmitter interface {
	DrainMessages() []message.FromEngine
}

// Resettable is implemented by node state that must purge non-persistent
// fields on Stop.
type Resettable interface {
	ResetTransient()
}

// ParamSetter is implemented by stateful node kinds whose behavior depends
// on a live-editable param (cutoff, amount, attack time, ...). The engine
// calls SetParam directly on the live audio-thread Updater when it applies
// a SET_PARAM control message, so edits take effect without a full
// recompile.
type ParamSetter interface {
	SetParam(name string, value interface{})
}

// CellSetter is implemented by sequencer node state in response to a
// SET_CELL control message.
type CellSetter interface {
	SetCell(patIdx, stepIdx, rowIdx, value int)
}

// PatternQueuer is implemented by sequencer node state in response to a
// QUEUE_PATTERN control message; the switch takes effect at the
// next pattern boundary.
type PatternQueuer interface {
	QueuePattern(patIdx int, patData [][]int)
}

// StateSetter is implemented by node state in response to a SET_STATE
// control message.
type StateSetter interface {
	SetState(state map[string]interface{})
}

// NoteOnSetter is implemented by node state (MidiIn) in response to a
// NOTE_ON control message.
type NoteOnSetter interface {
	NoteOn(noteNo, velocity int)
}

// Allocator builds a fresh Updater from a node's persistent params and
// declared state plus the engine sample rate. nodeID is threaded through
// so message-emitting nodes (MonoSeq, GateSeq, Scope, ClockOut) can stamp
// outbound messages with their own id.
type Allocator func(nodeID string, params map[string]interface{}, state map[string]interface{}, sampleRate float64) Updater

// Schema is the complete per-NodeKind declaration consulted by graph
// validation/normalization and by the compiler.
type Schema struct {
	Kind     Kind
	Ins      []Port
	Outs     []string
	Params   []Param
	State    []StateField
	Unique   bool
	Internal bool

	// Stateless nodes (Add, Sub, Mul, Div, Mod, Equal, Greater, Nop) are
	// compiled as a pure combine of already-computed wire values, never as
	// a call into Allocate/Updater.
	Stateless bool
	Combine   func(ins []float64, params map[string]interface{}) []float64

	Allocate Allocator
}

// OutArity returns the output port count given a node's state, honoring
// GateSeq's numRows-derived arity: fixed for every other kind, but derived
// from the node's own numRows state for GateSeq.
func (s *Schema) OutArity(state map[string]interface{}) int {
	if s.Kind == KindGateSeq {
		if n, ok := intFromAny(state["numRows"]); ok && n > 0 {
			return n
		}
		return 1
	}
	return len(s.Outs)
}

// OutNames returns the default output port names given a node's state.
func (s *Schema) OutNames(state map[string]interface{}) []string {
	if s.Kind == KindGateSeq {
		n := s.OutArity(state)
		names := make([]string, n)
		for i := range names {
			names[i] = "gate" + itoa(i)
		}
		return names
	}
	out := make([]string, len(s.Outs))
	copy(out, s.Outs)
	return out
}

func intFromAny(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
