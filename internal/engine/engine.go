package engine

import (
	"sync"

	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/message"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// Engine owns the live per-node state for one compiled Unit and
// interprets its plan one sample at a time. It implements
// internal/audio.SampleSource so it can be handed directly to the
// teacher-derived audio backend. Apart from Play and Stop, mutation of the
// engine's own state happens on the render goroutine; everything else
// talks to it through the bounded queues in queue.go. Stop clears the
// plan and node map directly on the calling goroutine.
type Engine struct {
	reg        map[nodes.Kind]*nodes.Schema
	sampleRate float64

	toEngine   toEngineQueue
	fromEngine fromEngineQueue

	mu      sync.Mutex // guards playing/playPos for PlaybackPosition-style reads from other goroutines
	playing bool
	playPos float64 // seconds since Play, fed to nodes.Context.Time

	unit      *compiler.Unit
	states    map[graph.NodeId]nodes.Updater
	prevSeeds map[graph.NodeId]compiler.Seed
	wires     map[graph.NodeId][]float64
}

// New returns an idle Engine with no Unit loaded (silence until the first
// NEW_UNIT message arrives).
func New(reg map[nodes.Kind]*nodes.Schema, sampleRate float64) *Engine {
	return &Engine{
		reg:        reg,
		sampleRate: sampleRate,
		toEngine:   newToEngineQueue(),
		fromEngine: newFromEngineQueue(),
		states:     map[graph.NodeId]nodes.Updater{},
		prevSeeds:  map[graph.NodeId]compiler.Seed{},
		wires:      map[graph.NodeId][]float64{},
	}
}

// Send enqueues an editor->engine control message. Returns
// false if the queue was full and the message was dropped.
func (e *Engine) Send(msg message.ToEngine) bool {
	return e.toEngine.enqueue(msg)
}

// Events returns the engine->editor feedback queue. The caller
// (actions.Model's audio-facing View) should drain it on every tick.
func (e *Engine) Events() <-chan message.FromEngine {
	return e.fromEngine
}

// Playing reports whether the engine is currently advancing playPos.
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// PlaybackPosition returns seconds of audio produced since the last Play,
// the engine's own notion of playPos. Player prefers the audio device's
// reported position when one is attached, falling back to this for
// headless rendering.
func (e *Engine) PlaybackPosition() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playPos
}

// Process implements internal/audio.SampleSource: dst is interleaved
// stereo float32, length a multiple of 2.
func (e *Engine) Process(dst []float32) {
	e.toEngine.drain(e.applyMessage)

	e.mu.Lock()
	playing := e.playing
	e.mu.Unlock()

	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		if !playing || e.unit == nil {
			dst[f*2] = 0
			dst[f*2+1] = 0
			continue
		}

		clear(e.wires)
		ctx := nodes.Context{SampleRate: e.sampleRate, Time: e.playPos}
		out := runSample(e.unit, e.reg, e.states, e.wires, ctx)

		var l, r float32
		if len(out) > 0 {
			l = float32(out[0])
		}
		if len(out) > 1 {
			r = float32(out[1])
		}
		dst[f*2], dst[f*2+1] = l, r

		e.drainNodeMessages()
		e.playPos += 1.0 / e.sampleRate
	}
}

// drainNodeMessages flushes every live node's outbound MessageEmitter
// queue into the engine->editor feedback queue.
func (e *Engine) drainNodeMessages() {
	for _, upd := range e.states {
		emitter, ok := upd.(nodes.MessageEmitter)
		if !ok {
			continue
		}
		for _, msg := range emitter.DrainMessages() {
			e.fromEngine.enqueue(msg)
		}
	}
}

func (e *Engine) applyMessage(msg message.ToEngine) {
	switch msg.Kind {
	case message.NewUnit:
		unit, ok := msg.Unit.(*compiler.Unit)
		if !ok || unit == nil {
			return
		}
		e.prevSeeds = swapUnit(e.reg, e.states, e.prevSeeds, unit, e.sampleRate)
		e.unit = unit

	case message.SetParam:
		if upd, ok := e.states[graph.NodeId(msg.NodeID)].(nodes.ParamSetter); ok {
			upd.SetParam(msg.ParamName, msg.Value)
		}

	case message.SetCell:
		if upd, ok := e.states[graph.NodeId(msg.NodeID)].(nodes.CellSetter); ok {
			upd.SetCell(msg.PatIdx, msg.StepIdx, msg.RowIdx, msg.CellValue)
		}

	case message.QueuePattern:
		if upd, ok := e.states[graph.NodeId(msg.NodeID)].(nodes.PatternQueuer); ok {
			upd.QueuePattern(msg.PatIdx, msg.PatData)
		}

	case message.SetState:
		if upd, ok := e.states[graph.NodeId(msg.NodeID)].(nodes.StateSetter); ok {
			upd.SetState(msg.State)
		}

	case message.NoteOn:
		if upd, ok := e.states[graph.NodeId(msg.NodeID)].(nodes.NoteOnSetter); ok {
			upd.NoteOn(msg.NoteNo, msg.Velocity)
		}
	}
}

// Play resumes playPos advancement.
func (e *Engine) Play() {
	e.mu.Lock()
	e.playing = true
	e.mu.Unlock()
}

// Stop halts playback and fully garbage-collects the engine: it purges
// the plan and node map and flushes the outgoing queue, unlike a
// mid-graph edit's NEW_UNIT hot-swap, which never deletes state in case a
// disconnected node is reconnected later. playPos is reset so the next
// Play starts from the beginning.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.playing = false
	e.playPos = 0
	e.mu.Unlock()

	e.unit = nil
	e.states = map[graph.NodeId]nodes.Updater{}
	e.prevSeeds = map[graph.NodeId]compiler.Seed{}
	e.fromEngine.drainAll()
}
