// Package synthgraph wires the editor model (internal/actions), the
// compiler (internal/compiler) and the realtime engine (internal/engine)
// into the single control surface a host application drives: three
// cooperating layers behind one facade. It replaces the teacher's
// MML-specific Player with the same shape: a mutex-guarded struct
// wrapping playback control, watched through a channel of feedback
// events.
package synthgraph

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/synthgraph/internal/actions"
	intaudio "github.com/cbegin/synthgraph/internal/audio"
	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/engine"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/message"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// Player owns one project's editor model and its live engine, and bridges
// model edits to the engine over the control queues that separate the
// editor from the engine. Exported so a host (UI, CLI, test) can both
// edit the graph and hear it.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	reg        map[nodes.Kind]*nodes.Schema
	model      *actions.Model
	eng        *engine.Engine
	audio      *intaudio.Player
}

// NewPlayer starts from an empty, untitled project.
func NewPlayer(sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	reg := nodes.Schemas()
	p := &Player{
		sampleRate: sampleRate,
		reg:        reg,
		model:      actions.NewModel(graph.New("untitled"), reg),
		eng:        engine.New(reg, float64(sampleRate)),
	}
	p.model.AddView(&audioView{player: p})
	return p, nil
}

// Load replaces the current project (e.g. after graph.Deserialize) and
// recompiles the engine against it.
func (p *Player) Load(proj *graph.Project) {
	p.mu.Lock()
	p.model = actions.NewModel(proj, p.reg)
	p.model.AddView(&audioView{player: p})
	p.mu.Unlock()
	p.recompile()
}

// Project returns the current authoritative graph.
func (p *Player) Project() *graph.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model.Project
}

// Update applies one editor Action to the model. Structural
// edits trigger a recompile + NEW_UNIT hot-swap; parameter/pattern edits
// are mirrored to the live engine as direct control messages instead (see
// audioView.Notify).
func (p *Player) Update(a actions.Action) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.model.Update(a)
}

// Undo/Redo bypass Update's view broadcast, so they always
// force a full recompile: an undo can touch arbitrary graph structure.
func (p *Player) Undo() bool {
	p.mu.Lock()
	ok := p.model.Undo()
	p.mu.Unlock()
	if ok {
		p.recompile()
	}
	return ok
}

func (p *Player) Redo() bool {
	p.mu.Lock()
	ok := p.model.Redo()
	p.mu.Unlock()
	if ok {
		p.recompile()
	}
	return ok
}

// Watch returns the engine's feedback queue (SET_CUR_STEP, SET_PATTERN,
// SEND_SAMPLES, CLOCK_PULSE). Drain it in a goroutine and forward each message
// through Player.Update as the matching actions.SetCurStep/SetPattern/
// SendSamples/ClockPulse action to keep the model's display mirror current.
func (p *Player) Watch() <-chan message.FromEngine {
	return p.eng.Events()
}

// Play starts (or resumes) the audio device and engine playback. Stop
// fully purges the engine's plan and node map,
// so every Play reloads a fresh compiled Unit rather than assuming one is
// already loaded.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.model.Update(actions.Play{}); err != nil {
		return err
	}
	p.recompile()
	p.eng.Play()
	if p.audio == nil {
		backend, err := intaudio.NewPlayer(p.sampleRate, p.eng)
		if err != nil {
			return err
		}
		p.audio = backend
	}
	p.audio.Play()
	return nil
}

// Stop halts playback and purges every node's transient state, both in
// the live engine and in the model's mirror.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		_ = p.audio.Stop()
		p.audio = nil
	}
	p.eng.Stop()
	_, err := p.model.Update(actions.Stop{})
	return err
}

// NoteOn forwards a live MIDI-style note event straight to the engine; it
// is not a graph edit and carries no undo entry.
func (p *Player) NoteOn(id graph.NodeId, noteNo, velocity int) {
	p.eng.Send(message.ToEngine{Kind: message.NoteOn, NodeID: string(id), NoteNo: noteNo, Velocity: velocity})
}

// PlaybackPosition reports how far into the current playback the audio
// device actually is. With a realtime backend attached this is the
// device's own clock (internal/audio.Player.Position, what the listener
// actually hears); otherwise it falls back to the engine's computed
// playPos, e.g. during a headless render.
func (p *Player) PlaybackPosition() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		return p.audio.Position()
	}
	return time.Duration(p.eng.PlaybackPosition() * float64(time.Second))
}

func (p *Player) recompile() {
	unit, err := compiler.Compile(p.model.Project, p.reg)
	if err != nil {
		return // invalid/cyclic intermediate state; engine keeps its last good Unit
	}
	p.eng.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit})
}

// audioView bridges actions.Model.Update to the engine: small actions
// become direct control messages, structural ones trigger a recompile.
// Pattern/state edits route through SET_STATE uniformly: every sequencer
// node's Apply already merges structural state via StateSetter.SetState,
// so the view doesn't need to know each action's specific delta.
type audioView struct {
	player *Player
}

func (v *audioView) Notify(p *graph.Project, a actions.Action) {
	switch act := a.(type) {
	case actions.Play, actions.Stop, actions.SetCurStep, actions.SendSamples, actions.NoteOn, actions.ClockPulse:
		// Play/Stop are applied directly by Player.Play/Stop; the
		// feedback actions mirror engine output into the model and must
		// never be echoed back to the engine.
		return

	case actions.SetParam:
		v.player.eng.Send(message.ToEngine{Kind: message.SetParam, NodeID: string(act.ID), ParamName: act.Name, Value: act.Value})

	case actions.QueuePattern:
		v.player.eng.Send(message.ToEngine{Kind: message.QueuePattern, NodeID: string(act.ID), PatIdx: act.PatIdx, PatData: act.PatData})

	case actions.ToggleCell:
		v.sendState(p, act.ID)
	case actions.SetPattern:
		v.sendState(p, act.ID)
	case actions.SetScale:
		v.sendState(p, act.ID)
	case actions.SetNumRows:
		v.sendState(p, act.ID)
	case actions.ExtendPattern:
		v.sendState(p, act.ID)
	case actions.ExtendCopy:
		v.sendState(p, act.ID)
	case actions.ShrinkPattern:
		v.sendState(p, act.ID)

	default:
		v.player.recompile()
	}
}

// sendState mirrors one node's post-apply State map to the engine as a
// SET_STATE control message.
func (v *audioView) sendState(p *graph.Project, id graph.NodeId) {
	n, ok := p.Nodes[id]
	if !ok {
		return
	}
	v.player.eng.Send(message.ToEngine{Kind: message.SetState, NodeID: string(id), State: n.State})
}
