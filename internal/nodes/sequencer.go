package nodes

import (
	"github.com/cbegin/synthgraph/internal/message"
	"github.com/cbegin/synthgraph/internal/music"
)

// stepsPerBeat is the fixed sequencer resolution (16th notes); ClockPPS,
// pulses per step, is derived from it and the system CLOCK_PPQ constant.
const (
	stepsPerBeat = 4
	ClockPPS     = ClockPPQ / stepsPerBeat
)

// grid is one pattern: grid[step][row], each cell 0 or 1.
type grid [][]int

func parseGrid(v interface{}) grid {
	rows, ok := v.([]interface{})
	if !ok {
		return nil
	}
	g := make(grid, len(rows))
	for i, r := range rows {
		cells, ok := r.([]interface{})
		if !ok {
			continue
		}
		row := make([]int, len(cells))
		for j, c := range cells {
			row[j] = int(floatFromAny(c, 0))
		}
		g[i] = row
	}
	return g
}

func parsePatterns(v interface{}) []grid {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]grid, len(list))
	for i, p := range list {
		out[i] = parseGrid(p)
	}
	return out
}

// monoSeqState advances through scale-degree patterns on clock pulses,
// emitting (freq, gate): the graph's sole pitched step sequencer.
type monoSeqState struct {
	nodeID string

	scaleRoot  string
	scaleName  string
	numOctaves int
	scale      []music.Note
	patterns   []grid
	curPattern int
	nextQueued int // -1 when nothing queued

	lastClock float64
	pulses    int
	curStep   int

	gate     float64
	freq     float64
	trigTime float64

	lastEmit float64 // ctx.Time of last SET_CUR_STEP/SET_PATTERN emission
	pending  []message.FromEngine
}

// emitMinInterval rate-limits SET_CUR_STEP/SET_PATTERN so they do not
// flood the feedback queue: at most once per engine video-frame-ish tick
// regardless of audio sample rate.
const emitMinInterval = 1.0 / 60.0

func (s *monoSeqState) currentGrid() grid {
	if s.curPattern < 0 || s.curPattern >= len(s.patterns) {
		return nil
	}
	return s.patterns[s.curPattern]
}

func (s *monoSeqState) advanceStep(ctx Context) {
	g := s.currentGrid()
	numSteps := len(g)
	s.gate = 0
	s.trigTime = 0
	if numSteps > 0 {
		row := g[s.curStep]
		for r, cell := range row {
			if cell != 0 && r < len(s.scale) {
				s.freq = s.scale[r].Freq
				s.gate = 1
				s.trigTime = ctx.Time
				break
			}
		}
	}
	s.queueEmit(ctx, false)

	if numSteps > 0 {
		s.curStep++
		if s.curStep >= numSteps {
			s.curStep = 0
			if s.nextQueued >= 0 {
				s.curPattern = s.nextQueued
				s.nextQueued = -1
				s.queueEmit(ctx, true)
			}
		}
	}
}

func (s *monoSeqState) queueEmit(ctx Context, patternSwitch bool) {
	if ctx.Time-s.lastEmit < emitMinInterval && !patternSwitch {
		return
	}
	s.lastEmit = ctx.Time
	s.pending = append(s.pending, message.FromEngine{
		Kind:    message.SetCurStep,
		NodeID:  s.nodeID,
		StepIdx: s.curStep,
		Time:    ctx.Time,
	})
	if patternSwitch {
		s.pending = append(s.pending, message.FromEngine{
			Kind:   message.SetPattern,
			NodeID: s.nodeID,
			PatIdx: s.curPattern,
			Time:   ctx.Time,
		})
	}
}

func (s *monoSeqState) Update(_ string, ins []float64, ctx Context) []float64 {
	clock := In(ins, 0)
	gateTime := In(ins, 1)
	if gateTime <= 0 {
		gateTime = 0.1
	}

	if clock > 0 && s.lastClock <= 0 {
		s.pulses++
		if s.pulses >= ClockPPS {
			s.pulses = 0
			s.advanceStep(ctx)
		}
	}
	s.lastClock = clock

	if s.gate == 1 && ctx.Time-s.trigTime > gateTime {
		s.gate = 0
	}
	return []float64{s.freq, s.gate}
}

func (s *monoSeqState) DrainMessages() []message.FromEngine {
	msgs := s.pending
	s.pending = nil
	return msgs
}

func (s *monoSeqState) SetCell(patIdx, stepIdx, rowIdx, value int) {
	if patIdx < 0 || patIdx >= len(s.patterns) {
		return
	}
	g := s.patterns[patIdx]
	if stepIdx < 0 || stepIdx >= len(g) || rowIdx < 0 || rowIdx >= len(g[stepIdx]) {
		return
	}
	if value != 0 {
		for r := range g[stepIdx] {
			g[stepIdx][r] = 0
		}
	}
	g[stepIdx][rowIdx] = value
}

func (s *monoSeqState) QueuePattern(patIdx int, patData [][]int) {
	if patIdx < 0 {
		return
	}
	for len(s.patterns) <= patIdx {
		s.patterns = append(s.patterns, nil)
	}
	if patData != nil {
		g := make(grid, len(patData))
		for i, row := range patData {
			g[i] = append([]int(nil), row...)
		}
		s.patterns[patIdx] = g
	}
	s.nextQueued = patIdx
}

func (s *monoSeqState) SetState(state map[string]interface{}) {
	_, hasRoot := state["scaleRoot"]
	_, hasName := state["scaleName"]
	_, hasOct := state["numOctaves"]
	if hasRoot || hasName || hasOct {
		s.rebuildScaleFromFull(state)
	}
	if p, ok := state["patterns"]; ok {
		s.patterns = parsePatterns(p)
	}
	if cp, ok := state["curPattern"]; ok {
		s.curPattern = int(floatFromAny(cp, float64(s.curPattern)))
	}
}

func (s *monoSeqState) rebuildScaleFromFull(state map[string]interface{}) {
	s.scaleRoot = StateString(state, "scaleRoot", s.scaleRoot)
	s.scaleName = StateString(state, "scaleName", s.scaleName)
	s.numOctaves = StateInt(state, "numOctaves", s.numOctaves)
	if notes, err := music.GenScale(s.scaleRoot, s.scaleName, s.numOctaves); err == nil {
		s.scale = notes
	}
}

func (s *monoSeqState) ResetTransient() {
	s.gate, s.freq, s.trigTime = 0, 0, 0
	s.pulses, s.curStep = 0, 0
	s.lastClock, s.lastEmit = 0, 0
	s.pending = nil
}

// gateSeqState is analogous to monoSeqState but polyphonic-by-row: each
// row is an independent gate lane with no pitch output, and numRows is
// fixed by state with one gate output per row.
type gateSeqState struct {
	nodeID string

	numRows    int
	patterns   []grid
	curPattern int
	nextQueued int

	lastClock float64
	pulses    int
	curStep   int

	gates     []float64
	trigTimes []float64

	lastEmit float64
	pending  []message.FromEngine
}

func (g *gateSeqState) currentGrid() grid {
	if g.curPattern < 0 || g.curPattern >= len(g.patterns) {
		return nil
	}
	return g.patterns[g.curPattern]
}

func (g *gateSeqState) advanceStep(ctx Context) {
	grid := g.currentGrid()
	numSteps := len(grid)
	for r := range g.gates {
		g.gates[r] = 0
		g.trigTimes[r] = 0
	}
	if numSteps > 0 {
		row := grid[g.curStep]
		for r, cell := range row {
			if r >= len(g.gates) {
				break
			}
			if cell != 0 {
				g.gates[r] = 1
				g.trigTimes[r] = ctx.Time
			}
		}
	}
	g.queueEmit(ctx, false)

	if numSteps > 0 {
		g.curStep++
		if g.curStep >= numSteps {
			g.curStep = 0
			if g.nextQueued >= 0 {
				g.curPattern = g.nextQueued
				g.nextQueued = -1
				g.queueEmit(ctx, true)
			}
		}
	}
}

func (g *gateSeqState) queueEmit(ctx Context, patternSwitch bool) {
	if ctx.Time-g.lastEmit < emitMinInterval && !patternSwitch {
		return
	}
	g.lastEmit = ctx.Time
	g.pending = append(g.pending, message.FromEngine{
		Kind:    message.SetCurStep,
		NodeID:  g.nodeID,
		StepIdx: g.curStep,
		Time:    ctx.Time,
	})
	if patternSwitch {
		g.pending = append(g.pending, message.FromEngine{
			Kind:   message.SetPattern,
			NodeID: g.nodeID,
			PatIdx: g.curPattern,
			Time:   ctx.Time,
		})
	}
}

func (g *gateSeqState) Update(_ string, ins []float64, ctx Context) []float64 {
	clock := In(ins, 0)
	gateTime := In(ins, 1)
	if gateTime <= 0 {
		gateTime = 0.1
	}

	if clock > 0 && g.lastClock <= 0 {
		g.pulses++
		if g.pulses >= ClockPPS {
			g.pulses = 0
			g.advanceStep(ctx)
		}
	}
	g.lastClock = clock

	for r := range g.gates {
		if g.gates[r] == 1 && ctx.Time-g.trigTimes[r] > gateTime {
			g.gates[r] = 0
		}
	}
	out := make([]float64, len(g.gates))
	copy(out, g.gates)
	return out
}

func (g *gateSeqState) DrainMessages() []message.FromEngine {
	msgs := g.pending
	g.pending = nil
	return msgs
}

func (g *gateSeqState) SetCell(patIdx, stepIdx, rowIdx, value int) {
	if patIdx < 0 || patIdx >= len(g.patterns) {
		return
	}
	grid := g.patterns[patIdx]
	if stepIdx < 0 || stepIdx >= len(grid) || rowIdx < 0 || rowIdx >= len(grid[stepIdx]) {
		return
	}
	grid[stepIdx][rowIdx] = value
}

func (g *gateSeqState) QueuePattern(patIdx int, patData [][]int) {
	if patIdx < 0 {
		return
	}
	for len(g.patterns) <= patIdx {
		g.patterns = append(g.patterns, nil)
	}
	if patData != nil {
		newGrid := make(grid, len(patData))
		for i, row := range patData {
			newGrid[i] = append([]int(nil), row...)
		}
		g.patterns[patIdx] = newGrid
	}
	g.nextQueued = patIdx
}

func (g *gateSeqState) SetState(state map[string]interface{}) {
	if p, ok := state["patterns"]; ok {
		g.patterns = parsePatterns(p)
	}
	if cp, ok := state["curPattern"]; ok {
		g.curPattern = int(floatFromAny(cp, float64(g.curPattern)))
	}
	if nr, ok := state["numRows"]; ok {
		n := int(floatFromAny(nr, float64(g.numRows)))
		if n != g.numRows {
			g.numRows = n
			g.gates = make([]float64, n)
			g.trigTimes = make([]float64, n)
		}
	}
}

func (g *gateSeqState) ResetTransient() {
	for r := range g.gates {
		g.gates[r] = 0
		g.trigTimes[r] = 0
	}
	g.pulses, g.curStep = 0, 0
	g.lastClock, g.lastEmit = 0, 0
	g.pending = nil
}

func sequencerSchemas(reg map[Kind]*Schema) {
	reg[KindMonoSeq] = &Schema{
		Kind: KindMonoSeq,
		Ins:  []Port{{Name: "clock", Default: 0}, {Name: "gateT", Default: 0.1}},
		Outs: []string{"freq", "gate"},
		State: []StateField{
			{Name: "scaleRoot"},
			{Name: "scaleName"},
			{Name: "numOctaves"},
			{Name: "patterns"},
			{Name: "curPattern"},
		},
		Allocate: func(nodeID string, _ map[string]interface{}, state map[string]interface{}, _ float64) Updater {
			s := &monoSeqState{nodeID: nodeID, nextQueued: -1}
			s.rebuildScaleFromFull(state)
			s.patterns = parsePatterns(state["patterns"])
			s.curPattern = StateInt(state, "curPattern", 0)
			return s
		},
	}
	reg[KindGateSeq] = &Schema{
		Kind:  KindGateSeq,
		Ins:   []Port{{Name: "clock", Default: 0}, {Name: "gateT", Default: 0.1}},
		Outs:  nil, // derived from numRows via Schema.OutArity/OutNames
		State: []StateField{{Name: "numRows"}, {Name: "patterns"}, {Name: "curPattern"}},
		Allocate: func(nodeID string, _ map[string]interface{}, state map[string]interface{}, _ float64) Updater {
			numRows := StateInt(state, "numRows", 4)
			g := &gateSeqState{
				nodeID:     nodeID,
				numRows:    numRows,
				gates:      make([]float64, numRows),
				trigTimes:  make([]float64, numRows),
				nextQueued: -1,
			}
			g.patterns = parsePatterns(state["patterns"])
			g.curPattern = StateInt(state, "curPattern", 0)
			return g
		},
	}
}
