package synthgraph

import (
	"errors"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/synthgraph/internal/compiler"
	"github.com/cbegin/synthgraph/internal/engine"
	"github.com/cbegin/synthgraph/internal/graph"
	"github.com/cbegin/synthgraph/internal/message"
	"github.com/cbegin/synthgraph/internal/nodes"
)

// RenderSamples compiles a project and runs its engine headless for the
// given duration, returning interleaved stereo float32 samples: the
// non-interactive counterpart to Player. Grounded on the teacher's
// RenderSamples* family in offline.go, generalized from a fixed
// VoiceEngine+Sequencer pair to Compile+engine.Engine.
func RenderSamples(p *graph.Project, reg map[nodes.Kind]*nodes.Schema, sampleRate int, seconds float64) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if seconds < 0 {
		return nil, errors.New("seconds must be non-negative")
	}
	unit, err := compiler.Compile(p, reg)
	if err != nil {
		return nil, err
	}

	eng := engine.New(reg, float64(sampleRate))
	eng.Send(message.ToEngine{Kind: message.NewUnit, Unit: unit})
	eng.Play()

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	eng.Process(out)
	return out, nil
}

// memWriteSeeker is the minimal io.WriteSeeker go-audio/wav.Encoder needs;
// *os.File already satisfies this, but EncodeWAV returns a plain []byte
// the way the teacher's hand-rolled EncodeWAVFloat32LE did, so an
// in-memory backing store stands in for a file here.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case 0:
		base = 0
	case 1:
		base = m.pos
	case 2:
		base = len(m.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	next := base + int(offset)
	if next < 0 {
		return 0, errors.New("negative seek position")
	}
	m.pos = next
	return int64(next), nil
}

// EncodeWAV encodes interleaved stereo float32 samples as 16-bit PCM WAV
// bytes, replacing the teacher's hand-rolled EncodeWAVFloat32LE with
// go-audio/wav's Encoder (the same "render to file" concern the
// schollz-221e manifest pulls this library in for).
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	const channels = 2
	const bitDepth = 16

	dst := &memWriteSeeker{}
	enc := wav.NewEncoder(dst, sampleRate, bitDepth, channels, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		v := s
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		ints[i] = int(v * 32767)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   ints,
	}
	if err := enc.Write(buf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return dst.buf, nil
}
