// Package music provides the note-name and scale-generation primitives
// shared by the sequencer node kinds.
package music

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// noteClassSemitones maps a natural note letter to its semitone offset from C.
var noteClassSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParseNoteName parses a note name like "C2", "A#3" or "Bb-1" into a MIDI
// note number (A4 = 69). The grammar is [A-G](#|b)?-?\d+, read leniently:
// surrounding whitespace is trimmed, the letter may be lower case, "B" is
// accepted as a flat sign as well as "b", and the octave is any integer
// strconv.Atoi accepts (so a leading "+" is allowed). Any other input is
// rejected.
func ParseNoteName(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("music: empty note name")
	}
	letter := name[0] & 0xDF // uppercase
	semi, ok := noteClassSemitones[letter]
	if !ok {
		return 0, fmt.Errorf("music: invalid note letter %q", name)
	}
	rest := name[1:]
	accidental := 0
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b' || rest[0] == 'B') {
		if rest[0] == '#' {
			accidental = 1
		} else {
			accidental = -1
		}
		rest = rest[1:]
	}
	if rest == "" {
		return 0, fmt.Errorf("music: missing octave in %q", name)
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("music: invalid octave in %q: %w", name, err)
	}
	// MIDI octave -1 is note 0, so octave 4 is the "middle" octave containing A4=69.
	midi := (octave+1)*12 + semi + accidental
	return midi, nil
}

// NoteToFrequency converts a MIDI note number to its frequency in Hz using
// the standard equal-temperament reference A4=440Hz, midi 69.
func NoteToFrequency(midi int) float64 {
	return 440.0 * math.Pow(2, (float64(midi)-69.0)/12.0)
}

// NameToFrequency is the composition of ParseNoteName and NoteToFrequency,
// used when seeding a MonoSeq/GateSeq scaleRoot.
func NameToFrequency(name string) (float64, error) {
	midi, err := ParseNoteName(name)
	if err != nil {
		return 0, err
	}
	return NoteToFrequency(midi), nil
}
