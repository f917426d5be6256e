package music

import "fmt"

// Scales is the closed set of scale interval lists the sequencer nodes
// accept for scaleName. Each list is ascending semitone offsets from the
// root, not including the octave (12).
var Scales = map[string][]int{
	"major":         {0, 2, 4, 5, 7, 9, 11},
	"minor":         {0, 2, 3, 5, 7, 8, 10},
	"harmonicMinor": {0, 2, 3, 5, 7, 8, 11},
	"melodicMinor":  {0, 2, 3, 5, 7, 9, 11},
	"dorian":        {0, 2, 3, 5, 7, 9, 10},
	"phrygian":      {0, 1, 3, 5, 7, 8, 10},
	"lydian":        {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":    {0, 2, 4, 5, 7, 9, 10},
	"locrian":       {0, 1, 3, 5, 6, 8, 10},
	"majPentatonic": {0, 2, 4, 7, 9},
	"minPentatonic": {0, 3, 5, 7, 10},
	"blues":         {0, 3, 5, 6, 7, 10},
	"chromatic":     {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// Note is one generated scale degree: its MIDI note number and frequency.
type Note struct {
	Midi int
	Freq float64
}

// GenScale generates the ascending notes of scaleName starting at scaleRoot
// (e.g. "C2") across numOctaves octaves, with one extra tonic note an
// octave above the last generated octave appended at the top. This is the
// numRows source for MonoSeq.
func GenScale(scaleRoot, scaleName string, numOctaves int) ([]Note, error) {
	if numOctaves < 1 {
		numOctaves = 1
	}
	intervals, ok := Scales[scaleName]
	if !ok {
		return nil, fmt.Errorf("music: unknown scale %q", scaleName)
	}
	rootMidi, err := ParseNoteName(scaleRoot)
	if err != nil {
		return nil, err
	}
	notes := make([]Note, 0, len(intervals)*numOctaves+1)
	for oct := 0; oct < numOctaves; oct++ {
		for _, iv := range intervals {
			midi := rootMidi + oct*12 + iv
			notes = append(notes, Note{Midi: midi, Freq: NoteToFrequency(midi)})
		}
	}
	topMidi := rootMidi + numOctaves*12
	notes = append(notes, Note{Midi: topMidi, Freq: NoteToFrequency(topMidi)})
	return notes, nil
}

// ScaleNames returns the closed set of valid scaleName values, sorted for
// stable schema/CLI output.
func ScaleNames() []string {
	names := make([]string, 0, len(Scales))
	for n := range Scales {
		names = append(names, n)
	}
	// simple insertion sort: the set is small and fixed, avoids importing sort
	// just for this.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
