package music

import (
	"math"
	"testing"
)

func TestParseNoteNameA4(t *testing.T) {
	midi, err := ParseNoteName("A4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if midi != 69 {
		t.Fatalf("A4: got midi %d, want 69", midi)
	}
}

func TestParseNoteNameAccidentals(t *testing.T) {
	cases := map[string]int{
		"C2":  36,
		"C#2": 37,
		"Db2": 37,
		"B-1": 11,
	}
	for name, want := range cases {
		got, err := ParseNoteName(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: got %d, want %d", name, got, want)
		}
	}
}

func TestParseNoteNameInvalid(t *testing.T) {
	for _, bad := range []string{"", "H2", "C", "C2x"} {
		if _, err := ParseNoteName(bad); err == nil {
			t.Errorf("%q: expected error, got nil", bad)
		}
	}
}

func TestNoteToFrequencyA4(t *testing.T) {
	freq := NoteToFrequency(69)
	if math.Abs(freq-440.0) > 1e-9 {
		t.Fatalf("A4 frequency: got %f, want 440", freq)
	}
}

func TestGenScaleLength(t *testing.T) {
	notes, err := GenScale("C2", "major", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 7 degrees * 2 octaves + 1 tonic on top
	if len(notes) != 15 {
		t.Fatalf("got %d notes, want 15", len(notes))
	}
	if notes[0].Midi != 36 {
		t.Errorf("first note midi: got %d, want 36", notes[0].Midi)
	}
	last := notes[len(notes)-1]
	if last.Midi != 36+24 {
		t.Errorf("top tonic midi: got %d, want %d", last.Midi, 36+24)
	}
}

func TestGenScaleUnknownScale(t *testing.T) {
	if _, err := GenScale("C2", "nonsense", 1); err == nil {
		t.Fatalf("expected error for unknown scale")
	}
}
