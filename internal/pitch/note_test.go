package pitch

import (
	"math"
	"testing"
)

func TestToNoteReferencePitches(t *testing.T) {
	cases := []struct {
		freq   float64
		name   string
		octave int
	}{
		{440.0, "A", 4},
		{261.63, "C", 4},
		{110.0, "A", 2},
		{82.41, "E", 2},
		{1046.5, "C", 6},
	}
	for _, c := range cases {
		n := ToNote(c.freq)
		if n.Name != c.name || n.Octave != c.octave {
			t.Fatalf("%.2f Hz: expected %s%d, got %s", c.freq, c.name, c.octave, n)
		}
	}
}

func TestToNoteInvalidFrequencies(t *testing.T) {
	for _, f := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		n := ToNote(f)
		if n.IsValid() {
			t.Fatalf("expected sentinel note for %v, got %s", f, n)
		}
		if n.String() != "--" {
			t.Fatalf("expected -- rendering, got %s", n)
		}
	}
}

func TestClassifyLadder(t *testing.T) {
	cases := []struct {
		min, max float64
		want     VoiceType
	}{
		{80, 120, VoiceBass},      // median 100
		{130, 130, VoiceBaritone}, // boundary: exactly 130 is not bass
		{100, 300, VoiceTenor},    // median 200
		{250, 350, VoiceAlto},     // median 300
		{300, 500, VoiceMezzoSoprano},
		{400, 600, VoiceSoprano}, // median 500
	}
	for _, c := range cases {
		if got := Classify(c.min, c.max); got != c.want {
			t.Fatalf("Classify(%.0f, %.0f): expected %s, got %s", c.min, c.max, c.want, got)
		}
	}
}
