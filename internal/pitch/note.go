package pitch

import (
	"fmt"
	"math"
)

// noteNames is the chromatic scale starting at C.
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a 12-tone equal-temperament note. A zero Note (empty name) is the
// "no note" sentinel.
type Note struct {
	Name   string
	Octave int
}

func (n Note) IsValid() bool {
	return n.Name != ""
}

func (n Note) String() string {
	if !n.IsValid() {
		return "--"
	}
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// ToNote maps a frequency in Hz to its nearest equal-temperament note,
// with A4 = 440 Hz. Non-positive or non-finite frequencies map to the
// sentinel, never to a computed note.
func ToNote(frequencyHz float64) Note {
	if frequencyHz <= 0 || math.IsInf(frequencyHz, 0) || math.IsNaN(frequencyHz) {
		return Note{}
	}
	semitonesFromA4 := int(math.Round(12 * math.Log2(frequencyHz/440.0)))
	// Offset A4 to the chromatic index counted from C, then shift four
	// octaves down to a C0-relative absolute index.
	total := semitonesFromA4 + 9 + 48
	octave := int(math.Floor(float64(total) / 12.0))
	index := ((total % 12) + 12) % 12
	return Note{Name: noteNames[index], Octave: octave}
}
