package session

import (
	"time"

	"github.com/vocalab/vocalrange/internal/analysis"
	"github.com/vocalab/vocalrange/internal/pitch"
)

// Snapshot is a consistent view of the session for display. Range fields
// are only meaningful when HasRange is true.
type Snapshot struct {
	Phase     Phase
	Milestone Milestone

	ElapsedSeconds int

	CurrentHz   float64
	CurrentNote pitch.Note

	HasRange         bool
	MinHz            float64
	MaxHz            float64
	ValidSampleCount int
	OctaveRange      float64
	PitchStdHz       float64
	VoiceType        pitch.VoiceType

	Result *analysis.Result
	Err    error
}

// Snapshot returns the current UI-facing state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Phase:     m.phase,
		Milestone: m.milestone,
		Result:    m.result,
		Err:       m.lastErr,
	}
	if m.phase == PhaseIdle {
		return s
	}

	s.ElapsedSeconds = int(time.Since(m.startTime).Seconds())
	s.CurrentHz = m.currentHz
	s.CurrentNote = m.currentNote
	if m.stats != nil && m.stats.HasRange() {
		s.HasRange = true
		s.MinHz = m.stats.Min
		s.MaxHz = m.stats.Max
		s.ValidSampleCount = m.stats.ValidSampleCount
		s.OctaveRange = m.stats.OctaveRange()
		s.PitchStdHz = m.stats.StdDevHz()
		s.VoiceType = pitch.Classify(m.stats.Min, m.stats.Max)
	}
	return s
}
