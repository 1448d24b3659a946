package session

import (
	"time"

	"github.com/vocalab/vocalrange/internal/audio"
	"github.com/vocalab/vocalrange/internal/pitch"
)

// trackInterval throttles pitch estimation to ~20 Hz regardless of how fast
// the capture callback fills the ring; frames arriving in between are
// observed but skipped.
const trackInterval = 50 * time.Millisecond

// track is the per-session estimation loop. It is the only writer of the
// pipeline state while recording; stop is checked on every tick so
// cancellation is a cooperative flag, not an interrupt.
func (m *Machine) track(source audio.Source, stop, done, maxReached chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(trackInterval)
	defer ticker.Stop()

	maxSignalled := false
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, ok := source.Frame()
			if !ok {
				continue
			}
			raw, voiced := pitch.Estimate(frame.Samples, frame.SampleRate)
			if voiced {
				m.mu.Lock()
				smoothed := m.filter.Push(raw)
				if m.stats.Accept(smoothed) {
					m.currentHz = smoothed
					m.currentNote = pitch.ToNote(smoothed)
				}
				m.mu.Unlock()
			}

			if !maxSignalled && m.opts.MaxDuration > 0 {
				m.mu.Lock()
				elapsed := time.Since(m.startTime)
				m.mu.Unlock()
				if elapsed >= m.opts.MaxDuration {
					maxSignalled = true
					close(maxReached)
				}
			}
		}
	}
}
