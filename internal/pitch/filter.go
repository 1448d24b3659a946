package pitch

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	medianWindow   = 7
	smoothingAlpha = 0.15
)

// Filter converts noisy raw frequency estimates into a stable value: a
// 7-tap median rejects single-frame spikes such as octave errors, then an
// exponential smoother damps the remaining jitter. The median must run
// first; smoothing a spiky signal would let one spike bias several outputs.
//
// A Filter is stateful and belongs to a single recording session.
type Filter struct {
	window []float64
	sorted []float64

	smoothed    float64
	initialized bool
}

func NewFilter() *Filter {
	return &Filter{
		window: make([]float64, 0, medianWindow),
		sorted: make([]float64, medianWindow),
	}
}

// Push accepts one voiced raw estimate and returns the smoothed frequency.
func (f *Filter) Push(raw float64) float64 {
	if len(f.window) == medianWindow {
		copy(f.window, f.window[1:])
		f.window[medianWindow-1] = raw
	} else {
		f.window = append(f.window, raw)
	}

	sorted := f.sorted[:len(f.window)]
	copy(sorted, f.window)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	if !f.initialized {
		f.smoothed = median
		f.initialized = true
	} else {
		f.smoothed = smoothingAlpha*median + (1-smoothingAlpha)*f.smoothed
	}
	return f.smoothed
}

// Reset clears all filter state for a new session.
func (f *Filter) Reset() {
	f.window = f.window[:0]
	f.smoothed = 0
	f.initialized = false
}
