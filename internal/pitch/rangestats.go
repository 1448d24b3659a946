package pitch

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// warmupSamples is how many leading valid samples are excluded from
	// min/max to avoid startup transients. They still count.
	warmupSamples = 2

	// rangeMinHz/rangeMaxHz gate the accumulated band. The ceiling is
	// tighter than the estimator's 1000 Hz detection limit because octave
	// errors at signal onset tend to land in 600-1000 Hz.
	rangeMinHz = 70.0
	rangeMaxHz = 600.0
)

// RangeStats accumulates the running pitch range of a session.
// Before any sample passes the gate, Min/Max hold sentinels (+Inf / 0) and
// must not be displayed.
type RangeStats struct {
	Min              float64
	Max              float64
	ValidSampleCount int

	accepted []float64
}

func NewRangeStats() *RangeStats {
	return &RangeStats{Min: math.Inf(1), Max: 0}
}

// Accept feeds one smoothed frequency into the running statistics and
// reports whether it moved min/max. Every call increments the valid sample
// count; only samples past the warm-up and inside the 70-600 Hz band update
// the range.
func (r *RangeStats) Accept(smoothed float64) bool {
	counted := r.ValidSampleCount
	r.ValidSampleCount++

	if counted < warmupSamples {
		return false
	}
	if smoothed <= rangeMinHz || smoothed >= rangeMaxHz {
		return false
	}
	if smoothed < r.Min {
		r.Min = smoothed
	}
	if smoothed > r.Max {
		r.Max = smoothed
	}
	r.accepted = append(r.accepted, smoothed)
	return true
}

// HasRange reports whether at least one sample has updated min/max.
func (r *RangeStats) HasRange() bool {
	return r.Max > 0
}

// MedianHz is the midpoint of the accumulated range, the value the voice
// classifier keys on.
func (r *RangeStats) MedianHz() float64 {
	if !r.HasRange() {
		return 0
	}
	return (r.Min + r.Max) / 2
}

// OctaveRange is the span of the accumulated range in octaves.
func (r *RangeStats) OctaveRange() float64 {
	if !r.HasRange() || r.Min <= 0 {
		return 0
	}
	return math.Log2(r.Max / r.Min)
}

// StdDevHz is the standard deviation of all range-updating samples, a local
// counterpart of the backend's pitch spread metric.
func (r *RangeStats) StdDevHz() float64 {
	if len(r.accepted) < 2 {
		return 0
	}
	return stat.StdDev(r.accepted, nil)
}
