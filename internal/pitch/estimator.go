// Package pitch implements the real-time fundamental-frequency pipeline:
// per-frame estimation, outlier filtering, running range statistics,
// note mapping and voice-type classification.
package pitch

import "math"

const (
	// MinDetectHz and MaxDetectHz bound the detectable band; together they
	// cover the full human vocal range.
	MinDetectHz = 70.0
	MaxDetectHz = 1000.0

	rmsFloor          = 0.01
	varianceFloor     = 1e-4
	correlationFloor  = 0.8
	energySubsample   = 4
	correlationStride = 2
)

// Estimate returns the fundamental frequency of one frame of time-domain
// samples in [-1, 1], or ok=false when the frame is unvoiced.
//
// The frame is gated on RMS energy and variance before the autocorrelation
// loop runs; both gates work on a 1-in-4 subsample of the frame, which is
// accurate enough for rejection and four times cheaper.
func Estimate(frame []float64, sampleRate int) (float64, bool) {
	if len(frame) == 0 || sampleRate <= 0 {
		return 0, false
	}

	var sum, sumSq float64
	n := 0
	for i := 0; i < len(frame); i += energySubsample {
		sum += frame[i]
		sumSq += frame[i] * frame[i]
		n++
	}
	if n == 0 {
		return 0, false
	}
	rms := math.Sqrt(sumSq / float64(n))
	if rms < rmsFloor {
		return 0, false
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < varianceFloor {
		// DC or near-constant signal: loud enough to pass the energy gate
		// but not voiced.
		return 0, false
	}

	halfSize := len(frame) / 2
	minOffset := sampleRate / int(MaxDetectHz)
	maxOffset := sampleRate / int(MinDetectHz)
	if maxOffset >= len(frame)-halfSize {
		maxOffset = len(frame) - halfSize - 1
	}
	if minOffset < 1 {
		minOffset = 1
	}

	bestCorrelation := correlationFloor
	bestOffset := -1
	prevCorrelation := 0.0
	for offset := minOffset; offset <= maxOffset; offset++ {
		var diff float64
		for i := 0; i < halfSize; i += correlationStride {
			diff += math.Abs(frame[i] - frame[i+offset])
		}
		correlation := 1 - (diff/float64(halfSize))*float64(correlationStride)

		// A lag only wins if it beats the running best and the previous
		// lag, so the search locks onto a local peak instead of a plateau.
		if correlation > bestCorrelation && correlation > prevCorrelation {
			bestCorrelation = correlation
			bestOffset = offset
		}
		prevCorrelation = correlation
	}
	if bestOffset < 0 {
		return 0, false
	}
	return float64(sampleRate) / float64(bestOffset), true
}
