package pitch

import (
	"math"
	"testing"
)

func TestRangeWarmupBoundary(t *testing.T) {
	r := NewRangeStats()
	inputs := []float64{150, 90, 300, 80}
	moved := make([]bool, len(inputs))
	for i, v := range inputs {
		moved[i] = r.Accept(v)
	}

	// The first two valid samples are counted but excluded from min/max.
	if moved[0] || moved[1] {
		t.Fatal("expected warm-up samples not to move min/max")
	}
	if !moved[2] || !moved[3] {
		t.Fatal("expected post-warm-up samples to move min/max")
	}
	if r.ValidSampleCount != 4 {
		t.Fatalf("expected 4 valid samples, got %d", r.ValidSampleCount)
	}
	if r.Min != 80 {
		t.Fatalf("expected min 80, got %.2f", r.Min)
	}
	if r.Max != 300 {
		t.Fatalf("expected max 300, got %.2f", r.Max)
	}
}

func TestRangeBandGate(t *testing.T) {
	r := NewRangeStats()
	r.Accept(200)
	r.Accept(200)
	if r.Accept(650) {
		t.Fatal("expected 650 Hz to be rejected by the band gate")
	}
	if r.Accept(70) {
		t.Fatal("expected 70 Hz lower bound to be exclusive")
	}
	if r.ValidSampleCount != 4 {
		t.Fatalf("expected rejected samples to still be counted, got %d", r.ValidSampleCount)
	}
	if r.HasRange() {
		t.Fatal("expected no range while every sample fails the gate")
	}
}

func TestRangeSentinelsBeforeFirstSample(t *testing.T) {
	r := NewRangeStats()
	if !math.IsInf(r.Min, 1) || r.Max != 0 {
		t.Fatalf("expected sentinel min/max, got %.2f/%.2f", r.Min, r.Max)
	}
	if r.HasRange() {
		t.Fatal("expected HasRange to be false before any accepted sample")
	}
	if r.MedianHz() != 0 {
		t.Fatal("expected zero median without a range")
	}
}

func TestRangeDerivedStats(t *testing.T) {
	r := NewRangeStats()
	for _, v := range []float64{100, 100, 110, 220, 150} {
		r.Accept(v)
	}
	if r.MedianHz() != 165 {
		t.Fatalf("expected median 165, got %.2f", r.MedianHz())
	}
	if math.Abs(r.OctaveRange()-1.0) > 1e-9 {
		t.Fatalf("expected exactly one octave from 110 to 220, got %.4f", r.OctaveRange())
	}
	if r.StdDevHz() <= 0 {
		t.Fatal("expected positive std dev for spread samples")
	}
}
