package pitch

import (
	"math"
	"testing"
)

const (
	testSampleRate = 44100
	testFrameSize  = 2048
)

func sineFrame(freq, amplitude float64) []float64 {
	frame := make([]float64, testFrameSize)
	for i := range frame {
		frame[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate)
	}
	return frame
}

func semitonesApart(a, b float64) float64 {
	return math.Abs(12 * math.Log2(a/b))
}

func TestEstimateSilence(t *testing.T) {
	frame := make([]float64, testFrameSize)
	if f, ok := Estimate(frame, testSampleRate); ok {
		t.Fatalf("expected unvoiced for silence, got %.2f Hz", f)
	}
}

func TestEstimateConstantSignal(t *testing.T) {
	frame := make([]float64, testFrameSize)
	for i := range frame {
		frame[i] = 0.5
	}
	if f, ok := Estimate(frame, testSampleRate); ok {
		t.Fatalf("expected unvoiced for DC signal, got %.2f Hz", f)
	}
}

func TestEstimateSine(t *testing.T) {
	for _, target := range []float64{98, 147, 220, 330, 440} {
		frame := sineFrame(target, 0.8)
		got, ok := Estimate(frame, testSampleRate)
		if !ok {
			t.Fatalf("expected voiced result for %.0f Hz sine", target)
		}
		if semitonesApart(got, target) > 1 {
			t.Fatalf("expected %.0f Hz within a semitone, got %.2f Hz", target, got)
		}
	}
}

func TestEstimateQuietSine(t *testing.T) {
	frame := sineFrame(220, 0.005)
	if f, ok := Estimate(frame, testSampleRate); ok {
		t.Fatalf("expected energy gate to reject quiet sine, got %.2f Hz", f)
	}
}

func TestEstimateEmptyFrame(t *testing.T) {
	if _, ok := Estimate(nil, testSampleRate); ok {
		t.Fatal("expected unvoiced for empty frame")
	}
}
