// Package audio captures microphone input and fans it out to the pitch
// tracker (fixed-size sample frames) and the upload encoder (raw PCM).
package audio

// FrameSize is the number of samples handed to the estimator per frame.
const FrameSize = 2048

// Frame is the most recent block of time-domain samples in [-1, 1], tagged
// with the rate it was captured at.
type Frame struct {
	Samples    []float64
	SampleRate int
}

// Source delivers the most recent frame on demand. Close stops delivery
// deterministically.
type Source interface {
	// Frame returns the latest FrameSize samples. ok is false until a full
	// frame has been captured.
	Frame() (frame Frame, ok bool)
	Close() error
}

// Sink receives raw PCM16 chunks as they are captured. Implementations must
// treat chunks as append-only; wav.Encoder satisfies this.
type Sink interface {
	Append(chunk []byte)
}
