package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/vocalab/vocalrange/internal/analysis"
	"github.com/vocalab/vocalrange/internal/audio"
	"github.com/vocalab/vocalrange/pkg/wav"
)

type fakeSource struct {
	mu     sync.Mutex
	frame  audio.Frame
	hasOne bool
	closed bool
}

func (s *fakeSource) Frame() (audio.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.hasOne
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func sineSource(freq float64) *fakeSource {
	samples := make([]float64, audio.FrameSize)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/44100)
	}
	return &fakeSource{frame: audio.Frame{Samples: samples, SampleRate: 44100}, hasOne: true}
}

type fakeAnalyzer struct {
	mu         sync.Mutex
	uploads    int
	analyzes   int
	uploadErr  error
	analyzeErr error
	result     *analysis.Result
}

func (a *fakeAnalyzer) Upload(ctx context.Context, blob []byte, contentType string) (*analysis.UploadResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploads++
	if a.uploadErr != nil {
		return nil, a.uploadErr
	}
	return &analysis.UploadResponse{SessionID: "sess-1"}, nil
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, sessionID string) (*analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.analyzes++
	if a.analyzeErr != nil {
		return nil, a.analyzeErr
	}
	if a.result != nil {
		return a.result, nil
	}
	return &analysis.Result{SessionID: sessionID}, nil
}

func newTestMachine(source *fakeSource, analyzer *fakeAnalyzer, appendPCM []byte) *Machine {
	return New(Options{
		NewSource: func(sink audio.Sink) (audio.Source, error) {
			if appendPCM != nil {
				sink.Append(appendPCM)
			}
			return source, nil
		},
		NewEncoder: func() Encoder { return wav.NewEncoder(1, 44100) },
		Analyzer:   analyzer,
	})
}

func waitForSamples(t *testing.T, m *Machine, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.Snapshot().ValidSampleCount >= n {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d valid samples", n)
}

func TestHappyPath(t *testing.T) {
	source := sineSource(220)
	analyzer := &fakeAnalyzer{result: &analysis.Result{
		SessionID: "sess-1",
		Pitch:     analysis.PitchAnalysis{DetectedVoiceType: "tenor"},
	}}
	m := newTestMachine(source, analyzer, []byte{1, 2, 3, 4})

	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := m.Snapshot().Phase; got != PhaseRecording {
		t.Fatalf("expected recording phase, got %s", got)
	}
	waitForSamples(t, m, 3)

	snap := m.Snapshot()
	if !snap.HasRange {
		t.Fatal("expected a range after warm-up")
	}
	if snap.CurrentHz < 180 || snap.CurrentHz > 260 {
		t.Fatalf("expected current pitch near 220 Hz, got %.2f", snap.CurrentHz)
	}
	if !snap.CurrentNote.IsValid() {
		t.Fatal("expected a valid current note")
	}

	if err := m.Finish(context.Background()); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	snap = m.Snapshot()
	if snap.Phase != PhaseResults || snap.Err != nil {
		t.Fatalf("expected successful results, got phase=%s err=%v", snap.Phase, snap.Err)
	}
	if snap.Result == nil || snap.Result.Pitch.DetectedVoiceType != "tenor" {
		t.Fatalf("expected backend result, got %+v", snap.Result)
	}
	if !source.closed {
		t.Fatal("expected capture source to be closed before upload")
	}
	if analyzer.uploads != 1 || analyzer.analyzes != 1 {
		t.Fatalf("expected one upload and one analyze, got %d/%d", analyzer.uploads, analyzer.analyzes)
	}
}

func TestFinishWithoutAudioIsTerminalError(t *testing.T) {
	source := &fakeSource{} // never yields a frame
	analyzer := &fakeAnalyzer{}
	m := newTestMachine(source, analyzer, nil) // nothing appended to encoder

	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	err := m.Finish(context.Background())
	if !errors.Is(err, ErrNoAudioCaptured) {
		t.Fatalf("expected ErrNoAudioCaptured, got %v", err)
	}
	snap := m.Snapshot()
	if snap.Phase != PhaseResults || !errors.Is(snap.Err, ErrNoAudioCaptured) {
		t.Fatalf("expected error-bearing results, got phase=%s err=%v", snap.Phase, snap.Err)
	}
	if analyzer.uploads != 0 {
		t.Fatal("expected no upload attempt without audio")
	}
}

func TestFinishWithAudioButNoValidSamplesStillAnalyzes(t *testing.T) {
	source := &fakeSource{}
	analyzer := &fakeAnalyzer{}
	m := newTestMachine(source, analyzer, []byte{1, 2, 3, 4})

	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := m.Finish(context.Background()); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if analyzer.uploads != 1 || analyzer.analyzes != 1 {
		t.Fatal("expected analysis attempt despite zero valid pitch samples")
	}
}

func TestTransportErrorLandsInResults(t *testing.T) {
	source := &fakeSource{}
	uploadErr := errors.New("connection refused")
	analyzer := &fakeAnalyzer{uploadErr: uploadErr}
	m := newTestMachine(source, analyzer, []byte{1, 2, 3, 4})

	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := m.Finish(context.Background()); !errors.Is(err, uploadErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
	snap := m.Snapshot()
	if snap.Phase != PhaseResults || !errors.Is(snap.Err, uploadErr) {
		t.Fatalf("expected error payload in results, got phase=%s err=%v", snap.Phase, snap.Err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	m := newTestMachine(&fakeSource{}, &fakeAnalyzer{}, nil)

	if err := m.Finish(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from idle, got %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected double start to fail, got %v", err)
	}
	if err := m.Reset(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected reset while recording to fail, got %v", err)
	}
}

func TestResetIdempotence(t *testing.T) {
	source := &fakeSource{}
	m := newTestMachine(source, &fakeAnalyzer{}, nil)

	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	m.Finish(context.Background()) // lands in error-bearing results

	if err := m.Reset(); err != nil {
		t.Fatalf("reset from results failed: %v", err)
	}
	first := m.Snapshot()
	if err := m.Reset(); err != nil {
		t.Fatalf("second reset failed: %v", err)
	}
	second := m.Snapshot()
	if first != second {
		t.Fatalf("expected identical state after double reset: %+v vs %+v", first, second)
	}
	if second.Phase != PhaseIdle || second.Err != nil || second.Result != nil {
		t.Fatalf("expected clean idle state, got %+v", second)
	}
}

func TestStartFailureStaysIdle(t *testing.T) {
	captureErr := errors.New("device busy")
	m := New(Options{
		NewSource:  func(sink audio.Sink) (audio.Source, error) { return nil, captureErr },
		NewEncoder: func() Encoder { return wav.NewEncoder(1, 44100) },
		Analyzer:   &fakeAnalyzer{},
	})
	if err := m.Start(); !errors.Is(err, captureErr) {
		t.Fatalf("expected capture error, got %v", err)
	}
	if got := m.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected machine to stay idle, got %s", got)
	}
}

func TestMaxDurationSignal(t *testing.T) {
	source := sineSource(220)
	m := New(Options{
		NewSource:   func(sink audio.Sink) (audio.Source, error) { return source, nil },
		NewEncoder:  func() Encoder { return wav.NewEncoder(1, 44100) },
		Analyzer:    &fakeAnalyzer{},
		MaxDuration: 100 * time.Millisecond,
	})
	if err := m.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	select {
	case <-m.MaxReached():
	case <-time.After(2 * time.Second):
		t.Fatal("expected max-duration signal")
	}
	m.Finish(context.Background())
}
