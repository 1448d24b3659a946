// Package session owns the recording lifecycle: Idle → Recording →
// Analyzing → Results, with Reset returning to Idle. It wires the capture
// source into the pitch pipeline and hands the captured audio to the
// analysis backend at finish.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocalab/vocalrange/internal/analysis"
	"github.com/vocalab/vocalrange/internal/audio"
	"github.com/vocalab/vocalrange/internal/logger"
	"github.com/vocalab/vocalrange/internal/pitch"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseAnalyzing
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRecording:
		return "recording"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Milestone is the progress of the external hand-off while Analyzing.
type Milestone int

const (
	MilestoneNone Milestone = iota
	MilestoneUploading
	MilestoneProcessing
)

var (
	// ErrNoAudioCaptured is the terminal error for a session that finished
	// with no captured audio bytes.
	ErrNoAudioCaptured = errors.New("no audio captured")

	// ErrInvalidTransition is returned for a lifecycle call that is not
	// allowed in the current phase.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Analyzer is the upload/analyze backend contract. *analysis.Client
// satisfies it.
type Analyzer interface {
	Upload(ctx context.Context, blob []byte, contentType string) (*analysis.UploadResponse, error)
	Analyze(ctx context.Context, sessionID string) (*analysis.Result, error)
}

// Encoder accumulates captured PCM and yields the final upload blob.
// *wav.Encoder satisfies it.
type Encoder interface {
	audio.Sink
	Finalize() (blob []byte, contentType string, err error)
}

// Options configures a Machine. NewSource and NewEncoder are invoked per
// recording so every session starts from fresh state.
type Options struct {
	NewSource  func(sink audio.Sink) (audio.Source, error)
	NewEncoder func() Encoder
	Analyzer   Analyzer

	// Compress optionally re-encodes the finalized blob before upload.
	// A failure falls back to the original blob.
	Compress func(blob []byte) ([]byte, string, error)

	// MaxDuration signals MaxReached when a recording exceeds it.
	// Zero means unlimited.
	MaxDuration time.Duration
}

// Machine coordinates one recording session at a time. All methods are safe
// for concurrent use; the tracker goroutine is the only writer of pipeline
// state while Recording.
type Machine struct {
	opts Options

	mu        sync.Mutex
	phase     Phase
	milestone Milestone

	source  audio.Source
	encoder Encoder
	filter  *pitch.Filter
	stats   *pitch.RangeStats

	currentHz   float64
	currentNote pitch.Note
	startTime   time.Time

	stop       chan struct{}
	done       chan struct{}
	maxReached chan struct{}

	result  *analysis.Result
	lastErr error
}

func New(opts Options) *Machine {
	return &Machine{opts: opts, phase: PhaseIdle}
}

// Start allocates a fresh session and begins frame delivery. Valid from
// Idle; a capture failure leaves the machine in Idle.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseIdle {
		return fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, m.phase)
	}

	encoder := m.opts.NewEncoder()
	source, err := m.opts.NewSource(encoder)
	if err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	m.source = source
	m.encoder = encoder
	m.filter = pitch.NewFilter()
	m.stats = pitch.NewRangeStats()
	m.currentHz = 0
	m.currentNote = pitch.Note{}
	m.result = nil
	m.lastErr = nil
	m.milestone = MilestoneNone
	m.startTime = time.Now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.maxReached = make(chan struct{})
	m.phase = PhaseRecording

	go m.track(m.source, m.stop, m.done, m.maxReached)

	logger.Info("🎙️  Recording started")
	return nil
}

// MaxReached is closed when the recording exceeds the configured maximum
// duration. Callers should then invoke Finish. Nil before the first Start.
func (m *Machine) MaxReached() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxReached
}

// Finish halts the tracker, finalizes the encoder and runs the external
// upload/analyze hand-off. It blocks until the session reaches Results;
// failures are both returned and recorded in the Results payload. Valid
// from Recording.
func (m *Machine) Finish(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != PhaseRecording {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot finish from %s", ErrInvalidTransition, m.phase)
	}
	m.phase = PhaseAnalyzing
	source, encoder := m.source, m.encoder
	stop, done := m.stop, m.done
	m.mu.Unlock()

	// The tracker must be fully stopped and the capture flushed before any
	// upload is attempted.
	close(stop)
	<-done
	if err := source.Close(); err != nil {
		logger.Warnf("failed to close capture source: %v", err)
	}

	blob, contentType, err := encoder.Finalize()
	if err != nil {
		// A half-flushed or never-started capture is empty input, not a
		// truncated upload.
		return m.fail(fmt.Errorf("%w: %v", ErrNoAudioCaptured, err))
	}

	if m.opts.Compress != nil {
		if compressed, ct, err := m.opts.Compress(blob); err == nil {
			blob, contentType = compressed, ct
		} else {
			logger.Warnf("upload compression failed, sending raw audio: %v", err)
		}
	}

	m.setMilestone(MilestoneUploading)
	logger.Info("📤 Uploading recording...")
	uploaded, err := m.opts.Analyzer.Upload(ctx, blob, contentType)
	if err != nil {
		return m.fail(err)
	}

	m.setMilestone(MilestoneProcessing)
	logger.Infof("🔬 Analyzing session %s...", uploaded.SessionID)
	result, err := m.opts.Analyzer.Analyze(ctx, uploaded.SessionID)
	if err != nil {
		return m.fail(err)
	}

	m.mu.Lock()
	m.phase = PhaseResults
	m.result = result
	m.mu.Unlock()
	return nil
}

// Reset discards the session and returns to Idle. Valid from Results;
// calling it again from Idle is a no-op so a double reset is identical to a
// single one.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.phase {
	case PhaseIdle:
		return nil
	case PhaseResults:
	default:
		return fmt.Errorf("%w: cannot reset from %s", ErrInvalidTransition, m.phase)
	}

	m.phase = PhaseIdle
	m.milestone = MilestoneNone
	m.source = nil
	m.encoder = nil
	m.filter = nil
	m.stats = nil
	m.currentHz = 0
	m.currentNote = pitch.Note{}
	m.result = nil
	m.lastErr = nil
	return nil
}

func (m *Machine) fail(err error) error {
	logger.Error("session failed", err)
	m.mu.Lock()
	m.phase = PhaseResults
	m.lastErr = err
	m.mu.Unlock()
	return err
}

func (m *Machine) setMilestone(ms Milestone) {
	m.mu.Lock()
	m.milestone = ms
	m.mu.Unlock()
}
