// Package history persists a summary of past analysis sessions so repeated
// recordings can show how the measured range evolves.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vocalab/vocalrange/internal/logger"
)

// Entry is one completed analysis session.
type Entry struct {
	Timestamp       time.Time `json:"timestamp"`
	VoiceType       string    `json:"voice_type"`
	MinPitchHz      float64   `json:"min_pitch_hz"`
	MaxPitchHz      float64   `json:"max_pitch_hz"`
	OctaveRange     float64   `json:"octave_range"`
	DurationSeconds int       `json:"duration_seconds"`
}

// History holds all recorded sessions plus per-voice-type counters.
type History struct {
	Sessions     []Entry        `json:"sessions"`
	TotalSeconds float64        `json:"total_seconds"`
	VoiceCounts  map[string]int `json:"voice_counts"`
}

// Manager loads and persists the session history. Writes are flushed
// immediately so a crash never loses a completed session.
type Manager struct {
	history  History
	filePath string
	mu       sync.Mutex
}

// NewManager creates a manager backed by the user config directory and loads
// any existing history.
func NewManager() (*Manager, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return NewManagerAt(filepath.Join(dir, "vocalrange", "history.json")), nil
}

// NewManagerAt creates a manager backed by an explicit file path.
func NewManagerAt(filePath string) *Manager {
	m := &Manager{
		filePath: filePath,
		history:  History{VoiceCounts: make(map[string]int)},
	}
	if err := m.load(); err != nil {
		logger.Debugf("Could not load history (starting fresh): %v", err)
	}
	return m
}

// Add appends a completed session and persists immediately.
func (m *Manager) Add(entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.history.VoiceCounts == nil {
		m.history.VoiceCounts = make(map[string]int)
	}
	m.history.Sessions = append(m.history.Sessions, entry)
	m.history.TotalSeconds += float64(entry.DurationSeconds)
	if entry.VoiceType != "" {
		m.history.VoiceCounts[entry.VoiceType]++
	}

	if err := m.save(); err != nil {
		logger.Error("Failed to save session history", err)
	}
}

// Get returns a copy of the current history.
func (m *Manager) Get() History {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]Entry, len(m.history.Sessions))
	copy(sessions, m.history.Sessions)
	counts := make(map[string]int, len(m.history.VoiceCounts))
	for voiceType, n := range m.history.VoiceCounts {
		counts[voiceType] = n
	}
	return History{
		Sessions:     sessions,
		TotalSeconds: m.history.TotalSeconds,
		VoiceCounts:  counts,
	}
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read history file: %w", err)
	}
	if err := json.Unmarshal(data, &m.history); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if m.history.VoiceCounts == nil {
		m.history.VoiceCounts = make(map[string]int)
	}
	return nil
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Atomic write: temp file then rename.
	tempFile := m.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := os.Rename(tempFile, m.filePath); err != nil {
		return fmt.Errorf("failed to rename temp history file: %w", err)
	}
	return nil
}
