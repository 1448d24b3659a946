// Package wav accumulates raw PCM16 audio and finalizes it into a single
// RIFF/WAVE blob suitable for upload.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// ContentType is the MIME type of a finalized blob.
const ContentType = "audio/wav"

var (
	// ErrNotStarted is returned by Finalize when no chunk was ever appended.
	ErrNotStarted = errors.New("wav: encoder never received audio")

	// ErrEmpty is returned by Finalize when chunks were appended but all were
	// zero-length, so there is no audio to wrap.
	ErrEmpty = errors.New("wav: no audio captured")
)

// Encoder is an append-only accumulator of PCM16 mono chunks. It is safe to
// call Append from a capture callback as long as Finalize is only called
// after capture has stopped.
type Encoder struct {
	channels   int
	sampleRate int
	started    bool
	pcm        bytes.Buffer
}

func NewEncoder(channels, sampleRate int) *Encoder {
	return &Encoder{channels: channels, sampleRate: sampleRate}
}

// Append accumulates one chunk of little-endian PCM16 samples.
func (e *Encoder) Append(chunk []byte) {
	e.started = true
	e.pcm.Write(chunk)
}

// Started reports whether Append was ever called, regardless of chunk sizes.
func (e *Encoder) Started() bool {
	return e.started
}

// Len returns the number of accumulated PCM bytes.
func (e *Encoder) Len() int {
	return e.pcm.Len()
}

// Finalize wraps the accumulated PCM into a WAV blob and returns it together
// with its content type. A started encoder with zero bytes returns ErrEmpty,
// which callers must treat as "no audio captured" rather than uploading an
// empty file.
func (e *Encoder) Finalize() ([]byte, string, error) {
	if !e.started {
		return nil, "", ErrNotStarted
	}
	if e.pcm.Len() == 0 {
		return nil, "", ErrEmpty
	}
	return wrapPCM(e.pcm.Bytes(), e.channels, e.sampleRate), ContentType, nil
}

// Reset discards all accumulated audio and the started flag.
func (e *Encoder) Reset() {
	e.started = false
	e.pcm.Reset()
}

// wrapPCM writes a 16-bit PCM WAV header around raw sample data.
func wrapPCM(pcmData []byte, channels, sampleRate int) []byte {
	var buffer bytes.Buffer

	binary.Write(&buffer, binary.LittleEndian, []byte("RIFF"))
	binary.Write(&buffer, binary.LittleEndian, uint32(len(pcmData)+36))
	binary.Write(&buffer, binary.LittleEndian, []byte("WAVE"))

	// "fmt " chunk
	binary.Write(&buffer, binary.LittleEndian, []byte("fmt "))
	binary.Write(&buffer, binary.LittleEndian, uint32(16))
	binary.Write(&buffer, binary.LittleEndian, uint16(1))
	binary.Write(&buffer, binary.LittleEndian, uint16(channels))
	binary.Write(&buffer, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buffer, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buffer, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buffer, binary.LittleEndian, uint16(16))

	// "data" chunk
	binary.Write(&buffer, binary.LittleEndian, []byte("data"))
	binary.Write(&buffer, binary.LittleEndian, uint32(len(pcmData)))
	binary.Write(&buffer, binary.LittleEndian, pcmData)

	return buffer.Bytes()
}
