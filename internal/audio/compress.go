package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/vocalab/vocalrange/internal/logger"
)

// ErrFFmpegNotInstalled is returned when ffmpeg is not on PATH.
var ErrFFmpegNotInstalled = fmt.Errorf("ffmpeg is not installed")

func init() {
	ffmpeg.LogCompiledCommand = false
}

func checkFFmpegInstalled() error {
	cmd := exec.Command("ffmpeg", "-version")
	if err := cmd.Run(); err != nil {
		return ErrFFmpegNotInstalled
	}
	return nil
}

// CompressToOgg converts a WAV blob to Ogg Vorbis to shrink the upload.
// Callers should fall back to the raw WAV when this fails; the backend
// accepts both.
func CompressToOgg(wavData []byte, sampleRate int) ([]byte, string, error) {
	if err := checkFFmpegInstalled(); err != nil {
		return nil, "", err
	}

	dir, err := os.MkdirTemp("", "vocalrange-*")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "recording.wav")
	oggPath := filepath.Join(dir, "recording.ogg")
	if err := os.WriteFile(wavPath, wavData, 0o644); err != nil {
		return nil, "", fmt.Errorf("failed to write temp wav: %w", err)
	}

	start := time.Now()
	err = ffmpeg.Input(wavPath).
		Output(oggPath, ffmpeg.KwArgs{
			"loglevel":          "quiet",
			"acodec":            "libvorbis",
			"b:a":               "48k",
			"ar":                fmt.Sprintf("%d", sampleRate),
			"compression_level": "5",
			"threads":           "auto",
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert to ogg vorbis: %w", err)
	}

	oggData, err := os.ReadFile(oggPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read converted file: %w", err)
	}
	logger.Debugf("wav->ogg took %d ms, %d -> %d bytes",
		time.Since(start).Milliseconds(), len(wavData), len(oggData))
	return oggData, "audio/ogg", nil
}
