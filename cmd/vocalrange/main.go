package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/vocalab/vocalrange/internal/analysis"
	"github.com/vocalab/vocalrange/internal/audio"
	"github.com/vocalab/vocalrange/internal/config"
	"github.com/vocalab/vocalrange/internal/history"
	"github.com/vocalab/vocalrange/internal/logger"
	"github.com/vocalab/vocalrange/internal/session"
	"github.com/vocalab/vocalrange/pkg/wav"
)

func main() {
	logLevel := flag.String("log-level", "", "Set log level (debug|info|warn|error)")
	backendURL := flag.String("backend", "", "Analysis backend base URL (overrides config)")
	deviceName := flag.String("device", "", "Capture device name (overrides config)")
	listDevices := flag.Bool("list-devices", false, "List capture devices and exit")
	noCompress := flag.Bool("no-compress", false, "Upload raw WAV even when ffmpeg is available")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			logger.Error("Failed to load config", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *logLevel != "" {
		logger.SetLevel(*logLevel)
	} else {
		logger.SetLevel(cfg.GetLogLevel())
	}

	if *listDevices {
		names, err := audio.ListDevices()
		if err != nil {
			logger.Error("Failed to list capture devices", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	backendCfg := cfg.GetBackendConfig()
	if *backendURL != "" {
		backendCfg.BaseURL = *backendURL
	}
	audioCfg := cfg.GetAudioConfig()
	if *deviceName != "" {
		audioCfg.Device = *deviceName
	}

	opts := session.Options{
		NewSource: func(sink audio.Sink) (audio.Source, error) {
			return audio.StartCapture(audioCfg.SampleRate, audioCfg.Device, sink)
		},
		NewEncoder: func() session.Encoder {
			return wav.NewEncoder(1, audioCfg.SampleRate)
		},
		Analyzer:    analysis.NewClient(backendCfg.BaseURL),
		MaxDuration: time.Duration(audioCfg.MaxDurationSeconds) * time.Second,
	}
	if backendCfg.CompressUpload && !*noCompress {
		opts.Compress = func(blob []byte) ([]byte, string, error) {
			return audio.CompressToOgg(blob, audioCfg.SampleRate)
		}
	}

	machine := session.New(opts)
	if err := machine.Start(); err != nil {
		logger.Error("Could not start recording", err)
		os.Exit(1)
	}
	fmt.Println("Sing! Press Enter to stop recording.")

	if err := runSession(machine); err != nil {
		os.Exit(1)
	}
}

// runSession drives the live display until the user stops the recording,
// then runs the analysis hand-off and renders the results.
func runSession(machine *session.Machine) error {
	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

live:
	for {
		select {
		case <-ticker.C:
			printLive(machine.Snapshot())
		case <-machine.MaxReached():
			fmt.Println("\nMaximum recording length reached.")
			break live
		case <-enter:
			break live
		case <-interrupt:
			fmt.Println()
			return errors.New("interrupted")
		}
	}
	fmt.Println()

	recordedSeconds := machine.Snapshot().ElapsedSeconds
	if err := machine.Finish(context.Background()); err != nil {
		color.Red("Analysis failed: %v", err)
		return err
	}
	snap := machine.Snapshot()
	printResults(snap)
	recordHistory(snap, recordedSeconds)
	return nil
}

func recordHistory(snap session.Snapshot, recordedSeconds int) {
	if snap.Result == nil {
		return
	}
	manager, err := history.NewManager()
	if err != nil {
		logger.Warnf("session history unavailable: %v", err)
		return
	}
	p := snap.Result.Pitch
	manager.Add(history.Entry{
		Timestamp:       time.Now(),
		VoiceType:       p.DetectedVoiceType,
		MinPitchHz:      p.MinPitchHz,
		MaxPitchHz:      p.MaxPitchHz,
		OctaveRange:     p.OctaveRange,
		DurationSeconds: recordedSeconds,
	})
}

func printLive(snap session.Snapshot) {
	line := fmt.Sprintf("\r[%02d:%02d] ", snap.ElapsedSeconds/60, snap.ElapsedSeconds%60)
	if snap.CurrentHz > 0 {
		line += fmt.Sprintf("%6.1f Hz  %-4s", snap.CurrentHz, snap.CurrentNote)
	} else {
		line += "    --      --  "
	}
	if snap.HasRange {
		line += fmt.Sprintf("  range %s-%s (%.1f oct)",
			noteLabel(snap.MinHz), noteLabel(snap.MaxHz), snap.OctaveRange)
	}
	fmt.Print(line + "   ")
}

func noteLabel(hz float64) string {
	return fmt.Sprintf("%.0fHz", hz)
}

func printResults(snap session.Snapshot) {
	result := snap.Result
	if result == nil {
		return
	}

	header := color.New(color.FgCyan, color.Bold)
	value := color.New(color.FgGreen, color.Bold)

	header.Println("\n── Your voice ──────────────────────────")
	p := result.Pitch
	fmt.Printf("Voice type:   ")
	value.Println(p.DetectedVoiceType)
	fmt.Printf("Range:        %s (%.1f Hz) - %s (%.1f Hz)\n",
		p.MinPitchNote, p.MinPitchHz, p.MaxPitchNote, p.MaxPitchHz)
	fmt.Printf("Median pitch: %.1f Hz\n", p.MedianPitchHz)
	fmt.Printf("Octaves:      %.1f\n", p.OctaveRange)

	if snap.HasRange {
		fmt.Printf("Live capture: %.1f-%.1f Hz as %s (spread %.1f Hz)\n",
			snap.MinHz, snap.MaxHz, snap.VoiceType, snap.PitchStdHz)
	}

	if len(result.TopSimilarArtists) > 0 {
		header.Println("\n── Similar artists ─────────────────────")
		for _, artist := range result.TopSimilarArtists {
			fmt.Printf("  %-24s %5.1f%%", artist.Name, artist.SimilarityScore)
			if artist.VoiceType != "" {
				fmt.Printf("  (%s)", artist.VoiceType)
			}
			fmt.Println()
		}
	}
	if len(result.RecommendedSongs) > 0 {
		header.Println("\n── Songs to try ────────────────────────")
		for _, song := range result.RecommendedSongs {
			fmt.Printf("  %s - %s (match %.0f%%)\n", song.ArtistName, song.Title, song.PitchMatchScore)
		}
	}
}
