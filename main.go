// ABOUTME: Entry point for the songclock player
// ABOUTME: Parses CLI flags, loads a track and runs the frame loop with the TUI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Resonate-Protocol/songclock/internal/app"
	"github.com/Resonate-Protocol/songclock/internal/version"
	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/decode"
	"github.com/Resonate-Protocol/songclock/pkg/audio/output"
	"github.com/Resonate-Protocol/songclock/pkg/audio/tone"
)

const envFile = ".env"

func main() {
	// .env is optional; values there only change flag defaults
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("error loading %s: %v", envFile, err)
	}

	var (
		trackPath  = flag.String("track", envString("SONGCLOCK_TRACK", ""), "Track to play (.mp3, .flac, .pcm); default is the calibration tone")
		deviceName = flag.String("device", envString("SONGCLOCK_DEVICE", "oto"), "Playback device: oto or sim")
		sampleRate = flag.Int("sample-rate", envInt("SONGCLOCK_SAMPLE_RATE", 48000), "Device sample rate")
		bufferMs   = flag.Int("buffer-ms", envInt("SONGCLOCK_BUFFER_MS", 10), "Audio buffer period in milliseconds")
		fps        = flag.Int("fps", envInt("SONGCLOCK_FPS", 60), "Frame loop rate")
		bpm        = flag.Float64("bpm", envFloat("SONGCLOCK_BPM", tone.DefaultTempo), "Beat counter tempo")
		catchUp    = flag.Float64("catchup-rate", envFloat("SONGCLOCK_CATCHUP_RATE", 2.0), "Song time multiplier while catching up")
		tolerance  = flag.Float64("tolerance", envFloat("SONGCLOCK_TOLERANCE", 0.1), "Max disagreement between lag estimates in seconds")
		maxDelta   = flag.Float64("max-frame-delta", envFloat("SONGCLOCK_MAX_FRAME_DELTA", 1.0/3.0), "Per-frame time clamp in seconds")
		stallMs    = flag.Int("stall-ms", envInt("SONGCLOCK_STALL_MS", 500), "Length of a stall injected with 's'")
		logFile    = flag.String("log-file", envString("SONGCLOCK_LOG_FILE", "songclock.log"), "Log file path")
		noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	)
	flag.Parse()

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("%s (%s)", version.String(), version.Manufacturer)

	track, title, err := loadTrack(*trackPath, *sampleRate)
	if err != nil {
		log.Fatalf("Failed to load track: %v", err)
	}
	track = track.Remix(2)
	log.Printf("Loaded %s: %.1fs, %d Hz", title, track.Duration(), track.Format.SampleRate)

	device, closeDevice, err := openDevice(*deviceName, *sampleRate, *bufferMs, track)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer closeDevice()

	config := app.Config{
		Title:         title,
		FPS:           *fps,
		BPM:           *bpm,
		MaxFrameDelta: *maxDelta,
		StallDuration: time.Duration(*stallMs) * time.Millisecond,
		CatchUpRate:   *catchUp,
		Tolerance:     *tolerance,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.New(device, config, useTUI).Run(ctx); err != nil {
		log.Printf("Exited with error: %v", err)
	}

	log.Printf("Player stopped")
}

// loadTrack decodes path, or renders the calibration tone when path is empty
func loadTrack(path string, sampleRate int) (*audio.Track, string, error) {
	if path == "" {
		gen := tone.New(tone.Config{SampleRate: sampleRate, Channels: 2})
		return gen.Track(), fmt.Sprintf("Calibration tone (%.0f BPM)", gen.Config().Tempo), nil
	}

	track, err := decode.Load(path)
	if err != nil {
		return nil, "", err
	}
	return track, filepath.Base(path), nil
}

// openDevice creates the playback device and loads track into it
func openDevice(name string, sampleRate, bufferMs int, track *audio.Track) (output.Device, func(), error) {
	switch name {
	case "oto":
		o := output.NewOto(output.OtoConfig{
			SampleRate: sampleRate,
			Channels:   2,
			BufferMs:   bufferMs,
		})
		if err := o.Open(); err != nil {
			return nil, nil, err
		}
		if err := o.Load(track); err != nil {
			_ = o.Close()
			return nil, nil, err
		}
		return o, func() { _ = o.Close() }, nil

	case "sim":
		format := audio.Format{SampleRate: sampleRate, Channels: 2}
		sim := output.NewSimulated(format, sampleRate*bufferMs/1000)
		if err := sim.Load(track); err != nil {
			return nil, nil, err
		}
		return sim, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown device %q (expected oto or sim)", name)
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}
