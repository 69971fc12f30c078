// ABOUTME: Headless stall simulator for the timing authority
// ABOUTME: Runs the frame loop on a virtual clock and reports how song time recovers
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/Resonate-Protocol/songclock/internal/version"
	"github.com/Resonate-Protocol/songclock/pkg/audio"
	"github.com/Resonate-Protocol/songclock/pkg/audio/decode"
	"github.com/Resonate-Protocol/songclock/pkg/audio/encode"
	"github.com/Resonate-Protocol/songclock/pkg/audio/tone"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("error loading .env: %v", err)
	}

	app := cli.NewApp()
	app.Name = "songclock-sim"
	app.Usage = "simulate a frame loop stall and watch song time catch up"
	app.Version = version.Version
	app.Flags = []cli.Flag{
		cli.DurationFlag{Name: "duration", Value: defaultScenario.Duration, Usage: "simulated run length", EnvVar: "SONGCLOCK_SIM_DURATION"},
		cli.IntFlag{Name: "fps", Value: defaultScenario.FPS, Usage: "frame loop rate", EnvVar: "SONGCLOCK_FPS"},
		cli.IntFlag{Name: "buffer-ms", Value: defaultScenario.BufferMs, Usage: "audio buffer period in milliseconds", EnvVar: "SONGCLOCK_BUFFER_MS"},
		cli.IntFlag{Name: "sample-rate", Value: defaultScenario.SampleRate, Usage: "device sample rate", EnvVar: "SONGCLOCK_SAMPLE_RATE"},
		cli.DurationFlag{Name: "stall-at", Value: defaultScenario.StallAt, Usage: "when the frame loop stalls, 0 for never"},
		cli.DurationFlag{Name: "stall-for", Value: defaultScenario.StallFor, Usage: "how long the frame loop stalls"},
		cli.Float64Flag{Name: "max-frame-delta", Value: defaultScenario.MaxFrameDelta, Usage: "per-frame time clamp in seconds", EnvVar: "SONGCLOCK_MAX_FRAME_DELTA"},
		cli.Float64Flag{Name: "catchup-rate", Value: defaultScenario.CatchUpRate, Usage: "song time multiplier while catching up", EnvVar: "SONGCLOCK_CATCHUP_RATE"},
		cli.Float64Flag{Name: "tolerance", Value: defaultScenario.Tolerance, Usage: "max disagreement between lag estimates in seconds", EnvVar: "SONGCLOCK_TOLERANCE"},
		cli.Float64Flag{Name: "bpm", Value: defaultScenario.BPM, Usage: "beat counter tempo", EnvVar: "SONGCLOCK_BPM"},
		cli.IntFlag{Name: "trace-every", Value: defaultScenario.TraceEvery, Usage: "frames between trace lines, 0 to disable"},
		cli.StringFlag{Name: "track", Usage: "track to play (.mp3, .flac, .pcm), default is the calibration tone", EnvVar: "SONGCLOCK_TRACK"},
		cli.StringFlag{Name: "export", Usage: "write the rendered audio to this WAV file"},
		cli.BoolFlag{Name: "verbose", Usage: "show authority logs"},
	}
	app.Action = runSimulation

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var defaultScenario = Scenario{
	Duration:      10 * time.Second,
	FPS:           60,
	BufferMs:      10,
	SampleRate:    48000,
	StallAt:       3 * time.Second,
	StallFor:      500 * time.Millisecond,
	MaxFrameDelta: 0.1,
	CatchUpRate:   2,
	Tolerance:     0.1,
	BPM:           tone.DefaultTempo,
	TraceEvery:    30,
}

func runSimulation(c *cli.Context) error {
	if !c.Bool("verbose") {
		log.SetOutput(io.Discard)
	}

	sc := Scenario{
		Duration:      c.Duration("duration"),
		FPS:           c.Int("fps"),
		BufferMs:      c.Int("buffer-ms"),
		SampleRate:    c.Int("sample-rate"),
		StallAt:       c.Duration("stall-at"),
		StallFor:      c.Duration("stall-for"),
		MaxFrameDelta: c.Float64("max-frame-delta"),
		CatchUpRate:   c.Float64("catchup-rate"),
		Tolerance:     c.Float64("tolerance"),
		BPM:           c.Float64("bpm"),
		TraceEvery:    c.Int("trace-every"),
	}
	if err := sc.validate(); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	track, title, err := loadTrack(c.String("track"), sc.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to load track: %w", err)
	}
	track = track.Remix(2)

	var wav *encode.WAVWriter
	if path := c.String("export"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()

		wav, err = encode.NewWAV(f, audio.Format{SampleRate: sc.SampleRate, Channels: 2}, 16)
		if err != nil {
			return err
		}
	}

	fmt.Printf("%s: %s, %v at %d fps, %d ms buffers\n", appName(c), title, sc.Duration, sc.FPS, sc.BufferMs)
	if sc.StallAt > 0 {
		fmt.Printf("stall of %v at %v, frame delta clamped to %.3fs\n\n", sc.StallFor, sc.StallAt, sc.MaxFrameDelta)
	}

	summary, err := simulate(sc, track, os.Stdout, wav)
	if err != nil {
		return err
	}

	if wav != nil {
		if err := wav.Close(); err != nil {
			return fmt.Errorf("failed to finish %s: %w", c.String("export"), err)
		}
	}

	printSummary(os.Stdout, summary)
	return nil
}

func appName(c *cli.Context) string {
	return c.App.Name + " " + c.App.Version
}

func (sc Scenario) validate() error {
	switch {
	case sc.Duration <= 0:
		return errors.New("duration must be positive")
	case sc.FPS <= 0:
		return errors.New("fps must be positive")
	case sc.BufferMs <= 0:
		return errors.New("buffer-ms must be positive")
	case sc.SampleRate*sc.BufferMs/1000 < 1:
		return errors.New("buffer is shorter than one frame")
	case sc.MaxFrameDelta <= 0:
		return errors.New("max-frame-delta must be positive")
	case sc.CatchUpRate <= 1:
		return errors.New("catchup-rate must be greater than 1")
	}
	return nil
}

func loadTrack(path string, sampleRate int) (*audio.Track, string, error) {
	if path == "" {
		gen := tone.New(tone.Config{SampleRate: sampleRate, Channels: 2})
		return gen.Track(), fmt.Sprintf("calibration tone (%.0f BPM)", gen.Config().Tempo), nil
	}

	track, err := decode.Load(path)
	if err != nil {
		return nil, "", err
	}
	return track, filepath.Base(path), nil
}

func printSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "frames:         %d\n", s.Frames)
	fmt.Fprintf(w, "buffers:        %d\n", s.Buffers)
	fmt.Fprintf(w, "song time:      %.4fs\n", s.FinalTime)
	fmt.Fprintf(w, "beats:          %d\n", s.Beats)
	fmt.Fprintf(w, "catch-ups:      %d (last lag %.1f ms)\n", s.CatchUps, s.LastLag*1000)
	fmt.Fprintf(w, "max behind:     %.1f ms\n", s.MaxDeficit*1000)
	fmt.Fprintf(w, "max ahead:      %.1f ms\n", s.MaxAhead*1000)
	fmt.Fprintf(w, "final behind:   %.1f ms\n", s.FinalDeficit*1000)
	fmt.Fprintf(w, "pings dropped:  %d\n", s.PingsDropped)
	fmt.Fprintf(w, "monotonic:      %t\n", s.Monotonic)
}
